package graph

import (
	"container/list"

	"github.com/dbsmedya/relgraph/internal/types"
)

// visit is an entity waiting to be expanded, with its hop distance.
type visit struct {
	ref      types.EntityRef
	distance int
}

// visitQueue is the FIFO frontier of the breadth-first traversal.
type visitQueue struct {
	queue *list.List
}

func newVisitQueue() *visitQueue {
	return &visitQueue{queue: list.New()}
}

// Enqueue adds an entity to the back of the queue.
func (q *visitQueue) Enqueue(v visit) {
	q.queue.PushBack(v)
}

// Dequeue removes and returns the entity at the front of the queue.
func (q *visitQueue) Dequeue() (visit, bool) {
	if q.queue.Len() == 0 {
		return visit{}, false
	}
	elem := q.queue.Front()
	q.queue.Remove(elem)
	return elem.Value.(visit), true
}

// IsEmpty reports whether the queue is empty.
func (q *visitQueue) IsEmpty() bool {
	return q.queue.Len() == 0
}
