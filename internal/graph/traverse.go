package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

// Traverser performs breadth-first expansion over a relation store. It keeps
// no state between calls.
type Traverser struct {
	store  store.Reader
	logger *logger.Logger
}

// NewTraverser creates a traverser reading from r.
func NewTraverser(r store.Reader, log *logger.Logger) *Traverser {
	if log == nil {
		log = logger.NewNop()
	}
	return &Traverser{store: r, logger: log}
}

// Traverse expands the neighborhood of center up to maxDegree hops along
// edges whose role is in roleNames, treating edges as undirected.
//
// Every discovered node has its edges read, including nodes on the boundary,
// so that Size is the node's full role-filtered relation count. A store error
// or a cancelled context aborts the traversal and nothing is returned.
func (t *Traverser) Traverse(ctx context.Context, center types.EntityRef, roleNames []string, maxDegree int) (*Neighborhood, error) {
	start := time.Now()
	log := t.logger.WithEntity(center)
	log.Debugw("Traversal started", "roles", roleNames, "max_degree", maxDegree)

	centerEntity, err := t.store.GetEntity(ctx, center)
	if err != nil {
		return nil, fmt.Errorf("center %s: %w", center, err)
	}

	distance := map[types.EntityRef]int{center: 0}
	incident := make(map[types.EntityRef][]types.Triple)

	queue := newVisitQueue()
	queue.Enqueue(visit{ref: center, distance: 0})

	for !queue.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("traversal of %s aborted: %w", center, err)
		}

		v, _ := queue.Dequeue()
		triples, err := t.neighbors(ctx, v.ref, roleNames)
		if err != nil {
			return nil, err
		}
		incident[v.ref] = triples

		if v.distance >= maxDegree {
			continue
		}
		for _, tr := range triples {
			other := otherEnd(tr, v.ref)
			if _, seen := distance[other]; seen {
				continue
			}
			distance[other] = v.distance + 1
			queue.Enqueue(visit{ref: other, distance: v.distance + 1})
		}
	}

	nodes := make([]*Node, 0, len(distance))
	nodeByRef := make(map[types.EntityRef]*Node, len(distance))
	for ref, d := range distance {
		name := ""
		if ref == center {
			name = centerEntity.Name
		} else {
			name, err = t.name(ctx, ref)
			if err != nil {
				return nil, err
			}
		}
		n := &Node{
			Key:      ref.Key(),
			ID:       ref.ID,
			Kind:     ref.Kind,
			Name:     name,
			Distance: d,
			Size:     len(incident[ref]),
		}
		nodes = append(nodes, n)
		nodeByRef[ref] = n
	}

	seen := make(map[types.Triple]bool)
	displayed := make(map[types.EntityRef]int, len(distance))
	var links []*Link
	var triples []types.Triple
	for ref := range distance {
		for _, tr := range incident[ref] {
			if seen[tr] {
				continue
			}
			one, okOne := nodeByRef[tr.EntityOne]
			two, okTwo := nodeByRef[tr.EntityTwo]
			if !okOne || !okTwo {
				continue
			}
			seen[tr] = true
			triples = append(triples, tr)
			displayed[tr.EntityOne]++
			displayed[tr.EntityTwo]++
			links = append(links, &Link{
				Key:      LinkKey(tr),
				Source:   one.Key,
				Target:   two.Key,
				Role:     tr.Role,
				Distance: min(one.Distance, two.Distance),
			})
		}
	}

	for ref, n := range nodeByRef {
		n.Missing = n.Size - displayed[ref]
	}

	sortLinks(links, triples)

	log.Debugw("Traversal finished",
		"nodes", len(nodes),
		"links", len(links),
		"duration", time.Since(start).String())

	return newNeighborhood(center, roleNames, maxDegree, nodes, links), nil
}

// neighbors returns the distinct role-filtered triples touching ref, without
// self-loops, in store order.
func (t *Traverser) neighbors(ctx context.Context, ref types.EntityRef, roleNames []string) ([]types.Triple, error) {
	edges, err := t.store.EdgesTouching(ctx, ref, roleNames)
	if err != nil {
		return nil, fmt.Errorf("edges of %s: %w", ref, err)
	}
	seen := make(map[types.Triple]bool, len(edges))
	triples := make([]types.Triple, 0, len(edges))
	for _, e := range edges {
		tr := e.Triple()
		if tr.EntityOne == tr.EntityTwo || seen[tr] {
			continue
		}
		seen[tr] = true
		triples = append(triples, tr)
	}
	return triples, nil
}

// name resolves display names. Entities without metadata keep an empty name.
func (t *Traverser) name(ctx context.Context, ref types.EntityRef) (string, error) {
	e, err := t.store.GetEntity(ctx, ref)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("entity %s: %w", ref, err)
	}
	return e.Name, nil
}

func otherEnd(tr types.Triple, ref types.EntityRef) types.EntityRef {
	if tr.EntityOne == ref {
		return tr.EntityTwo
	}
	return tr.EntityOne
}

// sortLinks orders links by distance, then by their triple.
func sortLinks(links []*Link, triples []types.Triple) {
	order := make([]int, len(links))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if links[a].Distance != links[b].Distance {
			return links[a].Distance - links[b].Distance
		}
		return compareTriples(triples[a], triples[b])
	})
	sorted := make([]*Link, len(links))
	for i, j := range order {
		sorted[i] = links[j]
	}
	copy(links, sorted)
}

func compareTriples(a, b types.Triple) int {
	return types.CompareEdges(
		types.RelationEdge{EntityOne: a.EntityOne, Role: a.Role, EntityTwo: a.EntityTwo},
		types.RelationEdge{EntityOne: b.EntityOne, Role: b.Role, EntityTwo: b.EntityTwo},
	)
}
