package graph

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Cluster groups nodes two or more hops from the center that link to exactly
// the same set of neighbors, and numbers the groups from 1 in node order.
// The center and its direct neighbors are never clustered. It returns the
// number of clusters.
func Cluster(n *Neighborhood) int {
	adj := n.adjacency()
	groups := orderedmap.NewOrderedMap[string, []*Node]()

	for _, node := range n.Nodes {
		node.Cluster = 0
		if node.Distance < 2 {
			continue
		}
		neighbors := adj[node.Key]
		if len(neighbors) == 0 {
			continue
		}
		sig := strings.Join(neighbors, ",")
		members, _ := groups.Get(sig)
		groups.Set(sig, append(members, node))
	}

	id := 0
	for el := groups.Front(); el != nil; el = el.Next() {
		if len(el.Value) < 2 {
			continue
		}
		id++
		for _, node := range el.Value {
			node.Cluster = id
		}
	}
	return id
}
