// Package graph expands the neighborhood of an entity over the relation store
// and partitions it into link-preserving pages.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dbsmedya/relgraph/internal/roles"
	"github.com/dbsmedya/relgraph/internal/types"
)

// ErrInvalidBudget is returned for a negative page budget.
var ErrInvalidBudget = errors.New("invalid page budget")

// Node is an entity in a neighborhood.
type Node struct {
	Key      string           `json:"key"`
	ID       int64            `json:"id"`
	Kind     types.EntityKind `json:"kind"`
	Name     string           `json:"name,omitempty"`
	Distance int              `json:"distance"`
	// Size counts the role-filtered relations of the entity in the store.
	Size int `json:"size"`
	// Missing counts relations not represented by any link of the neighborhood.
	Missing int `json:"missing"`
	// MissingByPage is set only for nodes replicated onto several pages.
	MissingByPage map[int]int `json:"missingByPage,omitempty"`
	Pages         []int       `json:"pages"`
	Cluster       int         `json:"cluster,omitempty"`
}

// Ref returns the entity reference of the node.
func (n *Node) Ref() types.EntityRef {
	return types.EntityRef{Kind: n.Kind, ID: n.ID}
}

// Link is a relation between two nodes of a neighborhood.
type Link struct {
	Key      string `json:"key"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Role     string `json:"role"`
	Distance int    `json:"distance"`
	Pages    []int  `json:"pages"`
}

// LinkKey is the identity of a link: endpoint keys joined by the role slug.
func LinkKey(t types.Triple) string {
	return t.EntityOne.Key() + "-" + roles.Slug(t.Role) + "-" + t.EntityTwo.Key()
}

// Touches reports whether key is an endpoint of the link.
func (l *Link) Touches(key string) bool {
	return l.Source == key || l.Target == key
}

// Neighborhood is the unpaginated result of a traversal. Nodes are ordered by
// distance then entity; links by distance then triple.
type Neighborhood struct {
	Center    types.EntityRef
	Roles     []string
	MaxDegree int
	Nodes     []*Node
	Links     []*Link

	index map[string]*Node
}

func newNeighborhood(center types.EntityRef, roleNames []string, maxDegree int, nodes []*Node, links []*Link) *Neighborhood {
	slices.SortFunc(nodes, func(a, b *Node) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return a.Ref().Compare(b.Ref())
	})
	index := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		index[n.Key] = n
	}
	return &Neighborhood{
		Center:    center,
		Roles:     roleNames,
		MaxDegree: maxDegree,
		Nodes:     nodes,
		Links:     links,
		index:     index,
	}
}

// Node returns the node with the given key, or nil.
func (n *Neighborhood) Node(key string) *Node {
	return n.index[key]
}

// adjacency maps each node key to the sorted keys of its linked neighbors.
func (n *Neighborhood) adjacency() map[string][]string {
	adj := make(map[string][]string, len(n.Nodes))
	for _, l := range n.Links {
		adj[l.Source] = append(adj[l.Source], l.Target)
		adj[l.Target] = append(adj[l.Target], l.Source)
	}
	for k, keys := range adj {
		slices.Sort(keys)
		adj[k] = slices.Compact(keys)
	}
	return adj
}

// Page is one link-preserving slice of a neighborhood. Nodes and links are
// shared with the neighborhood.
type Page struct {
	Number int     `json:"number"`
	Nodes  []*Node `json:"nodes"`
	Links  []*Link `json:"links"`
}

// Budget bounds a page either by node count or by link-to-node ratio. Zero
// values mean unbounded. When both are set LinkRatio takes precedence.
type Budget struct {
	MaxNodes  int     `json:"maxNodes,omitempty"`
	LinkRatio float64 `json:"linkRatio,omitempty"`
}

// Validate rejects negative budgets.
func (b Budget) Validate() error {
	if b.MaxNodes < 0 {
		return fmt.Errorf("%w: max nodes %d", ErrInvalidBudget, b.MaxNodes)
	}
	if b.LinkRatio < 0 || math.IsNaN(b.LinkRatio) || math.IsInf(b.LinkRatio, 0) {
		return fmt.Errorf("%w: link ratio %v", ErrInvalidBudget, b.LinkRatio)
	}
	return nil
}

// NodeCap converts the budget into a per-page node cap for a neighborhood
// of the given size. Zero means everything fits on one page.
//
// A ratio budget leaves sparse neighborhoods whole. Denser ones are cut so
// the cap shrinks in proportion to how far the density exceeds the ratio.
func (b Budget) NodeCap(nodes, links int) int {
	if b.LinkRatio > 0 {
		if nodes == 0 {
			return 0
		}
		density := float64(links) / float64(nodes)
		if density <= b.LinkRatio {
			return 0
		}
		return max(2, int(math.Ceil(float64(nodes)*b.LinkRatio/density)))
	}
	return max(0, b.MaxNodes)
}
