package graph

import (
	"cmp"
	"slices"
	"strings"
)

// Paginate splits n into pages under budget and records the page numbers on
// every node and link of n.
//
// Nodes are ordered by distance, then by neighbor signature so leaves hanging
// off the same hubs stay together, then by key, and dealt onto home pages of
// at most NodeCap nodes. Each link is placed on the home page of its
// later-ordered endpoint and the other endpoint is replicated there. Any link
// whose endpoints end up together on a page is shown on that page too.
func Paginate(n *Neighborhood, budget Budget) []*Page {
	for _, node := range n.Nodes {
		node.Pages = nil
		node.MissingByPage = nil
	}
	for _, link := range n.Links {
		link.Pages = nil
	}

	capacity := budget.NodeCap(len(n.Nodes), len(n.Links))
	if capacity <= 0 || len(n.Nodes) <= capacity {
		for _, node := range n.Nodes {
			node.Pages = []int{1}
		}
		for _, link := range n.Links {
			link.Pages = []int{1}
		}
		return []*Page{{Number: 1, Nodes: n.Nodes, Links: n.Links}}
	}

	ordered := orderForPaging(n)
	rank := make(map[*Node]int, len(ordered))
	home := make(map[*Node]int, len(ordered))
	for i, node := range ordered {
		rank[node] = i
		home[node] = i/capacity + 1
	}
	pageCount := (len(ordered) + capacity - 1) / capacity

	nodeOn := make([]map[*Node]bool, pageCount+1)
	linkOn := make([]map[*Link]bool, pageCount+1)
	for p := 1; p <= pageCount; p++ {
		nodeOn[p] = make(map[*Node]bool)
		linkOn[p] = make(map[*Link]bool)
	}

	for _, node := range ordered {
		nodeOn[home[node]][node] = true
	}
	for _, link := range n.Links {
		a, b := n.Node(link.Source), n.Node(link.Target)
		far := a
		if rank[b] > rank[a] {
			far = b
		}
		p := home[far]
		linkOn[p][link] = true
		nodeOn[p][a] = true
		nodeOn[p][b] = true
	}
	for p := 1; p <= pageCount; p++ {
		for _, link := range n.Links {
			if nodeOn[p][n.Node(link.Source)] && nodeOn[p][n.Node(link.Target)] {
				linkOn[p][link] = true
			}
		}
	}

	pages := make([]*Page, 0, pageCount)
	for p := 1; p <= pageCount; p++ {
		page := &Page{Number: p}
		for _, node := range n.Nodes {
			if nodeOn[p][node] {
				page.Nodes = append(page.Nodes, node)
				node.Pages = append(node.Pages, p)
			}
		}
		for _, link := range n.Links {
			if linkOn[p][link] {
				page.Links = append(page.Links, link)
				link.Pages = append(link.Pages, p)
			}
		}
		pages = append(pages, page)
	}

	for _, node := range n.Nodes {
		if len(node.Pages) < 2 {
			continue
		}
		node.MissingByPage = make(map[int]int, len(node.Pages))
		for _, p := range node.Pages {
			shown := 0
			for link := range linkOn[p] {
				if link.Touches(node.Key) {
					shown++
				}
			}
			node.MissingByPage[p] = node.Size - shown
		}
	}

	return pages
}

// orderForPaging sorts nodes by (distance, neighbor signature, key).
func orderForPaging(n *Neighborhood) []*Node {
	adj := n.adjacency()
	signature := make(map[*Node]string, len(n.Nodes))
	for _, node := range n.Nodes {
		signature[node] = strings.Join(adj[node.Key], ",")
	}

	ordered := slices.Clone(n.Nodes)
	slices.SortStableFunc(ordered, func(a, b *Node) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		if c := cmp.Compare(signature[a], signature[b]); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return ordered
}
