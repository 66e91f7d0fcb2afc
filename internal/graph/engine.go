package graph

import (
	"context"
	"fmt"

	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

// Result is the paginated neighborhood returned to callers.
type Result struct {
	Center    string  `json:"center"`
	Nodes     []*Node `json:"nodes"`
	Links     []*Link `json:"links"`
	PageCount int     `json:"pageCount"`

	pages []*Page
}

// Pages returns the pages in order.
func (r *Result) Pages() []*Page {
	return r.pages
}

// Page returns page number p, counting from 1.
func (r *Result) Page(p int) (*Page, error) {
	if p < 1 || p > len(r.pages) {
		return nil, fmt.Errorf("page %d out of range (1-%d)", p, len(r.pages))
	}
	return r.pages[p-1], nil
}

// Engine answers neighborhood queries: traversal, clustering and pagination
// of one request. It is safe for concurrent use when its store is.
type Engine struct {
	traverser *Traverser
	logger    *logger.Logger
}

// NewEngine creates an engine over r.
func NewEngine(r store.Reader, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{traverser: NewTraverser(r, log), logger: log}
}

// TraverseAndPaginate expands the neighborhood of center and splits it into
// pages within budget.
func (e *Engine) TraverseAndPaginate(ctx context.Context, center types.EntityRef, roleNames []string, maxDegree int, budget Budget) (*Result, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	n, err := e.traverser.Traverse(ctx, center, roleNames, maxDegree)
	if err != nil {
		return nil, err
	}

	clusters := Cluster(n)
	pages := Paginate(n, budget)

	e.logger.WithEntity(center).Debugw("Neighborhood paginated",
		"nodes", len(n.Nodes),
		"links", len(n.Links),
		"clusters", clusters,
		"pages", len(pages))

	return &Result{
		Center:    center.Key(),
		Nodes:     n.Nodes,
		Links:     n.Links,
		PageCount: len(pages),
		pages:     pages,
	}, nil
}
