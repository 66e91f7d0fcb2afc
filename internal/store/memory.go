package store

import (
	"context"
	"slices"
	"sync"

	"github.com/dbsmedya/relgraph/internal/types"
)

// MemoryStore is an in-process Store used by tests and small imports.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[types.EntityRef]types.Entity
	edges    map[types.RelationEdge]struct{}
	touching map[types.EntityRef][]types.RelationEdge
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[types.EntityRef]types.Entity),
		edges:    make(map[types.RelationEdge]struct{}),
		touching: make(map[types.EntityRef][]types.RelationEdge),
	}
}

// GetEntity implements Reader.
func (m *MemoryStore) GetEntity(ctx context.Context, ref types.EntityRef) (*types.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get entity", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.entities[ref]; ok {
		return &e, nil
	}
	if len(m.touching[ref]) > 0 {
		return &types.Entity{Ref: ref}, nil
	}
	return nil, ErrNotFound
}

// EdgesTouching implements Reader.
func (m *MemoryStore) EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("edges touching", err)
	}
	filter := roleSet(roles)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.RelationEdge
	for _, e := range m.touching[ref] {
		if filter != nil {
			if _, ok := filter[e.Role]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	slices.SortFunc(out, types.CompareEdges)
	return out, nil
}

// PutEntities implements Writer. A stored name is kept; only entities without
// one take the incoming name.
func (m *MemoryStore) PutEntities(ctx context.Context, entities []types.Entity) error {
	if err := ctx.Err(); err != nil {
		return unavailable("put entities", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entities {
		if cur, ok := m.entities[e.Ref]; ok && cur.Name != "" {
			continue
		}
		m.entities[e.Ref] = e
	}
	return nil
}

// PutEdges implements Writer.
func (m *MemoryStore) PutEdges(ctx context.Context, edges []types.RelationEdge) error {
	if err := ctx.Err(); err != nil {
		return unavailable("put edges", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range edges {
		if _, ok := m.edges[e]; ok {
			continue
		}
		m.edges[e] = struct{}{}
		m.touching[e.EntityOne] = append(m.touching[e.EntityOne], e)
		if e.EntityTwo != e.EntityOne {
			m.touching[e.EntityTwo] = append(m.touching[e.EntityTwo], e)
		}
	}
	return nil
}

// Len returns the number of stored edges.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
