// Package store persists relation edges and entity metadata and answers the
// neighbor lookups the traversal engine needs.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dbsmedya/relgraph/internal/types"
)

var (
	// ErrNotFound is returned when an entity has neither metadata nor edges.
	ErrNotFound = errors.New("entity not found")

	// ErrStoreUnavailable wraps I/O failures of the backing store. Callers may
	// retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Reader answers point and neighbor lookups.
type Reader interface {
	// GetEntity returns the entity's metadata. An entity that only appears in
	// edges is returned with an empty name.
	GetEntity(ctx context.Context, ref types.EntityRef) (*types.Entity, error)

	// EdgesTouching returns every stored edge with ref as either endpoint
	// whose role is in roles, sorted with types.CompareEdges. An empty role
	// list matches every role.
	EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error)
}

// Writer persists entities and edges. Both operations are idempotent.
type Writer interface {
	PutEntities(ctx context.Context, entities []types.Entity) error
	PutEdges(ctx context.Context, edges []types.RelationEdge) error
}

// Store is a full read/write relation store.
type Store interface {
	Reader
	Writer
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// roleSet returns nil when every role matches.
func roleSet(roles []string) map[string]struct{} {
	if len(roles) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// RoleSignature is a stable string for a role filter, used as a cache field.
func RoleSignature(roles []string) string {
	if len(roles) == 0 {
		return "*"
	}
	sorted := slices.Clone(roles)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), "|")
}
