package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/relgraph/internal/types"
)

func sampleEdges() []types.RelationEdge {
	return []types.RelationEdge{
		{EntityOne: types.Artist(152882), Role: "Member Of", EntityTwo: types.Artist(32550)},
		{EntityOne: types.Artist(152882), Role: "Member Of", EntityTwo: types.Artist(2561672)},
		{EntityOne: types.Artist(152882), Role: "Producer", EntityTwo: types.Artist(7), ReleaseID: 10, Year: 1984},
		{EntityOne: types.Artist(152882), Role: "Producer", EntityTwo: types.Artist(7), ReleaseID: 11, Year: 1985},
		{EntityOne: types.Artist(9), Role: "Member Of", EntityTwo: types.Artist(32550)},
	}
}

func TestMemoryStore_EdgesTouching(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.PutEdges(ctx, sampleEdges()))

	edges, err := s.EdgesTouching(ctx, types.Artist(152882), []string{"Member Of"})
	require.NoError(t, err)
	assert.Equal(t, []types.RelationEdge{
		{EntityOne: types.Artist(152882), Role: "Member Of", EntityTwo: types.Artist(32550)},
		{EntityOne: types.Artist(152882), Role: "Member Of", EntityTwo: types.Artist(2561672)},
	}, edges)

	edges, err = s.EdgesTouching(ctx, types.Artist(32550), []string{"Member Of", "Alias"})
	require.NoError(t, err)
	assert.Len(t, edges, 2, "edges are found from either endpoint")

	edges, err = s.EdgesTouching(ctx, types.Artist(152882), nil)
	require.NoError(t, err)
	assert.Len(t, edges, 4, "an empty filter matches every role")

	edges, err = s.EdgesTouching(ctx, types.Label(1), nil)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestMemoryStore_PutEdgesIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutEdges(ctx, sampleEdges()))
	require.NoError(t, s.PutEdges(ctx, sampleEdges()))
	assert.Equal(t, 5, s.Len())

	edges, err := s.EdgesTouching(ctx, types.Artist(7), []string{"Producer"})
	require.NoError(t, err)
	assert.Len(t, edges, 2, "same triple on different releases stays distinct")
}

func TestMemoryStore_GetEntity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.PutEdges(ctx, sampleEdges()))
	require.NoError(t, s.PutEntities(ctx, []types.Entity{{Ref: types.Artist(152882), Name: "Morris Day"}}))

	e, err := s.GetEntity(ctx, types.Artist(152882))
	require.NoError(t, err)
	assert.Equal(t, "Morris Day", e.Name)

	e, err = s.GetEntity(ctx, types.Artist(32550))
	require.NoError(t, err)
	assert.Equal(t, types.Entity{Ref: types.Artist(32550)}, *e)

	_, err = s.GetEntity(ctx, types.Label(32550))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutEntitiesKeepsStoredName(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutEntities(ctx, []types.Entity{
		{Ref: types.Artist(152882), Name: "Morris Day"},
		{Ref: types.Label(10)},
	}))
	require.NoError(t, s.PutEntities(ctx, []types.Entity{
		{Ref: types.Artist(152882), Name: "Morris E. Day"},
		{Ref: types.Label(10), Name: "Warner Bros. Records"},
	}))
	require.NoError(t, s.PutEntities(ctx, []types.Entity{{Ref: types.Label(10)}}))

	e, err := s.GetEntity(ctx, types.Artist(152882))
	require.NoError(t, err)
	assert.Equal(t, "Morris Day", e.Name)

	e, err = s.GetEntity(ctx, types.Label(10))
	require.NoError(t, err)
	assert.Equal(t, "Warner Bros. Records", e.Name, "an empty name is filled in and never cleared")
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	_, err := s.EdgesTouching(ctx, types.Artist(1), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GetEntity(ctx, types.Artist(1))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, s.PutEdges(ctx, sampleEdges()), ErrStoreUnavailable)
	assert.ErrorIs(t, s.PutEntities(ctx, nil), ErrStoreUnavailable)
}

func TestRoleSignature(t *testing.T) {
	assert.Equal(t, "*", RoleSignature(nil))
	assert.Equal(t, "Alias|Member Of", RoleSignature([]string{"Member Of", "Alias", "Member Of"}))
	assert.Equal(t, RoleSignature([]string{"b", "a"}), RoleSignature([]string{"a", "b"}))
}
