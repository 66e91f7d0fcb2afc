package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

func TestCluster_SharedHubs(t *testing.T) {
	n := traverseFixture(t, 2)

	assert.Equal(t, 1, Cluster(n))
	for _, node := range n.Nodes {
		if node.Distance < 2 {
			assert.Zero(t, node.Cluster, "%s must not be clustered", node.Key)
		} else {
			assert.Equal(t, 1, node.Cluster, node.Key)
		}
	}
}

func TestCluster_DistinctSignatures(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	center, hubA, hubB := types.Artist(1), types.Artist(2), types.Artist(3)
	member := func(id int64, band types.EntityRef) types.RelationEdge {
		return types.RelationEdge{EntityOne: types.Artist(id), Role: "Member Of", EntityTwo: band}
	}
	require.NoError(t, s.PutEdges(ctx, []types.RelationEdge{
		member(1, hubA), member(1, hubB),
		member(10, hubA), member(11, hubA),
		member(20, hubB), member(21, hubB),
		member(30, hubA), member(30, hubB),
	}))

	n, err := NewTraverser(s, nil).Traverse(ctx, center, structuralRoles, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, Cluster(n))
	assert.Equal(t, 1, n.Node("artist-10").Cluster)
	assert.Equal(t, 1, n.Node("artist-11").Cluster)
	assert.Equal(t, 2, n.Node("artist-20").Cluster)
	assert.Equal(t, 2, n.Node("artist-21").Cluster)
	assert.Zero(t, n.Node("artist-30").Cluster, "a singleton signature gets no cluster")
	assert.Zero(t, n.Node("artist-2").Cluster)

	// Stable across runs.
	again, err := NewTraverser(s, nil).Traverse(ctx, center, structuralRoles, 2)
	require.NoError(t, err)
	Cluster(again)
	for _, node := range n.Nodes {
		assert.Equal(t, node.Cluster, again.Node(node.Key).Cluster)
	}
}
