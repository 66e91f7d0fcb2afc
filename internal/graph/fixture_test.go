package graph

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

var (
	morrisDay       = types.Artist(152882)
	theTime         = types.Artist(32550)
	theOriginal7ven = types.Artist(2561672)
)

var structuralRoles = []string{"Alias", "Member Of"}

// morrisDayStore holds Morris Day, the two bands he belongs to and eight
// members shared by both bands: 11 entities and 18 membership edges.
func morrisDayStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	entities := []types.Entity{
		{Ref: morrisDay, Name: "Morris Day"},
		{Ref: theTime, Name: "The Time"},
		{Ref: theOriginal7ven, Name: "The Original 7ven"},
	}
	members := []string{
		"Jimmy Jam", "Terry Lewis", "Jesse Johnson", "Jerome Benton",
		"Monte Moir", "Jellybean Johnson", "Paul Peterson", "Mark Cardenas",
	}
	var edges []types.RelationEdge
	for _, band := range []types.EntityRef{theTime, theOriginal7ven} {
		edges = append(edges, types.RelationEdge{EntityOne: morrisDay, Role: "Member Of", EntityTwo: band})
	}
	for i, name := range members {
		ref := types.Artist(int64(100001 + i))
		entities = append(entities, types.Entity{Ref: ref, Name: name})
		for _, band := range []types.EntityRef{theTime, theOriginal7ven} {
			edges = append(edges, types.RelationEdge{EntityOne: ref, Role: "Member Of", EntityTwo: band})
		}
	}

	// Same triple from a release, and roles outside the structural filter.
	edges = append(edges,
		types.RelationEdge{EntityOne: morrisDay, Role: "Member Of", EntityTwo: theTime, ReleaseID: 99, Year: 1981},
		types.RelationEdge{EntityOne: morrisDay, Role: "Released On", EntityTwo: types.Label(1000), ReleaseID: 99, Year: 1981},
		types.RelationEdge{EntityOne: types.Artist(7), Role: "Producer", EntityTwo: theTime, ReleaseID: 99, Year: 1981},
		types.RelationEdge{EntityOne: morrisDay, Role: "Member Of", EntityTwo: morrisDay},
	)

	require.NoError(t, s.PutEntities(ctx, entities))
	require.NoError(t, s.PutEdges(ctx, edges))
	return s
}

// failingStore fails neighbor lookups for one entity.
type failingStore struct {
	store.Reader
	failOn types.EntityRef
	calls  atomic.Int32
}

func (f *failingStore) EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error) {
	f.calls.Add(1)
	if ref == f.failOn {
		return nil, store.ErrStoreUnavailable
	}
	return f.Reader.EdgesTouching(ctx, ref, roles)
}

// cancellingStore cancels the query context after the first neighbor lookup.
type cancellingStore struct {
	store.Reader
	cancel context.CancelFunc
}

func (c *cancellingStore) EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error) {
	edges, err := c.Reader.EdgesTouching(ctx, ref, roles)
	c.cancel()
	return edges, err
}

func nodeKeys(nodes []*Node) []string {
	keys := make([]string, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.Key)
	}
	return keys
}

func linkKeys(links []*Link) []string {
	keys := make([]string, 0, len(links))
	for _, l := range links {
		keys = append(keys, l.Key)
	}
	return keys
}
