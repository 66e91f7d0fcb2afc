package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/relgraph/internal/types"
)

func TestEntities(t *testing.T) {
	release := &types.ReleaseRecord{
		ID:           1,
		Artists:      []types.ArtistCredit{{ID: 194, Name: types.VariousArtistsName}},
		Labels:       []types.LabelCredit{{ID: 10, Name: "Paisley Park"}},
		ExtraArtists: []types.ArtistCredit{{ID: 3, Name: "Prince", Roles: []string{"Producer"}}},
		Companies:    []types.CompanyCredit{{ID: 20, Name: "Sunset Sound", EntityType: "Recorded At"}},
		Tracklist: []types.Track{
			{Artists: []types.ArtistCredit{{ID: 152882, Name: "Morris Day"}, {ID: 0, Name: "Unknown"}}},
			{Artists: []types.ArtistCredit{{ID: 3, Name: "Prince"}, {ID: 4}}},
		},
	}

	assert.Equal(t, []types.Entity{
		{Ref: types.Artist(3), Name: "Prince"},
		{Ref: types.Artist(152882), Name: "Morris Day"},
		{Ref: types.Label(10), Name: "Paisley Park"},
		{Ref: types.Label(20), Name: "Sunset Sound"},
	}, Entities(release))

	assert.Nil(t, Entities(nil))
}
