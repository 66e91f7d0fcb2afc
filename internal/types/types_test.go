package types

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityRef_KeyRoundTrip(t *testing.T) {
	tests := []struct {
		ref EntityRef
		key string
	}{
		{Artist(152882), "artist-152882"},
		{Label(1), "label-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.ref.Key())
			parsed, err := ParseEntityRef(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.ref, parsed)
		})
	}
}

func TestParseEntityRef_Invalid(t *testing.T) {
	for _, key := range []string{"", "artist", "band-1", "artist-x"} {
		_, err := ParseEntityRef(key)
		assert.Error(t, err, key)
	}
}

func TestEntityRef_OrderingByKindThenID(t *testing.T) {
	refs := []EntityRef{Label(1), Artist(30), Artist(2), Label(0)}
	slices.SortFunc(refs, EntityRef.Compare)

	assert.Equal(t, []EntityRef{Artist(2), Artist(30), Label(0), Label(1)}, refs)
	assert.True(t, Artist(999).Less(Label(1)))
}

func TestEntityKind_JSON(t *testing.T) {
	var rec EntityRecord
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"Label","id":7,"name":"Warner","parent_label":3}`), &rec))
	assert.Equal(t, Label(7), rec.Ref())
	assert.Equal(t, int64(3), rec.ParentLabel)

	out, err := json.Marshal(Artist(5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"artist","id":5}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"band"}`), &rec))
}

func TestRelationEdge_Helpers(t *testing.T) {
	e := RelationEdge{EntityOne: Artist(1), Role: "Member Of", EntityTwo: Artist(2), ReleaseID: 10, Year: 1984}

	assert.True(t, e.Touches(Artist(1)))
	assert.False(t, e.Touches(Label(1)))
	assert.Equal(t, Artist(2), e.Other(Artist(1)))
	assert.Equal(t, Artist(1), e.Other(Artist(2)))
	assert.Equal(t, Triple{Artist(1), "Member Of", Artist(2)}, e.Triple())
	assert.Equal(t, "artist-1 -[Member Of]-> artist-2 (release 10, 1984)", e.String())
}

func TestCompareEdges(t *testing.T) {
	a := RelationEdge{EntityOne: Artist(1), Role: "Alias", EntityTwo: Artist(2)}
	b := RelationEdge{EntityOne: Artist(1), Role: "Alias", EntityTwo: Artist(2), ReleaseID: 5}
	c := RelationEdge{EntityOne: Artist(1), Role: "Member Of", EntityTwo: Artist(2)}

	assert.Negative(t, CompareEdges(a, b))
	assert.Negative(t, CompareEdges(b, c))
	assert.Zero(t, CompareEdges(c, c))
}

func TestReleaseRecord_IsCompilation(t *testing.T) {
	tests := []struct {
		name    string
		artists []ArtistCredit
		want    bool
	}{
		{"single various", []ArtistCredit{{ID: 194, Name: "Various"}}, true},
		{"single artist", []ArtistCredit{{ID: 1, Name: "Morris Day"}}, false},
		{"various plus another", []ArtistCredit{{ID: 194, Name: "Various"}, {ID: 1, Name: "X"}}, false},
		{"lowercase placeholder", []ArtistCredit{{ID: 194, Name: "various"}}, false},
		{"no artists", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ReleaseRecord{Artists: tt.artists}
			assert.Equal(t, tt.want, r.IsCompilation())
		})
	}
}

func TestReleaseRecord_Year(t *testing.T) {
	tests := map[string]int{
		"":           0,
		"1984":       1984,
		"1984-07":    1984,
		"1984-07-27": 1984,
		"19":         0,
		"abcd-01-01": 0,
		"0000":       0,
	}

	for date, want := range tests {
		r := &ReleaseRecord{ReleaseDate: date}
		assert.Equal(t, want, r.Year(), date)
	}
}
