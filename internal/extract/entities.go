package extract

import (
	"slices"

	"github.com/dbsmedya/relgraph/internal/types"
)

// Entities returns the named artists and labels credited on a release,
// deduplicated and sorted. The compilation placeholder artist is skipped.
func Entities(release *types.ReleaseRecord) []types.Entity {
	if release == nil {
		return nil
	}
	byRef := make(map[types.EntityRef]string)
	addArtists := func(credits []types.ArtistCredit) {
		for _, c := range credits {
			if c.ID > 0 && c.Name != "" && c.Name != types.VariousArtistsName {
				byRef[types.Artist(c.ID)] = c.Name
			}
		}
	}

	addArtists(release.Artists)
	addArtists(release.ExtraArtists)
	for _, track := range release.Tracklist {
		addArtists(track.Artists)
		addArtists(track.ExtraArtists)
	}
	for _, l := range release.Labels {
		if l.ID > 0 && l.Name != "" {
			byRef[types.Label(l.ID)] = l.Name
		}
	}
	for _, c := range release.Companies {
		if c.ID > 0 && c.Name != "" {
			byRef[types.Label(c.ID)] = c.Name
		}
	}

	out := make([]types.Entity, 0, len(byRef))
	for ref, name := range byRef {
		out = append(out, types.Entity{Ref: ref, Name: name})
	}
	slices.SortFunc(out, func(a, b types.Entity) int {
		return a.Ref.Compare(b.Ref)
	})
	return out
}
