// Package extract turns parsed release and entity records into relation edges.
package extract

import (
	"errors"
	"fmt"
	"slices"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/roles"
	"github.com/dbsmedya/relgraph/internal/types"
)

// Structural roles produced by the extractor itself rather than by credits.
const (
	RoleReleasedOn = "Released On"
	RoleCompiledOn = "Compiled On"
	RoleAlias      = "Alias"
	RoleMemberOf   = "Member Of"
	RoleSublabelOf = "Sublabel Of"
)

var (
	// ErrMalformedRelease is returned for a release without an id, or with
	// neither artists nor labels.
	ErrMalformedRelease = errors.New("malformed release")

	// ErrMalformedEntity is returned for an entity record without an id or kind.
	ErrMalformedEntity = errors.New("malformed entity record")
)

// Extractor derives relation edges from release records. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	canon  *roles.Canonicalizer
	logger *logger.Logger
}

// New creates an extractor resolving roles through canon.
func New(canon *roles.Canonicalizer, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{canon: canon, logger: log}
}

// refSet is an insertion-ordered set of entity references.
type refSet struct {
	seen map[types.EntityRef]struct{}
	refs []types.EntityRef
}

func newRefSet() *refSet {
	return &refSet{seen: make(map[types.EntityRef]struct{})}
}

func (s *refSet) add(ref types.EntityRef) {
	if ref.ID <= 0 {
		return
	}
	if _, ok := s.seen[ref]; ok {
		return
	}
	s.seen[ref] = struct{}{}
	s.refs = append(s.refs, ref)
}

func (s *refSet) addArtists(credits []types.ArtistCredit) {
	for _, c := range credits {
		s.add(types.Artist(c.ID))
	}
}

func (s *refSet) len() int {
	return len(s.refs)
}

// edgeSet deduplicates triples within one release.
type edgeSet struct {
	seen    map[types.Triple]struct{}
	triples []types.Triple
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: make(map[types.Triple]struct{})}
}

func (s *edgeSet) add(one types.EntityRef, role string, two types.EntityRef) {
	// A credit pointing back at the same entity carries no structure, and an
	// unlinked credit has no entity to attach to.
	if one == two || one.ID <= 0 || two.ID <= 0 {
		return
	}
	t := types.Triple{EntityOne: one, Role: role, EntityTwo: two}
	if _, ok := s.seen[t]; ok {
		return
	}
	s.seen[t] = struct{}{}
	s.triples = append(s.triples, t)
}

func (s *edgeSet) edges(releaseID int64, year int) []types.RelationEdge {
	out := make([]types.RelationEdge, 0, len(s.triples))
	for _, t := range s.triples {
		out = append(out, types.RelationEdge{
			EntityOne: t.EntityOne,
			Role:      t.Role,
			EntityTwo: t.EntityTwo,
			ReleaseID: releaseID,
			Year:      year,
		})
	}
	slices.SortFunc(out, types.CompareEdges)
	return out
}

// Extract returns the sorted, deduplicated edges of one release.
func (x *Extractor) Extract(release *types.ReleaseRecord) ([]types.RelationEdge, error) {
	if release == nil || release.ID <= 0 {
		return nil, fmt.Errorf("%w: missing release id", ErrMalformedRelease)
	}
	log := x.logger.WithRelease(release.ID)

	compilation := release.IsCompilation()

	artists := newRefSet()
	if compilation {
		for _, track := range release.Tracklist {
			artists.addArtists(track.Artists)
		}
	} else {
		artists.addArtists(release.Artists)
	}
	labels := newRefSet()
	for _, l := range release.Labels {
		labels.add(types.Label(l.ID))
	}
	if artists.len() == 0 && labels.len() == 0 {
		return nil, fmt.Errorf("%w: release %d has no artists and no labels", ErrMalformedRelease, release.ID)
	}

	primary := artists
	if compilation || artists.len() == 0 {
		primary = labels
	}
	if primary.len() == 0 {
		primary = artists
	}

	out := newEdgeSet()

	linkRole := RoleReleasedOn
	if compilation {
		linkRole = RoleCompiledOn
	}
	for _, a := range artists.refs {
		for _, l := range labels.refs {
			out.add(a, linkRole, l)
		}
	}

	// Aggregate roles are collected here and fanned out after the tracklist
	// has been read.
	deferred := orderedmap.NewOrderedMap[string, *refSet]()
	credit := func(credited types.EntityRef, raw string, targets *refSet) {
		if credited.ID <= 0 {
			return
		}
		for _, role := range x.canon.Resolve(raw) {
			if roles.IsAggregate(role) {
				group, ok := deferred.Get(role)
				if !ok {
					group = newRefSet()
					deferred.Set(role, group)
				}
				group.add(credited)
				continue
			}
			for _, target := range targets.refs {
				out.add(credited, role, target)
			}
		}
	}

	for _, ea := range release.ExtraArtists {
		for _, raw := range ea.Roles {
			credit(types.Artist(ea.ID), raw, primary)
		}
	}

	for _, company := range release.Companies {
		if company.ID <= 0 {
			continue
		}
		for _, role := range x.canon.Resolve(company.EntityType) {
			if roles.IsAggregate(role) {
				continue
			}
			for _, target := range primary.refs {
				out.add(types.Label(company.ID), role, target)
			}
		}
	}

	trackArtists := newRefSet()
	for _, track := range release.Tracklist {
		trackArtists.addArtists(track.Artists)

		targets := newRefSet()
		targets.addArtists(track.Artists)
		if targets.len() == 0 {
			targets = primary
		}
		for _, ea := range track.ExtraArtists {
			for _, raw := range ea.Roles {
				credit(types.Artist(ea.ID), raw, targets)
			}
		}
	}

	for el := deferred.Front(); el != nil; el = el.Next() {
		for _, credited := range el.Value.refs {
			for _, trackArtist := range trackArtists.refs {
				out.add(credited, el.Key, trackArtist)
			}
		}
	}

	edges := out.edges(release.ID, release.Year())
	log.Debugw("Extracted release edges", "edges", len(edges), "compilation", compilation)
	return edges, nil
}

// ExtractEntity returns the structural edges carried by an artist or label
// record: aliases, group memberships and parent labels. The edges carry no
// release attribution.
func (x *Extractor) ExtractEntity(record *types.EntityRecord) ([]types.RelationEdge, error) {
	if record == nil || record.ID <= 0 {
		return nil, fmt.Errorf("%w: missing entity id", ErrMalformedEntity)
	}
	self := record.Ref()
	out := newEdgeSet()

	switch record.Kind {
	case types.KindArtist:
		for _, id := range record.Aliases {
			if id <= 0 {
				continue
			}
			other := types.Artist(id)
			// Alias pairs are stored once, low id first.
			if other.Less(self) {
				out.add(other, RoleAlias, self)
			} else {
				out.add(self, RoleAlias, other)
			}
		}
		for _, id := range record.Groups {
			if id > 0 {
				out.add(self, RoleMemberOf, types.Artist(id))
			}
		}
		for _, id := range record.Members {
			if id > 0 {
				out.add(types.Artist(id), RoleMemberOf, self)
			}
		}
	case types.KindLabel:
		if record.ParentLabel > 0 {
			out.add(self, RoleSublabelOf, types.Label(record.ParentLabel))
		}
	default:
		return nil, fmt.Errorf("%w: entity %d has unknown kind %d", ErrMalformedEntity, record.ID, int(record.Kind))
	}

	edges := out.edges(0, 0)
	x.logger.WithEntity(self).Debugw("Extracted entity edges", "edges", len(edges))
	return edges, nil
}
