package types

import (
	"cmp"
	"fmt"
)

// RelationEdge is a role-labeled connection between two entities.
// ReleaseID and Year are zero when the edge is not attributed to a release.
type RelationEdge struct {
	EntityOne EntityRef `json:"entity_one"`
	Role      string    `json:"role"`
	EntityTwo EntityRef `json:"entity_two"`
	ReleaseID int64     `json:"release_id,omitempty"`
	Year      int       `json:"year,omitempty"`
}

// Triple is the (entityOne, role, entityTwo) part of an edge, used for
// deduplication within a release and for link identity during traversal.
type Triple struct {
	EntityOne EntityRef
	Role      string
	EntityTwo EntityRef
}

// Triple returns the edge without its release attribution.
func (e RelationEdge) Triple() Triple {
	return Triple{EntityOne: e.EntityOne, Role: e.Role, EntityTwo: e.EntityTwo}
}

// Touches reports whether ref is one of the edge's endpoints.
func (e RelationEdge) Touches(ref EntityRef) bool {
	return e.EntityOne == ref || e.EntityTwo == ref
}

// Other returns the endpoint opposite ref. For a self-loop it returns ref.
func (e RelationEdge) Other(ref EntityRef) EntityRef {
	if e.EntityOne == ref {
		return e.EntityTwo
	}
	return e.EntityOne
}

func (e RelationEdge) String() string {
	s := fmt.Sprintf("%s -[%s]-> %s", e.EntityOne, e.Role, e.EntityTwo)
	if e.ReleaseID != 0 {
		s += fmt.Sprintf(" (release %d", e.ReleaseID)
		if e.Year != 0 {
			s += fmt.Sprintf(", %d", e.Year)
		}
		s += ")"
	}
	return s
}

// CompareEdges orders edges by entityOne, role, entityTwo, release, year.
func CompareEdges(a, b RelationEdge) int {
	if c := a.EntityOne.Compare(b.EntityOne); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Role, b.Role); c != 0 {
		return c
	}
	if c := a.EntityTwo.Compare(b.EntityTwo); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ReleaseID, b.ReleaseID); c != 0 {
		return c
	}
	return cmp.Compare(a.Year, b.Year)
}
