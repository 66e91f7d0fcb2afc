// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// EntityKind distinguishes the two kinds of graph node.
type EntityKind int

const (
	KindArtist EntityKind = 1
	KindLabel  EntityKind = 2
)

// String returns the lowercase kind name used in keys and config.
func (k EntityKind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ParseEntityKind converts "artist" or "label" (any case) to an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "artist":
		return KindArtist, nil
	case "label":
		return KindLabel, nil
	default:
		return 0, fmt.Errorf("unknown entity kind %q (must be 'artist' or 'label')", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EntityKind) MarshalText() ([]byte, error) {
	if k != KindArtist && k != KindLabel {
		return nil, fmt.Errorf("invalid entity kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EntityKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EntityRef identifies a graph node. Equality and ordering are by (kind, id).
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Artist returns a reference to the artist with the given id.
func Artist(id int64) EntityRef {
	return EntityRef{Kind: KindArtist, ID: id}
}

// Label returns a reference to the label with the given id.
func Label(id int64) EntityRef {
	return EntityRef{Kind: KindLabel, ID: id}
}

// Key returns the stable string key of the reference, e.g. "artist-152882".
func (r EntityRef) Key() string {
	return r.Kind.String() + "-" + strconv.FormatInt(r.ID, 10)
}

func (r EntityRef) String() string {
	return r.Key()
}

// Compare orders references by kind, then id.
func (r EntityRef) Compare(o EntityRef) int {
	if c := cmp.Compare(r.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(r.ID, o.ID)
}

// Less reports whether r sorts before o.
func (r EntityRef) Less(o EntityRef) bool {
	return r.Compare(o) < 0
}

// ParseEntityRef parses a key produced by EntityRef.Key.
func ParseEntityRef(key string) (EntityRef, error) {
	kind, id, ok := strings.Cut(key, "-")
	if !ok {
		return EntityRef{}, fmt.Errorf("invalid entity key %q", key)
	}
	k, err := ParseEntityKind(kind)
	if err != nil {
		return EntityRef{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return EntityRef{}, fmt.Errorf("invalid entity id in key %q: %w", key, err)
	}
	return EntityRef{Kind: k, ID: n}, nil
}

// Entity is the metadata the store keeps for a node.
type Entity struct {
	Ref  EntityRef `json:"ref"`
	Name string    `json:"name"`
}
