package types

import (
	"strconv"
	"strings"
)

// VariousArtistsName is the placeholder artist name marking a compilation.
const VariousArtistsName = "Various"

// ArtistCredit is an artist credited on a release or track. Roles is only
// populated for extra-artist credits.
type ArtistCredit struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// LabelCredit is a label a release was issued on.
type LabelCredit struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CatalogNumber string `json:"catalog_number,omitempty"`
}

// CompanyCredit is a company (a label entity) credited with a role such as
// "Pressed By" or "Recorded At".
type CompanyCredit struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
}

// Track is a single tracklist entry.
type Track struct {
	Position     string         `json:"position,omitempty"`
	Title        string         `json:"title,omitempty"`
	Artists      []ArtistCredit `json:"artists,omitempty"`
	ExtraArtists []ArtistCredit `json:"extra_artists,omitempty"`
}

// ReleaseRecord is one parsed release from the feed.
type ReleaseRecord struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title,omitempty"`
	ReleaseDate  string          `json:"release_date,omitempty"`
	Artists      []ArtistCredit  `json:"artists,omitempty"`
	Labels       []LabelCredit   `json:"labels,omitempty"`
	ExtraArtists []ArtistCredit  `json:"extra_artists,omitempty"`
	Companies    []CompanyCredit `json:"companies,omitempty"`
	Tracklist    []Track         `json:"tracklist,omitempty"`
}

// IsCompilation reports whether the release lists exactly one artist credit
// whose name is the "Various" placeholder.
func (r *ReleaseRecord) IsCompilation() bool {
	return len(r.Artists) == 1 && r.Artists[0].Name == VariousArtistsName
}

// Year returns the year of the release date, or 0 when unknown.
// Accepts "YYYY", "YYYY-MM" and "YYYY-MM-DD".
func (r *ReleaseRecord) Year() int {
	date := strings.TrimSpace(r.ReleaseDate)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// EntityRecord is one parsed artist or label from the feed. Aliases, Groups
// and Members apply to artists; ParentLabel applies to labels.
type EntityRecord struct {
	Kind        EntityKind `json:"kind"`
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Aliases     []int64    `json:"aliases,omitempty"`
	Groups      []int64    `json:"groups,omitempty"`
	Members     []int64    `json:"members,omitempty"`
	ParentLabel int64      `json:"parent_label,omitempty"`
}

// Ref returns the record's entity reference.
func (e *EntityRecord) Ref() EntityRef {
	return EntityRef{Kind: e.Kind, ID: e.ID}
}

// Entity returns the store metadata for the record.
func (e *EntityRecord) Entity() Entity {
	return Entity{Ref: e.Ref(), Name: e.Name}
}
