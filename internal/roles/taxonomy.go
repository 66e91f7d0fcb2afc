// Package roles canonicalizes free-text credit roles against a fixed taxonomy.
package roles

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var builtinTaxonomy []byte

// RoleDescriptor describes one canonical role.
type RoleDescriptor struct {
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
}

// Taxonomy is an immutable lookup table of canonical roles. It is safe for
// concurrent use.
type Taxonomy struct {
	roles map[string]RoleDescriptor
	names []string
}

type taxonomyFile struct {
	Roles []RoleDescriptor `yaml:"roles"`
}

// NewTaxonomy builds a taxonomy from descriptors. Names must be non-empty and unique.
func NewTaxonomy(descs []RoleDescriptor) (*Taxonomy, error) {
	t := &Taxonomy{
		roles: make(map[string]RoleDescriptor, len(descs)),
		names: make([]string, 0, len(descs)),
	}
	for i, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("role %d has an empty name", i)
		}
		if _, dup := t.roles[d.Name]; dup {
			return nil, fmt.Errorf("duplicate role %q", d.Name)
		}
		t.roles[d.Name] = d
		t.names = append(t.names, d.Name)
	}
	slices.Sort(t.names)
	return t, nil
}

// LoadTaxonomy parses a YAML taxonomy document with a top-level "roles" list.
func LoadTaxonomy(r io.Reader) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("taxonomy defines no roles")
	}
	return NewTaxonomy(f.Roles)
}

// LoadTaxonomyFile loads a taxonomy from path, or the built-in taxonomy when
// path is empty.
func LoadTaxonomyFile(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer f.Close()
	return LoadTaxonomy(f)
}

var defaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	var f taxonomyFile
	if err := yaml.Unmarshal(builtinTaxonomy, &f); err != nil {
		panic(fmt.Sprintf("built-in taxonomy is invalid: %v", err))
	}
	t, err := NewTaxonomy(f.Roles)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy is invalid: %v", err))
	}
	return t
})

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy()
}

// Lookup returns the descriptor for a canonical role name.
func (t *Taxonomy) Lookup(name string) (RoleDescriptor, bool) {
	d, ok := t.roles[name]
	return d, ok
}

// Contains reports whether name is a canonical role.
func (t *Taxonomy) Contains(name string) bool {
	_, ok := t.roles[name]
	return ok
}

// Names returns all canonical role names in sorted order.
func (t *Taxonomy) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of roles.
func (t *Taxonomy) Len() int {
	return len(t.names)
}

// ByCategory groups descriptors by category, categories ordered by first
// appearance in sorted role order.
func (t *Taxonomy) ByCategory() *orderedmap.OrderedMap[string, []RoleDescriptor] {
	out := orderedmap.NewOrderedMap[string, []RoleDescriptor]()
	for _, name := range t.names {
		d := t.roles[name]
		group, _ := out.Get(d.Category)
		out.Set(d.Category, append(group, d))
	}
	return out
}
