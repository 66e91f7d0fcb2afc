package roles

import (
	"regexp"
	"strings"

	"github.com/dbsmedya/relgraph/internal/logger"
)

// AggregateRoles connect the credited artist to every artist on the
// tracklist rather than to the release's primary entities.
var AggregateRoles = map[string]bool{
	"Compiled By": true,
	"Curated By":  true,
	"DJ Mix":      true,
	"Hosted By":   true,
	"Presenter":   true,
}

// IsAggregate reports whether a canonical role fans out to the whole tracklist.
func IsAggregate(role string) bool {
	return AggregateRoles[role]
}

// Canonicalizer maps raw credit strings onto taxonomy role names. It holds no
// mutable state and is safe for concurrent use.
type Canonicalizer struct {
	taxonomy *Taxonomy
	rules    []Rule
	logger   *logger.Logger
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithOverrides replaces the literal override table.
func WithOverrides(overrides map[string]string) Option {
	return func(c *Canonicalizer) {
		c.rules = DefaultRules(overrides)
	}
}

// WithRules replaces the whole rule chain.
func WithRules(rules ...Rule) Option {
	return func(c *Canonicalizer) {
		c.rules = rules
	}
}

// WithLogger sets the logger used to report unresolved roles.
func WithLogger(log *logger.Logger) Option {
	return func(c *Canonicalizer) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewCanonicalizer creates a canonicalizer over the given taxonomy.
func NewCanonicalizer(taxonomy *Taxonomy, opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		taxonomy: taxonomy,
		rules:    DefaultRules(DefaultOverrides),
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Taxonomy returns the taxonomy the canonicalizer resolves against.
func (c *Canonicalizer) Taxonomy() *Taxonomy {
	return c.taxonomy
}

// SplitCredit splits a raw credit on " & " and " and " into trimmed parts.
func SplitCredit(raw string) []string {
	raw = strings.ReplaceAll(raw, " and ", " & ")
	var parts []string
	for _, part := range strings.Split(raw, " & ") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Canonicalize normalizes a single role name. It never fails; unknown names
// come back best-effort.
func (c *Canonicalizer) Canonicalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, rule := range c.rules {
		var done bool
		name, done = rule.Apply(name)
		if done {
			break
		}
	}
	return name
}

// SplitRoles splits a raw credit on " & " and " and " and canonicalizes
// every part independently.
func (c *Canonicalizer) SplitRoles(raw string) []string {
	parts := SplitCredit(raw)
	for i, part := range parts {
		parts[i] = c.Canonicalize(part)
	}
	return parts
}

var trailingConnective = regexp.MustCompile(`\s+(By|To|At|For|On|With)$`)

// Lookup resolves one canonical name against the taxonomy, retrying without a
// trailing connective word and with " By" / " To" re-appended. An all-caps
// name that does not resolve as written is retried in its canonical mixed-case
// form ("MASTERED-BY" -> "Mastered By").
func (c *Canonicalizer) Lookup(name string) (string, bool) {
	if role, ok := c.lookup(name); ok {
		return role, true
	}
	if isAllUpper(name) {
		return c.lookup(c.Canonicalize(strings.ToLower(name)))
	}
	return "", false
}

func (c *Canonicalizer) lookup(name string) (string, bool) {
	if c.taxonomy.Contains(name) {
		return name, true
	}
	stem := trailingConnective.ReplaceAllString(name, "")
	for _, candidate := range []string{stem, stem + " By", stem + " To"} {
		if c.taxonomy.Contains(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Resolve splits, canonicalizes and looks up every part of a raw credit,
// returning the taxonomy names that resolved. Unresolved parts are logged and
// dropped.
func (c *Canonicalizer) Resolve(raw string) []string {
	var resolved []string
	for _, name := range c.SplitRoles(raw) {
		role, ok := c.Lookup(name)
		if !ok {
			c.logger.Debugw("Unresolved credit role", "raw", raw, "canonical", name)
			continue
		}
		resolved = append(resolved, role)
	}
	return resolved
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug renders a role for link identity: lowercase with non-alphanumeric runs
// collapsed to single hyphens ("Member Of" -> "member-of").
func Slug(role string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(role), "-"), "-")
}
