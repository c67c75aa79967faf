// Package naming holds the pure name-derivation functions: URL slugs for
// solutions and canonical keys for tags. Neither function touches the database;
// uniqueness is enforced by the registries that call them.
package naming

import (
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	tagNonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify maps a display name to a URL-safe identifier: lowercase, non-word
// characters stripped, whitespace/hyphen runs collapsed to single hyphens,
// leading and trailing hyphens trimmed. Deterministic and pure; the -1, -2
// collision suffixes are the solution registry's job.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CanonicalTag maps free-text tag input to its identity key: lowercase with
// every run of non [a-z0-9] characters replaced by a single hyphen, then
// trimmed of leading/trailing hyphens. The result is a fixed point:
// CanonicalTag(CanonicalTag(x)) == CanonicalTag(x).
func CanonicalTag(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = tagNonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
