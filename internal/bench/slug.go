package bench

import (
	"regexp"
	"strings"
)

// slugFallback is used when a label reduces to nothing filesystem-safe.
const slugFallback = "benchmark"

var unsafeRunPattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Slugify maps a free-form label to a filesystem-safe token. Every maximal
// run of characters outside [A-Za-z0-9._-] collapses to a single '-', and
// leading/trailing '-', '.' and '_' are stripped. An empty result yields
// "benchmark".
func Slugify(label string) string {
	slug := unsafeRunPattern.ReplaceAllString(label, "-")
	slug = strings.Trim(slug, "-._")
	if slug == "" {
		return slugFallback
	}
	return slug
}
