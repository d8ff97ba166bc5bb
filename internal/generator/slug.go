package generator

import (
	"regexp"
	"strings"
)

const maxSlugLen = 100

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title: lowercase, strip everything but
// letters, digits, spaces and hyphens, collapse whitespace and repeated
// hyphens, trim edge hyphens, truncate to 100 characters. Idempotent:
// Slugify(Slugify(x)) == Slugify(x).
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}
