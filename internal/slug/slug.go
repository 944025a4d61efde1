// Package slug derives hierarchical slugs and keeps them consistent down a tree.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Separator joins the segments of a full slug.
const Separator = "/"

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a title to a URL-safe slug segment.
// "About Us" -> "about-us".
// "Café Müller" -> "cafe-muller".
// "News/Events" -> "news-events".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate returns the last segment of a full slug.
// "about/team/jane" -> "jane".
func Truncate(full string) string {
	if i := strings.LastIndex(full, Separator); i >= 0 {
		return full[i+1:]
	}
	return full
}

// Join prefixes segment with the parent's full slug.
// An empty parent contributes nothing.
func Join(parentFull, segment string) string {
	if parentFull == "" {
		return segment
	}
	return parentFull + Separator + segment
}
