package outline

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

// DocID derives a stable document id from a filename: the slug of its base
// name without extension.
func DocID(filename string) string {
	base := filepath.Base(filename)
	id := Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
	if id == "" {
		return "document"
	}
	return id
}
