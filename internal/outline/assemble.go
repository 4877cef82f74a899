package outline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
)

// Assemble turns ranked headings and the chosen title into an outline.
// Headings repeating the title, or built from its lines, are left out, and
// entries whose text is empty after whitespace collapse are dropped. The
// result is in reading order and its Outline slice is never nil.
func Assemble(title layout.Title, headings []layout.Ranked) *doctree.Outline {
	sorted := slices.Clone(headings)
	slices.SortStableFunc(sorted, func(a, b layout.Ranked) int {
		if c := cmp.Compare(a.Page, b.Page); c != 0 {
			return c
		}
		if c := cmp.Compare(a.BBox.Y, b.BBox.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.BBox.X, b.BBox.X)
	})

	out := &doctree.Outline{
		Title:   title.Text,
		Outline: make([]doctree.HeadingEntry, 0, len(sorted)),
	}
	for _, h := range sorted {
		text := strings.Join(strings.Fields(h.Text), " ")
		if text == "" || !h.Level.Valid() {
			continue
		}
		if title.Contains(h.Line) || (title.Text != "" && layout.SameText(text, title.Text)) {
			continue
		}
		out.Outline = append(out.Outline, doctree.HeadingEntry{
			Level: h.Level,
			Text:  text,
			Page:  h.Page,
		})
	}
	return out
}
