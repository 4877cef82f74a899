package layout

import (
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// defaultPageHeight is US Letter, used when the parser reports no height.
const defaultPageHeight = 792.0

// Title is the chosen document title and the lines it was built from.
type Title struct {
	Text  string
	Lines []doctree.Line
}

// Contains reports whether l is one of the title's source lines.
func (t Title) Contains(l doctree.Line) bool {
	for _, tl := range t.Lines {
		if tl.Page == l.Page && tl.BBox == l.BBox && tl.Text == l.Text {
			return true
		}
	}
	return false
}

// SelectTitle picks the title from the first page's lines (before
// filtering). Only the top TitleRegionRatio of the page is searched, and
// running headers are ignored. Every line sharing the largest font size is
// joined in reading order. If any of those lines is noise or not a
// plausible title the title is empty. profile may be nil.
func SelectTitle(lines []doctree.Line, pageHeight float64, profile *Profile, cfg Config) Title {
	cfg = cfg.withDefaults()
	if len(lines) == 0 {
		return Title{}
	}

	if pageHeight <= 0 {
		pageHeight = defaultPageHeight
		for _, l := range lines {
			pageHeight = max(pageHeight, l.BBox.Bottom())
		}
	}
	limit := pageHeight * cfg.TitleRegionRatio

	var region []doctree.Line
	largest := 0.0
	for _, l := range lines {
		if l.BBox.Y > limit {
			continue
		}
		if profile != nil && profile.IsRunning(l) {
			continue
		}
		region = append(region, l)
		largest = max(largest, l.FontSize)
	}

	var group []doctree.Line
	for _, l := range region {
		if largest-l.FontSize >= cfg.SizeTolerance {
			continue
		}
		if noiseReason(l.Text, cfg) != Keep || !plausibleTitle(l.Text) {
			return Title{}
		}
		group = append(group, l)
	}
	if len(group) == 0 {
		return Title{}
	}
	slices.SortStableFunc(group, compareLines)

	parts := make([]string, len(group))
	for i, l := range group {
		parts[i] = l.Text
	}
	return Title{
		Text:  collapseSpace(strings.Join(parts, " ")),
		Lines: group,
	}
}

// plausibleTitle rejects lines that read as labels or numbered sections.
func plausibleTitle(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasSuffix(t, ":") {
		return false
	}
	return !sectionNumberRe.MatchString(t)
}
