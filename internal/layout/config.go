// Package layout recovers document structure from styled text spans:
// line reconstruction, heading-candidate filtering, size-rank
// classification and title selection.
package layout

import "regexp"

// Config holds the thresholds used by every stage.
type Config struct {
	// LineTolerance is the fraction of the smaller span height within which
	// two span centers are considered to share a row.
	LineTolerance float64

	// SpaceGapRatio is the horizontal gap, as a multiple of the average
	// character width of the neighbouring spans, above which a space is
	// inserted between them.
	SpaceGapRatio float64

	// ColumnGapRatio is the gap, as a multiple of font size, that splits a
	// row into separate lines (column gutters, tab stops).
	ColumnGapRatio float64

	// DuplicateTolerance is the maximum origin drift in points for two spans
	// with the same text to be treated as one glyph run drawn twice.
	DuplicateTolerance float64

	// MinHeadingChars is the minimum trimmed length of a heading.
	MinHeadingChars int

	// MinSizeRatio is the minimum font size ratio over the page body size.
	MinSizeRatio float64

	// MinBodySample is the minimum number of characters a page needs for its
	// own body size; sparser pages use the document body size.
	MinBodySample int

	// MinRepeatPages is the number of distinct pages a line must repeat on,
	// in the same vertical band, to be treated as a running header/footer.
	MinRepeatPages int

	// RepeatBandTolerance is the vertical drift in points allowed between
	// repeats of a running header/footer.
	RepeatBandTolerance float64

	// SizeTolerance merges font sizes closer than this into one cluster.
	SizeTolerance float64

	// MaxLevels bounds the number of size ranks that become headings.
	MaxLevels int

	// TitleRegionRatio is the fraction of the first page height, from the
	// top, searched for the title.
	TitleRegionRatio float64

	// BoilerplatePatterns reject lines that are never headings or titles.
	BoilerplatePatterns []*regexp.Regexp
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		LineTolerance:       0.5,
		SpaceGapRatio:       0.3,
		ColumnGapRatio:      3.0,
		DuplicateTolerance:  1.5,
		MinHeadingChars:     3,
		MinSizeRatio:        1.1,
		MinBodySample:       40,
		MinRepeatPages:      3,
		RepeatBandTolerance: 5.0,
		SizeTolerance:       1.0,
		MaxLevels:           4,
		TitleRegionRatio:    0.5,
		BoilerplatePatterns: DefaultBoilerplatePatterns(),
	}
}

// DefaultBoilerplatePatterns matches page furniture: page numbers,
// copyright lines, ordinals and calendar dates.
func DefaultBoilerplatePatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`^(?i)page\s+\d+(\s+of\s+\d+)?$`),
		regexp.MustCompile(`^(?i)(copyright|©)`),
		regexp.MustCompile(`^\d+\s*/\s*\d+$`),
		regexp.MustCompile(`^(?i)\d+(st|nd|rd|th)$`),
		regexp.MustCompile(`^(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}$`),
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LineTolerance <= 0 {
		c.LineTolerance = d.LineTolerance
	}
	if c.SpaceGapRatio <= 0 {
		c.SpaceGapRatio = d.SpaceGapRatio
	}
	if c.ColumnGapRatio <= 0 {
		c.ColumnGapRatio = d.ColumnGapRatio
	}
	if c.DuplicateTolerance <= 0 {
		c.DuplicateTolerance = d.DuplicateTolerance
	}
	if c.MinHeadingChars <= 0 {
		c.MinHeadingChars = d.MinHeadingChars
	}
	if c.MinSizeRatio <= 0 {
		c.MinSizeRatio = d.MinSizeRatio
	}
	if c.MinBodySample <= 0 {
		c.MinBodySample = d.MinBodySample
	}
	if c.MinRepeatPages <= 0 {
		c.MinRepeatPages = d.MinRepeatPages
	}
	if c.RepeatBandTolerance <= 0 {
		c.RepeatBandTolerance = d.RepeatBandTolerance
	}
	if c.SizeTolerance <= 0 {
		c.SizeTolerance = d.SizeTolerance
	}
	if c.MaxLevels <= 0 || c.MaxLevels > d.MaxLevels {
		c.MaxLevels = d.MaxLevels
	}
	if c.TitleRegionRatio <= 0 || c.TitleRegionRatio > 1 {
		c.TitleRegionRatio = d.TitleRegionRatio
	}
	if c.BoilerplatePatterns == nil {
		c.BoilerplatePatterns = d.BoilerplatePatterns
	}
	return c
}
