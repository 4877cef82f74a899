package layout

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// span is a cleaned TextSpan with its geometry filled in.
type span struct {
	text   string
	font   string
	size   float64
	bold   bool
	italic bool
	box    doctree.BBox
	runes  int
}

func (s span) charWidth() float64 {
	if s.runes == 0 {
		return s.size * 0.5
	}
	return s.box.W / float64(s.runes)
}

// Reconstruct merges the spans of every page into lines ordered by page and
// then top-to-bottom, left-to-right. It stops early if ctx is cancelled.
func Reconstruct(ctx context.Context, doc *doctree.Document, cfg Config) ([]doctree.Line, error) {
	if doc == nil {
		return nil, nil
	}
	var out []doctree.Line
	for _, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, ReconstructPage(p, cfg)...)
	}
	return out, nil
}

// ReconstructPage merges one page's spans into lines. A page without usable
// spans yields no lines.
func ReconstructPage(p doctree.Page, cfg Config) []doctree.Line {
	cfg = cfg.withDefaults()
	spans := dedupe(prepare(p.Spans), cfg)
	if len(spans) == 0 {
		return nil
	}

	var lines []doctree.Line
	for _, row := range groupRows(spans, cfg) {
		for _, seg := range splitColumns(row, cfg) {
			if l, ok := buildLine(seg, p.Index, cfg); ok {
				lines = append(lines, l)
			}
		}
	}
	slices.SortStableFunc(lines, compareLines)
	return lines
}

func compareLines(a, b doctree.Line) int {
	if c := cmp.Compare(a.Page, b.Page); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BBox.Y, b.BBox.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.BBox.X, b.BBox.X)
}

// prepare normalizes text, drops empty or sizeless spans, fills missing
// geometry and merges font-name style hints into the flags.
func prepare(in []doctree.TextSpan) []span {
	out := make([]span, 0, len(in))
	for _, ts := range in {
		text := normalizeText(ts.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !(ts.FontSize > 0) || math.IsInf(ts.FontSize, 0) {
			continue
		}
		s := span{
			text:   text,
			font:   ts.FontName,
			size:   ts.FontSize,
			bold:   ts.Bold,
			italic: ts.Italic,
			box:    ts.BBox,
			runes:  runeCount(text),
		}
		if s.box.H <= 0 {
			s.box.H = s.size
		}
		if s.box.W <= 0 {
			s.box.W = float64(s.runes) * s.size * 0.5
		}
		b, i := fontStyle(ts.FontName)
		s.bold = s.bold || b
		s.italic = s.italic || i
		out = append(out, s)
	}
	return out
}

// dedupe collapses glyph runs drawn more than once at (nearly) the same
// origin. Identical text keeps the bold instance; a run that is a prefix of
// another at the same origin (progressive redraw) gives way to the longer.
func dedupe(spans []span, cfg Config) []span {
	slices.SortStableFunc(spans, func(a, b span) int {
		if c := cmp.Compare(a.box.Y, b.box.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.box.X, b.box.X)
	})

	kept := make([]span, 0, len(spans))
	for _, s := range spans {
		tol := min(cfg.DuplicateTolerance, 0.5*s.charWidth())
		dup := false
		for j := len(kept) - 1; j >= 0; j-- {
			k := &kept[j]
			if s.box.Y-k.box.Y > cfg.DuplicateTolerance {
				break
			}
			if math.Abs(s.box.X-k.box.X) > tol || math.Abs(s.box.Y-k.box.Y) > tol {
				continue
			}
			st, kt := strings.TrimSpace(s.text), strings.TrimSpace(k.text)
			switch {
			case st == kt:
				if s.bold && !k.bold {
					*k = s
				}
				dup = true
			case strings.HasPrefix(st, kt):
				bold := k.bold || s.bold
				*k = s
				k.bold = bold
				dup = true
			case strings.HasPrefix(kt, st):
				k.bold = k.bold || s.bold
				dup = true
			}
			if dup {
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	return kept
}

// groupRows buckets spans whose vertical centers lie within a band
// proportional to their height.
func groupRows(spans []span, cfg Config) [][]span {
	slices.SortStableFunc(spans, func(a, b span) int {
		if c := cmp.Compare(a.box.CenterY(), b.box.CenterY()); c != 0 {
			return c
		}
		return cmp.Compare(a.box.X, b.box.X)
	})

	var rows [][]span
	var anchor span
	for i, s := range spans {
		if i > 0 {
			tol := cfg.LineTolerance * min(anchor.box.H, s.box.H)
			if math.Abs(s.box.CenterY()-anchor.box.CenterY()) <= tol {
				rows[len(rows)-1] = append(rows[len(rows)-1], s)
				continue
			}
		}
		anchor = s
		rows = append(rows, []span{s})
	}
	return rows
}

// splitColumns orders a row left to right and cuts it where the horizontal
// gap is wide enough to be a column gutter.
func splitColumns(row []span, cfg Config) [][]span {
	slices.SortStableFunc(row, func(a, b span) int {
		return cmp.Compare(a.box.X, b.box.X)
	})
	segs := [][]span{{row[0]}}
	for i := 1; i < len(row); i++ {
		prev, s := row[i-1], row[i]
		gap := s.box.X - prev.box.Right()
		if gap > cfg.ColumnGapRatio*max(prev.size, s.size) {
			segs = append(segs, []span{s})
			continue
		}
		segs[len(segs)-1] = append(segs[len(segs)-1], s)
	}
	return segs
}

// buildLine concatenates a left-to-right run of spans. A space is inserted
// only where the gap exceeds SpaceGapRatio of the average character width.
func buildLine(seg []span, page int, cfg Config) (doctree.Line, bool) {
	var sb strings.Builder
	box := seg[0].box
	dom := seg[0]
	domWeight := -1.0
	for i, s := range seg {
		if i > 0 {
			prev := seg[i-1]
			gap := s.box.X - prev.box.Right()
			avg := (prev.charWidth() + s.charWidth()) / 2
			if gap > cfg.SpaceGapRatio*avg {
				sb.WriteByte(' ')
			}
			box = box.Union(s.box)
		}
		sb.WriteString(s.text)

		w := float64(runeCount(strings.TrimSpace(s.text))) * s.size
		if w > domWeight {
			dom, domWeight = s, w
		}
	}

	text := collapseSpace(sb.String())
	if text == "" {
		return doctree.Line{}, false
	}
	return doctree.Line{
		Text:     text,
		FontName: dom.font,
		FontSize: math.Round(dom.size*10) / 10,
		Bold:     dom.bold,
		Italic:   dom.italic,
		BBox:     box,
		Page:     page,
		Spans:    len(seg),
	}, true
}
