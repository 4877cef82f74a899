package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Profile holds the document-wide facts the filter needs: body font size
// per page and the signatures of running headers and footers. It is built
// in a first pass over every line so the second pass can judge each line
// on its own.
type Profile struct {
	cfg      Config
	bodySize float64
	pageBody map[int]float64
	running  map[string][]band
}

// band is a vertical range on the page where a signature repeats.
type band struct {
	top, bottom float64
	pages       int
}

// NewProfile scans all lines of a document.
func NewProfile(lines []doctree.Line, cfg Config) *Profile {
	cfg = cfg.withDefaults()
	p := &Profile{
		cfg:      cfg,
		pageBody: make(map[int]float64),
		running:  make(map[string][]band),
	}
	p.measureBody(lines)
	p.findRunning(lines)
	return p
}

// BodySize returns the document-wide body font size, or 0 when the
// document has no ordinary text.
func (p *Profile) BodySize() float64 { return p.bodySize }

// BodySizeFor returns the body font size of page, falling back to the
// document body size for sparse pages.
func (p *Profile) BodySizeFor(page int) float64 {
	if s, ok := p.pageBody[page]; ok {
		return s
	}
	return p.bodySize
}

// IsRunning reports whether l repeats at the same vertical band on at
// least MinRepeatPages distinct pages.
func (p *Profile) IsRunning(l doctree.Line) bool {
	for _, b := range p.running[signature(l.Text)] {
		if l.BBox.Y >= b.top-p.cfg.RepeatBandTolerance && l.BBox.Y <= b.bottom+p.cfg.RepeatBandTolerance {
			return true
		}
	}
	return false
}

// RunningCount returns the number of running header/footer bands found.
func (p *Profile) RunningCount() int {
	n := 0
	for _, bs := range p.running {
		n += len(bs)
	}
	return n
}

// sizeHistogram weights 0.5pt font size buckets by character count.
type sizeHistogram map[float64]int

func (h sizeHistogram) add(size float64, n int) {
	h[math.Round(size*2)/2] += n
}

func (h sizeHistogram) total() int {
	t := 0
	for _, n := range h {
		t += n
	}
	return t
}

// mode returns the heaviest bucket, preferring the smaller size on ties.
func (h sizeHistogram) mode() float64 {
	best, bestN := 0.0, 0
	for size, n := range h {
		if n > bestN || (n == bestN && size < best) {
			best, bestN = size, n
		}
	}
	return best
}

func (p *Profile) measureBody(lines []doctree.Line) {
	doc := sizeHistogram{}
	pages := map[int]sizeHistogram{}
	for _, l := range lines {
		if noiseReason(l.Text, p.cfg) != Keep {
			continue
		}
		n := runeCount(l.Text)
		doc.add(l.FontSize, n)
		h, ok := pages[l.Page]
		if !ok {
			h = sizeHistogram{}
			pages[l.Page] = h
		}
		h.add(l.FontSize, n)
	}
	p.bodySize = doc.mode()
	for page, h := range pages {
		if h.total() >= p.cfg.MinBodySample {
			p.pageBody[page] = h.mode()
		}
	}
}

type occurrence struct {
	page int
	top  float64
}

func (p *Profile) findRunning(lines []doctree.Line) {
	seen := map[string][]occurrence{}
	for _, l := range lines {
		sig := signature(l.Text)
		if sig == "" {
			continue
		}
		seen[sig] = append(seen[sig], occurrence{page: l.Page, top: l.BBox.Y})
	}

	for sig, occ := range seen {
		if len(occ) < p.cfg.MinRepeatPages {
			continue
		}
		slices.SortFunc(occ, func(a, b occurrence) int {
			if c := cmp.Compare(a.top, b.top); c != 0 {
				return c
			}
			return cmp.Compare(a.page, b.page)
		})
		for _, b := range clusterTops(occ, p.cfg.RepeatBandTolerance) {
			if b.pages >= p.cfg.MinRepeatPages {
				p.running[sig] = append(p.running[sig], b)
			}
		}
	}
}

// clusterTops groups occurrences sorted by top into bands no taller than
// tol and counts the distinct pages in each.
func clusterTops(occ []occurrence, tol float64) []band {
	var out []band
	start := 0
	for i := 1; i <= len(occ); i++ {
		if i < len(occ) && occ[i].top-occ[start].top <= tol {
			continue
		}
		pages := map[int]struct{}{}
		for _, o := range occ[start:i] {
			pages[o.page] = struct{}{}
		}
		out = append(out, band{top: occ[start].top, bottom: occ[i-1].top, pages: len(pages)})
		start = i
	}
	return out
}
