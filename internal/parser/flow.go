package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Formats without page geometry (DOCX, HTML, Markdown) are laid out on
// synthetic US Letter pages so they can run through the same layout
// pipeline as PDF spans.
const (
	flowPageWidth  = 612.0
	flowPageHeight = 792.0
	flowMargin     = 72.0

	titleSize = 28.0
	bodySize  = 11.0
)

// headingSizes maps heading levels 1-6 to synthetic font sizes.
var headingSizes = [...]float64{24, 18, 15, 13, 12.5, 12}

type blockKind int

const (
	blockBody blockKind = iota
	blockTitle
	blockHeading
)

// block is one paragraph-level element from a structured document.
type block struct {
	kind   blockKind
	level  int     // heading level, 1-6
	text   string
	size   float64 // explicit size; 0 uses the kind's default
	bold   bool
	italic bool
	font   string
}

func (b block) fontSize() float64 {
	if b.size > 0 {
		return b.size
	}
	switch b.kind {
	case blockTitle:
		return titleSize
	case blockHeading:
		lvl := min(max(b.level, 1), len(headingSizes))
		return headingSizes[lvl-1]
	default:
		return bodySize
	}
}

// flow places blocks top to bottom, wrapping text at the right margin and
// breaking pages at the bottom margin.
type flow struct {
	doc *doctree.Document
	y   float64
}

func newFlow(name string) *flow {
	f := &flow{doc: &doctree.Document{Name: name}}
	f.newPage()
	return f
}

func (f *flow) newPage() {
	f.doc.Pages = append(f.doc.Pages, doctree.Page{
		Index:  len(f.doc.Pages),
		Width:  flowPageWidth,
		Height: flowPageHeight,
	})
	f.y = flowMargin
}

func (f *flow) add(b block) {
	text := strings.Join(strings.Fields(b.text), " ")
	if text == "" {
		return
	}
	size := b.fontSize()
	bold := b.bold || b.kind != blockBody
	if b.kind != blockBody {
		f.y += size * 0.6
	}
	lineHeight := size * 1.2
	for _, line := range wrap(text, size) {
		if f.y+lineHeight > flowPageHeight-flowMargin {
			f.newPage()
		}
		page := &f.doc.Pages[len(f.doc.Pages)-1]
		page.Spans = append(page.Spans, doctree.TextSpan{
			Text:     line,
			FontName: b.font,
			FontSize: size,
			Bold:     bold,
			Italic:   b.italic,
			BBox: doctree.BBox{
				X: flowMargin,
				Y: f.y,
				W: float64(utf8.RuneCountInString(line)) * size * 0.5,
				H: size,
			},
			Page: page.Index,
		})
		f.y += lineHeight
	}
	f.y += size * 0.4
}

func (f *flow) document() *doctree.Document {
	return f.doc
}

// wrap splits text into lines that fit the text column at the given size,
// assuming an average glyph width of half the font size.
func wrap(text string, size float64) []string {
	limit := int((flowPageWidth - 2*flowMargin) / (size * 0.5))
	if limit < 1 {
		limit = 1
	}
	var lines []string
	var cur strings.Builder
	n := 0
	for _, w := range strings.Fields(text) {
		wl := utf8.RuneCountInString(w)
		if n > 0 && n+1+wl > limit {
			lines = append(lines, cur.String())
			cur.Reset()
			n = 0
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wl
	}
	if n > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
