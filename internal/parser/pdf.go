package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// PDFParser extracts positioned glyph runs from PDF content streams.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &doctree.Document{Name: filename}
	for i := 1; i <= reader.NumPage(); i++ {
		doc.Pages = append(doc.Pages, pdfPage(reader, i))
	}
	return doc, nil
}

// pdfPage reads one page. A page the library cannot decode comes back
// without spans.
func pdfPage(reader *pdflib.Reader, num int) (page doctree.Page) {
	page.Index = num - 1
	defer func() {
		if r := recover(); r != nil {
			page.Spans = nil
		}
	}()

	pg := reader.Page(num)
	if pg.V.IsNull() {
		return page
	}
	page.Width, page.Height = mediaBox(pg)
	height := page.Height
	if height <= 0 {
		height = 792
	}

	var cur *doctree.TextSpan
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			page.Spans = append(page.Spans, *cur)
		}
		cur = nil
	}
	for _, t := range pg.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		size := math.Abs(t.FontSize)
		if cur != nil && cur.FontName == t.Font && cur.FontSize == size &&
			math.Abs((height-t.Y-size)-cur.BBox.Y) < 0.01 &&
			math.Abs(t.X-cur.BBox.Right()) <= 0.1*size {
			cur.Text += t.S
			cur.BBox.W = t.X + t.W - cur.BBox.X
			continue
		}
		flush()
		cur = &doctree.TextSpan{
			Text:     t.S,
			FontName: t.Font,
			FontSize: size,
			BBox:     doctree.BBox{X: t.X, Y: height - t.Y - size, W: t.W, H: size},
			Page:     page.Index,
		}
	}
	flush()
	return page
}

// mediaBox returns the page size from the MediaBox, which may be inherited
// from an ancestor Pages node. Zero means unknown.
func mediaBox(pg pdflib.Page) (w, h float64) {
	var box pdflib.Value
	for v := pg.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key("MediaBox"); !r.IsNull() {
			box = r
			break
		}
	}
	if box.Kind() != pdflib.Array || box.Len() != 4 {
		return 0, 0
	}
	x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
	x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
	return math.Abs(x1 - x0), math.Abs(y1 - y0)
}
