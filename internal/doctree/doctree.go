package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// BBox is an axis-aligned box in page space. The origin is the top-left
// corner of the page and Y grows downward.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (b BBox) Right() float64   { return b.X + b.W }
func (b BBox) Bottom() float64  { return b.Y + b.H }
func (b BBox) CenterY() float64 { return b.Y + b.H/2 }

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	x0, y0 := min(b.X, o.X), min(b.Y, o.Y)
	x1, y1 := max(b.Right(), o.Right()), max(b.Bottom(), o.Bottom())
	return BBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// TextSpan is an atomic styled run reported by a parser.
type TextSpan struct {
	Text     string  `json:"text"`
	FontName string  `json:"font_name,omitempty"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty"`
	BBox     BBox    `json:"bbox"`
	Page     int     `json:"page"`
}

// Page is one page of spans in the order the parser produced them.
type Page struct {
	Index  int        `json:"index"`
	Width  float64    `json:"width,omitempty"`  // 0 when unknown
	Height float64    `json:"height,omitempty"` // 0 when unknown
	Spans  []TextSpan `json:"spans"`
}

// Document is the span stream for one source document.
type Document struct {
	Name  string `json:"name,omitempty"`
	Pages []Page `json:"pages"`
}

// SpanCount returns the number of spans across all pages.
func (d *Document) SpanCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Spans)
	}
	return n
}

// Line is a reconstructed row of text on one page.
type Line struct {
	Text     string
	FontName string
	FontSize float64 // size of the dominant span
	Bold     bool
	Italic   bool
	BBox     BBox
	Page     int
	Spans    int // number of spans merged into this line
}

// Candidate is a Line that survived filtering.
type Candidate struct {
	Line
	FirstPage bool
}

// Level is a heading level. The zero value is not a valid level.
type Level int

const (
	LevelNone Level = iota
	H1
	H2
	H3
	H4
)

// MaxLevel is the deepest level an outline may contain.
const MaxLevel = H4

func (l Level) String() string {
	switch l {
	case H1:
		return "H1"
	case H2:
		return "H2"
	case H3:
		return "H3"
	case H4:
		return "H4"
	default:
		return "none"
	}
}

// Valid reports whether l is one of H1-H4.
func (l Level) Valid() bool {
	return l >= H1 && l <= MaxLevel
}

// LevelForRank maps a size rank (1 = largest) to a level, or LevelNone when
// the rank is outside the outline depth.
func LevelForRank(rank int) Level {
	if rank < 1 || rank > int(MaxLevel) {
		return LevelNone
	}
	return Level(rank)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid heading level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "H1":
		*l = H1
	case "H2":
		*l = H2
	case "H3":
		*l = H3
	case "H4":
		*l = H4
	default:
		return fmt.Errorf("invalid heading level %q", string(b))
	}
	return nil
}

// HeadingEntry is one entry of the outline.
type HeadingEntry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the result for one document.
type Outline struct {
	Title   string         `json:"title"`
	Outline []HeadingEntry `json:"outline"`
}

// Validate checks the structural invariants of the output contract:
// known levels, non-empty text, non-negative pages in non-decreasing order.
func (o *Outline) Validate() error {
	if o == nil {
		return errors.New("nil outline")
	}
	if o.Outline == nil {
		return errors.New("outline must be an array, got null")
	}
	prev := 0
	for i, h := range o.Outline {
		if !h.Level.Valid() {
			return fmt.Errorf("entry %d: invalid level %d", i, int(h.Level))
		}
		if strings.TrimSpace(h.Text) == "" {
			return fmt.Errorf("entry %d: empty text", i)
		}
		if h.Page < 0 {
			return fmt.Errorf("entry %d: negative page %d", i, h.Page)
		}
		if h.Page < prev {
			return fmt.Errorf("entry %d: page %d out of order after %d", i, h.Page, prev)
		}
		prev = h.Page
	}
	return nil
}
