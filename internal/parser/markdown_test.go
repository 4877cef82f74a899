package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func allSpans(doc *doctree.Document) []doctree.TextSpan {
	var out []doctree.TextSpan
	for _, p := range doc.Pages {
		out = append(out, p.Spans...)
	}
	return out
}

func findSpan(doc *doctree.Document, text string) (doctree.TextSpan, bool) {
	for _, s := range allSpans(doc) {
		if s.Text == text {
			return s, true
		}
	}
	return doctree.TextSpan{}, false
}

func TestMarkdownParser_HeadingSizes(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "doc.md" {
		t.Errorf("expected name %q, got %q", "doc.md", doc.Name)
	}

	want := map[string]float64{
		"Title":                  24,
		"Section A":              18,
		"Subsection A1":          15,
		"Section B":              18,
		"Intro text.":            11,
		"Subsection A1 content.": 11,
	}
	for text, size := range want {
		s, ok := findSpan(doc, text)
		if !ok {
			t.Errorf("missing span %q", text)
			continue
		}
		if s.FontSize != size {
			t.Errorf("%q: expected size %v, got %v", text, size, s.FontSize)
		}
	}

	h, _ := findSpan(doc, "Section A")
	if !h.Bold {
		t.Error("expected headings to be bold")
	}
}

func TestMarkdownParser_ReadingOrder(t *testing.T) {
	input := "# One\n\nBody.\n\n## Two\n\nMore body.\n"
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "order.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spans := allSpans(doc)
	for i := 1; i < len(spans); i++ {
		if spans[i].Page == spans[i-1].Page && spans[i].BBox.Y <= spans[i-1].BBox.Y {
			t.Errorf("span %q not below %q", spans[i].Text, spans[i-1].Text)
		}
	}
}

func TestMarkdownParser_InlineMarkupNotDuplicated(t *testing.T) {
	input := "Some **bold** and *italic* words.\n"
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "inline.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spans := allSpans(doc)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "Some bold and italic words." {
		t.Errorf("unexpected text %q", spans[0].Text)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "# API Reference\n\n## Endpoints\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var joined []string
	for _, s := range allSpans(doc) {
		joined = append(joined, s.Text)
	}
	all := strings.Join(joined, "\n")
	if !strings.Contains(all, "GET /api/users") {
		t.Errorf("expected code block content, got %q", all)
	}
	if !strings.Contains(all, "More text after code.") {
		t.Errorf("expected post-code text, got %q", all)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Spans) != 0 {
		t.Errorf("expected one empty page, got %+v", doc.Pages)
	}
}
