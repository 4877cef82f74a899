package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestDecodeSpans_DocumentObject(t *testing.T) {
	input := `{"pages":[
		{"index":0,"height":792,"spans":[{"text":"Title","font_size":24,"bbox":{"x":72,"y":72,"w":60,"h":24}}]},
		{"index":1,"spans":[{"text":"Body","font_size":11,"page":7,"bbox":{"x":72,"y":100,"w":22,"h":11}}]}
	]}`
	doc, err := DecodeSpans([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Height != 792 {
		t.Errorf("expected height 792, got %v", doc.Pages[0].Height)
	}
	if got := doc.Pages[1].Spans[0].Page; got != 1 {
		t.Errorf("expected span page to follow its page, got %d", got)
	}
}

func TestDecodeSpans_DuplicateIndexesReassigned(t *testing.T) {
	input := `{"pages":[{"spans":[]},{"spans":[]},{"spans":[]}]}`
	doc, err := DecodeSpans([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range doc.Pages {
		if p.Index != i {
			t.Errorf("page %d: index %d", i, p.Index)
		}
	}
}

func TestDecodeSpans_ArrayOfPages(t *testing.T) {
	input := `[[{"text":"A","font_size":12}],[],[{"text":"C","font_size":12}]]`
	doc, err := DecodeSpans([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 3 || len(doc.Pages[1].Spans) != 0 {
		t.Fatalf("unexpected pages %+v", doc.Pages)
	}
	if doc.Pages[2].Spans[0].Page != 2 {
		t.Errorf("expected page 2, got %d", doc.Pages[2].Spans[0].Page)
	}
}

func TestDecodeSpans_FlatSpans(t *testing.T) {
	input := `[{"text":"A","font_size":12,"page":0},{"text":"B","font_size":12,"page":2}]`
	doc, err := DecodeSpans([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(doc.Pages))
	}
	if len(doc.Pages[1].Spans) != 0 || doc.Pages[2].Spans[0].Text != "B" {
		t.Errorf("unexpected grouping %+v", doc.Pages)
	}
}

func TestDecodeSpans_PageLimit(t *testing.T) {
	input := `[{"text":"Heading","font_size":12,"page":5000000}]`
	if _, err := DecodeSpans([]byte(input)); err == nil {
		t.Fatal("expected error for page beyond limit")
	}

	atLimit := fmt.Sprintf(`[{"text":"Heading","font_size":12,"page":%d}]`, MaxPages-1)
	doc, err := DecodeSpans([]byte(atLimit))
	if err != nil {
		t.Fatalf("unexpected error at limit: %v", err)
	}
	if len(doc.Pages) != MaxPages {
		t.Errorf("expected %d pages, got %d", MaxPages, len(doc.Pages))
	}
}

func TestDecodeSpans_Errors(t *testing.T) {
	for _, input := range []string{"", "42", "{", `[{"text":1}]`} {
		if _, err := DecodeSpans([]byte(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestSpanParser_SetsName(t *testing.T) {
	doc, err := (&SpanParser{}).Parse(strings.NewReader(`[]`), "spans.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "spans.json" || len(doc.Pages) != 0 {
		t.Errorf("unexpected doc %+v", doc)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.JSON", "c.docx", "d.htm", "e.html", "f.md", "g.markdown"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("notes.txt"); err == nil {
		t.Error("expected error for .txt")
	}
}
