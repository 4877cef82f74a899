package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// MaxPages bounds the page numbers a span document may use. Flat span
// arrays allocate every page up to the highest number seen.
const MaxPages = 10000

// SpanParser reads spans already extracted by another tool. It accepts a
// document object ({"pages": [...]}), an array of per-page span arrays, or
// a flat array of spans grouped by their page field.
type SpanParser struct{}

func (p *SpanParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read spans: %w", err)
	}
	doc, err := DecodeSpans(data)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = filename
	}
	return doc, nil
}

// DecodeSpans decodes any of the accepted span layouts into a Document
// with pages ordered by index and every span's page set to its page.
func DecodeSpans(data []byte) (*doctree.Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("decode spans: empty input")
	}

	var doc doctree.Document
	switch data[0] {
	case '{':
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode span document: %w", err)
		}
		if len(doc.Pages) > MaxPages {
			return nil, fmt.Errorf("decode span document: %d pages exceeds limit of %d", len(doc.Pages), MaxPages)
		}
		if !distinctIndexes(doc.Pages) {
			for i := range doc.Pages {
				doc.Pages[i].Index = i
			}
		}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode span array: %w", err)
		}
		if len(raw) > 0 && bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte("[")) {
			for i, r := range raw {
				var spans []doctree.TextSpan
				if err := json.Unmarshal(r, &spans); err != nil {
					return nil, fmt.Errorf("decode page %d: %w", i, err)
				}
				if i >= MaxPages {
					return nil, fmt.Errorf("decode span array: more than %d pages", MaxPages)
				}
				doc.Pages = append(doc.Pages, doctree.Page{Index: i, Spans: spans})
			}
		} else {
			var spans []doctree.TextSpan
			if err := json.Unmarshal(data, &spans); err != nil {
				return nil, fmt.Errorf("decode spans: %w", err)
			}
			pages, err := groupByPage(spans)
			if err != nil {
				return nil, err
			}
			doc.Pages = pages
		}
	default:
		return nil, errors.New("decode spans: expected JSON object or array")
	}

	slices.SortStableFunc(doc.Pages, func(a, b doctree.Page) int { return a.Index - b.Index })
	for i := range doc.Pages {
		for j := range doc.Pages[i].Spans {
			doc.Pages[i].Spans[j].Page = doc.Pages[i].Index
		}
	}
	return &doc, nil
}

func distinctIndexes(pages []doctree.Page) bool {
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p.Index < 0 || seen[p.Index] {
			return false
		}
		seen[p.Index] = true
	}
	return true
}

// groupByPage builds pages 0..max from a flat span list. Pages without
// spans are kept so page numbers stay aligned.
func groupByPage(spans []doctree.TextSpan) ([]doctree.Page, error) {
	last := -1
	for _, s := range spans {
		if s.Page >= MaxPages {
			return nil, fmt.Errorf("decode spans: page %d exceeds limit of %d pages", s.Page, MaxPages)
		}
		last = max(last, s.Page)
	}
	pages := make([]doctree.Page, last+1)
	for i := range pages {
		pages[i].Index = i
	}
	for _, s := range spans {
		if s.Page < 0 {
			continue
		}
		pages[s.Page].Spans = append(pages[s.Page].Spans, s)
	}
	return pages, nil
}
