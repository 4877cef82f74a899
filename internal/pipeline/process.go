package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// ParseFile turns raw file bytes into a span document using the parser
// registered for the file's extension.
func ParseFile(filename string, data []byte) (*doctree.Document, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// BuildFile parses data and infers its outline.
func BuildFile(ctx context.Context, b *outline.Builder, filename string, data []byte) (*outline.Result, error) {
	doc, err := ParseFile(filename, data)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, doc)
}
