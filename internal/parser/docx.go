package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DOCXParser handles .docx files. Paragraph styles pick the synthetic size;
// explicit run sizes and bold/italic run properties override it.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	f := newFlow(filename)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		b := docxBlock(para)
		if strings.TrimSpace(b.text) == "" {
			continue
		}
		f.add(b)
	}
	return f.document(), nil
}

func docxBlock(para *docx.Paragraph) block {
	b := block{kind: blockBody}
	style := docxStyle(para)
	switch {
	case strings.EqualFold(style, "Title"):
		b.kind = blockTitle
	case docxHeadingLevel(style) > 0:
		b.kind = blockHeading
		b.level = docxHeadingLevel(style)
	}

	var buf strings.Builder
	dominant := 0
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		text := docxRunText(run)
		buf.WriteString(text)

		n := len(strings.TrimSpace(text))
		if n <= dominant {
			continue
		}
		dominant = n
		b.bold, b.italic, b.size, b.font = false, false, 0, ""
		if rp := run.RunProperties; rp != nil {
			b.bold = rp.Bold != nil
			b.italic = rp.Italic != nil
			if rp.Size != nil {
				if hp, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil && hp > 0 {
					b.size = hp / 2
				}
			}
			if rp.Fonts != nil {
				b.font = rp.Fonts.ASCII
			}
		}
	}
	b.text = buf.String()
	return b
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}
