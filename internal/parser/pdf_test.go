package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// buildPDF writes a minimal PDF. The Pages node carries a letter MediaBox;
// pages whose box is non-empty override it.
func buildPDF(t *testing.T, pages []struct {
	box     string
	content string
}) []byte {
	t.Helper()
	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}
	add("<< /Type /Catalog /Pages 2 0 R >>")
	add("") // pages, filled below
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	var kids []string
	for _, p := range pages {
		stream := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.content), p.content))
		dict := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R", font, stream)
		if p.box != "" {
			dict += " /MediaBox " + p.box
		}
		kids = append(kids, fmt.Sprintf("%d 0 R", add(dict+" >>")))
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestMediaBox_InheritedAndOverridden(t *testing.T) {
	data := buildPDF(t, []struct {
		box     string
		content string
	}{
		{content: "BT /F1 24 Tf 72 700 Td (Annual) Tj ET"},
		{box: "[0 0 300 400]", content: "BT /F1 11 Tf 20 300 Td (Body) Tj ET"},
	})
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}

	if w, h := mediaBox(reader.Page(1)); w != 612 || h != 792 {
		t.Errorf("page 1: expected inherited 612x792, got %vx%v", w, h)
	}
	if w, h := mediaBox(reader.Page(2)); w != 300 || h != 400 {
		t.Errorf("page 2: expected own 300x400, got %vx%v", w, h)
	}
}

func TestPDFParser_Spans(t *testing.T) {
	data := buildPDF(t, []struct {
		box     string
		content string
	}{
		{content: "BT /F1 24 Tf 72 700 Td (Annual) Tj ET BT /F1 11 Tf 72 600 Td (Overview) Tj ET"},
		{box: "[0 0 300 400]", content: "BT /F1 11 Tf 20 300 Td (Body) Tj ET"},
	})
	doc, err := (&PDFParser{}).Parse(bytes.NewReader(data), "report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}

	p0 := doc.Pages[0]
	if p0.Index != 0 || p0.Height != 792 {
		t.Errorf("page 0: index %d height %v", p0.Index, p0.Height)
	}
	if len(p0.Spans) != 2 {
		t.Fatalf("expected 2 spans on page 0, got %+v", p0.Spans)
	}
	title := p0.Spans[0]
	if title.Text != "Annual" || title.FontSize != 24 || title.FontName != "Helvetica-Bold" {
		t.Errorf("unexpected title span: %+v", title)
	}
	// Baseline 700 at 24pt on a 792pt page puts the top edge at 68.
	if title.BBox.X != 72 || title.BBox.Y != 68 {
		t.Errorf("expected top-left origin (72, 68), got (%v, %v)", title.BBox.X, title.BBox.Y)
	}

	p1 := doc.Pages[1]
	if len(p1.Spans) != 1 || p1.Spans[0].Page != 1 {
		t.Fatalf("unexpected page 1 spans: %+v", p1.Spans)
	}
	if y := p1.Spans[0].BBox.Y; y != 400-300-11 {
		t.Errorf("expected page 1 span top at 89, got %v", y)
	}
}

func TestPDFParser_Invalid(t *testing.T) {
	if _, err := (&PDFParser{}).Parse(strings.NewReader("not a pdf"), "x.pdf"); err == nil {
		t.Error("expected error for non-pdf input")
	}
}
