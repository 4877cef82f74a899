package outline

import (
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
)

func ranked(text string, level doctree.Level, page int, y float64) layout.Ranked {
	return layout.Ranked{
		Candidate: doctree.Candidate{Line: doctree.Line{
			Text: text,
			Page: page,
			BBox: doctree.BBox{X: 72, Y: y, W: 100, H: 14},
		}},
		Rank:  int(level),
		Level: level,
	}
}

func TestAssemble_ExcludesTitle(t *testing.T) {
	title := layout.Title{Text: "Annual Report"}
	out := Assemble(title, []layout.Ranked{
		ranked("ANNUAL  REPORT", doctree.H1, 2, 72),
		ranked("Highlights", doctree.H1, 1, 72),
	})
	if len(out.Outline) != 1 || out.Outline[0].Text != "Highlights" {
		t.Errorf("expected only Highlights, got %+v", out.Outline)
	}
}

func TestAssemble_ExcludesTitleSourceLines(t *testing.T) {
	first := ranked("Understanding Distributed", doctree.H1, 0, 80)
	title := layout.Title{Text: "Understanding Distributed Consensus", Lines: []doctree.Line{first.Line}}
	out := Assemble(title, []layout.Ranked{first, ranked("Overview", doctree.H2, 0, 200)})
	if len(out.Outline) != 1 || out.Outline[0].Text != "Overview" {
		t.Errorf("expected title line excluded, got %+v", out.Outline)
	}
}

func TestAssemble_OrdersAndCollapses(t *testing.T) {
	out := Assemble(layout.Title{}, []layout.Ranked{
		ranked("Later", doctree.H1, 3, 50),
		ranked("  Second \t part ", doctree.H2, 1, 300),
		ranked("First", doctree.H1, 1, 100),
		ranked("   ", doctree.H3, 2, 100),
	})
	want := []string{"First", "Second part", "Later"}
	if len(out.Outline) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), out.Outline)
	}
	for i, w := range want {
		if out.Outline[i].Text != w {
			t.Errorf("entry %d: expected %q, got %q", i, w, out.Outline[i].Text)
		}
	}
	if err := Validate(out); err != nil {
		t.Errorf("assembled outline invalid: %v", err)
	}
}

func TestAssemble_NeverNil(t *testing.T) {
	out := Assemble(layout.Title{}, nil)
	if out.Outline == nil {
		t.Error("expected non-nil outline slice")
	}
}
