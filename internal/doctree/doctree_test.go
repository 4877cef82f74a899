package doctree

import (
	"encoding/json"
	"testing"
)

func TestLevel_MarshalJSON(t *testing.T) {
	entry := HeadingEntry{Level: H3, Text: "Scope", Page: 2}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"level":"H3","text":"Scope","page":2}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestLevel_MarshalInvalid(t *testing.T) {
	if _, err := json.Marshal(HeadingEntry{Level: LevelNone, Text: "x"}); err == nil {
		t.Error("expected error marshaling LevelNone")
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("h2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l != H2 {
		t.Errorf("expected H2, got %v", l)
	}
	if err := l.UnmarshalText([]byte("H5")); err == nil {
		t.Error("expected error for H5")
	}
}

func TestLevelForRank(t *testing.T) {
	tests := []struct {
		rank int
		want Level
	}{
		{0, LevelNone},
		{1, H1},
		{2, H2},
		{3, H3},
		{4, H4},
		{5, LevelNone},
	}
	for _, tt := range tests {
		if got := LevelForRank(tt.rank); got != tt.want {
			t.Errorf("LevelForRank(%d) = %v, want %v", tt.rank, got, tt.want)
		}
	}
}

func TestOutline_EmptyMarshalsAsArray(t *testing.T) {
	o := Outline{Title: "", Outline: []HeadingEntry{}}
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"title":"","outline":[]}` {
		t.Errorf("unexpected json: %s", data)
	}
}

func TestOutline_Validate(t *testing.T) {
	tests := []struct {
		name    string
		outline *Outline
		wantErr bool
	}{
		{"nil", nil, true},
		{"null outline", &Outline{Title: "t"}, true},
		{"empty", &Outline{Outline: []HeadingEntry{}}, false},
		{"ok", &Outline{Outline: []HeadingEntry{{H1, "A", 0}, {H2, "B", 0}, {H1, "C", 3}}}, false},
		{"empty text", &Outline{Outline: []HeadingEntry{{H1, "  ", 0}}}, true},
		{"bad level", &Outline{Outline: []HeadingEntry{{Level(7), "A", 0}}}, true},
		{"negative page", &Outline{Outline: []HeadingEntry{{H1, "A", -1}}}, true},
		{"out of order", &Outline{Outline: []HeadingEntry{{H1, "A", 2}, {H1, "B", 1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outline.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBBox_Union(t *testing.T) {
	a := BBox{X: 10, Y: 10, W: 20, H: 10}
	b := BBox{X: 25, Y: 5, W: 20, H: 10}
	u := a.Union(b)
	if u.X != 10 || u.Y != 5 || u.Right() != 45 || u.Bottom() != 20 {
		t.Errorf("unexpected union %+v", u)
	}
}

func TestDocument_SpanCount(t *testing.T) {
	var nilDoc *Document
	if nilDoc.SpanCount() != 0 {
		t.Error("expected 0 spans for nil document")
	}
	doc := &Document{Pages: []Page{
		{Index: 0, Spans: []TextSpan{{Text: "a"}, {Text: "b"}}},
		{Index: 1},
		{Index: 2, Spans: []TextSpan{{Text: "c"}}},
	}}
	if doc.SpanCount() != 3 {
		t.Errorf("expected 3 spans, got %d", doc.SpanCount())
	}
}
