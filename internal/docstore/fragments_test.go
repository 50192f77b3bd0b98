package docstore

import (
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

func TestSortFragments(t *testing.T) {
	frags := []Fragment{
		{Page: 1, Line: 0, Span: 0, Text: "c"},
		{Page: 0, Line: 1, Span: 1, Text: "b2"},
		{Page: 0, Line: 1, Span: 0, Text: "b1"},
		{Page: 0, Line: 0, Span: 0, Text: "a"},
	}
	SortFragments(frags)

	want := []string{"a", "b1", "b2", "c"}
	for i, w := range want {
		if frags[i].Text != w {
			t.Fatalf("position %d: got %q, want %q (order %v)", i, frags[i].Text, w, frags)
		}
	}
}

func TestPageFragments_LineGrouping(t *testing.T) {
	// Two runs near y=700 belong to one line; the run at y=680 starts the
	// next. Within a line spans run left to right.
	texts := []pdflib.Text{
		{S: "9", X: 500, Y: 699.5, Font: "Body", FontSize: 10},
		{S: "Article 1 Purpose", X: 50, Y: 700, Font: "Body", FontSize: 10},
		{S: "Table of Contents", X: 50, Y: 680, Font: "Heading-Bold", FontSize: 14},
	}
	frags := pageFragments(3, texts)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}

	if frags[0].Text != "Article 1 Purpose" || frags[0].Line != 0 || frags[0].Span != 0 {
		t.Errorf("fragment 0: %+v", frags[0])
	}
	if frags[1].Text != "9" || frags[1].Line != 0 || frags[1].Span != 1 {
		t.Errorf("fragment 1: %+v", frags[1])
	}
	if frags[2].Text != "Table of Contents" || frags[2].Line != 1 || frags[2].Span != 0 {
		t.Errorf("fragment 2: %+v", frags[2])
	}
	for i, f := range frags {
		if f.Page != 3 {
			t.Errorf("fragment %d: page %d, want 3", i, f.Page)
		}
	}
	if !frags[2].Bold {
		t.Error("Heading-Bold should be flagged bold")
	}
}

func TestPageFragments_BlankRunsDropped(t *testing.T) {
	texts := []pdflib.Text{
		{S: "   ", X: 10, Y: 700},
		{S: "", X: 20, Y: 700},
	}
	if frags := pageFragments(0, texts); frags != nil {
		t.Errorf("expected nil for all-blank page, got %v", frags)
	}
}

func TestIsBoldFont(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"NotoSans-Bold", true},
		{"HelveticaBlack", true},
		{"Pretendard-Heavy", true},
		{"NotoSans-Regular", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isBoldFont(c.name); got != c.want {
			t.Errorf("isBoldFont(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
