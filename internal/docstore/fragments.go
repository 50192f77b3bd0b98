package docstore

import (
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Fragment is one positioned unit of text from a page. Fragments from the
// same document are ordered by (Page, Line, Span); that triple is the
// canonical reading order everywhere downstream.
type Fragment struct {
	Page     int     `json:"page"`
	Line     int     `json:"line"`
	Span     int     `json:"span"`
	Text     string  `json:"text"`
	FontName string  `json:"font_name"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold"`
}

// SortFragments orders fragments by (page, line, span).
func SortFragments(frags []Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		a, b := frags[i], frags[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Span < b.Span
	})
}

// lineTolerance is the vertical distance (in PDF units) within which two
// text runs are considered part of the same line.
const lineTolerance = 2.0

// pageFragments converts a page's raw text runs into ordered fragments.
// PDF y coordinates grow upward, so lines are numbered top-down by
// descending y; spans within a line are ordered left to right.
func pageFragments(pageIndex int, texts []pdflib.Text) []Fragment {
	runs := make([]pdflib.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	frags := make([]Fragment, 0, len(runs))
	line := 0
	span := 0
	lineY := runs[0].Y
	for _, r := range runs {
		if lineY-r.Y > lineTolerance {
			line++
			span = 0
			lineY = r.Y
		}
		frags = append(frags, Fragment{
			Page:     pageIndex,
			Line:     line,
			Span:     span,
			Text:     r.S,
			FontName: r.Font,
			FontSize: r.FontSize,
			Bold:     isBoldFont(r.Font),
		})
		span++
	}
	return frags
}

func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black") || strings.Contains(n, "heavy")
}
