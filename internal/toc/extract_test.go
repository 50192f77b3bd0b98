package toc

import (
	"strings"
	"testing"
)

func TestExtractAfterTitle_ExactMatch(t *testing.T) {
	body := "Some header noise Article 3 General Provisions The insured shall notify the company."
	got := ExtractAfterTitle(body, "Article 3 General Provisions")
	want := "The insured shall notify the company."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractAfterTitle_FuzzyFallback(t *testing.T) {
	// Case differs so exact match misses; the common run covers almost the
	// whole title and the prefix is stripped.
	body := "ARTICLE 3 GENERAL PROVISIONS\nThe insured shall notify the company."
	got := ExtractAfterTitle(body, "Article 3 General Provisions")
	want := "The insured shall notify the company."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractAfterTitle_ShortMatchLeavesBodyUntouched(t *testing.T) {
	// Only a tiny incidental overlap with the title: below the truncation
	// threshold, so the body must come back unchanged.
	body := "The policyholder agrees to the terms herein."
	title := "Article 12 Subrogation Rights"
	if got := ExtractAfterTitle(body, title); got != body {
		t.Errorf("body was modified: %q", got)
	}
}

func TestExtractAfterTitle_ThresholdIsStrict(t *testing.T) {
	// A 4-rune title needs a common run of strictly more than max(3, 3)
	// runes, i.e. the full title, before truncation kicks in.
	body := "abcX tail content"
	if got := ExtractAfterTitle(body, "ABCD"); got != body {
		t.Errorf("3-rune overlap should not truncate, got %q", got)
	}
	got := ExtractAfterTitle("abcd tail content", "ABCD")
	if got != "tail content" {
		t.Errorf("4-rune overlap should truncate, got %q", got)
	}
}

func TestExtractAfterTitle_EmptyInputs(t *testing.T) {
	if got := ExtractAfterTitle("", "Article 1"); got != "" {
		t.Errorf("empty body: got %q", got)
	}
	body := "content"
	if got := ExtractAfterTitle(body, ""); got != body {
		t.Errorf("empty title: got %q", got)
	}
}

func TestExtractAfterTitle_MultibyteAlignment(t *testing.T) {
	// Korean article heading: rune-based indexing has to keep byte offsets
	// out of the picture.
	body := "제3조 일반사항 보험계약자는 회사에 통지하여야 합니다."
	got := ExtractAfterTitle(body, "제3조 일반사항")
	want := "보험계약자는 회사에 통지하여야 합니다."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLongestCommonRun(t *testing.T) {
	cases := []struct {
		a, b       string
		wantEnd    int
		wantLength int
	}{
		{"abcd", "xxabcdyy", 6, 4},
		{"abcd", "zzzz", 0, 0},
		{"", "abc", 0, 0},
		{"abc", "", 0, 0},
		{"hello", "say hello world", 9, 5},
	}
	for _, c := range cases {
		end, length := longestCommonRun([]rune(c.a), []rune(c.b))
		if end != c.wantEnd || length != c.wantLength {
			t.Errorf("longestCommonRun(%q, %q) = (%d, %d), want (%d, %d)",
				c.a, c.b, end, length, c.wantEnd, c.wantLength)
		}
	}
}

func TestResolveTitle_Priority(t *testing.T) {
	cases := []struct {
		name string
		d    SectionDescriptor
		want string
	}{
		{"article wins", SectionDescriptor{Article: "Article 1 Purpose", Part: "Part 1", Level1: "Terms"}, "Article 1 Purpose"},
		{"part next", SectionDescriptor{Part: "Part 2 Riders", Level3: "Sub", Level1: "Terms"}, "Part 2 Riders"},
		{"level3 before level2", SectionDescriptor{Level3: "Clause detail", Level2: "Chapter", Level1: "Terms"}, "Clause detail"},
		{"level2 before level1", SectionDescriptor{Level2: "Chapter 4", Level1: "Terms"}, "Chapter 4"},
		{"level1 last", SectionDescriptor{Level1: "Main Policy Terms"}, "Main Policy Terms"},
		{"blank fields skipped", SectionDescriptor{Article: "   "}, "Section 7"},
	}
	for _, c := range cases {
		if got := resolveTitle(c.d, 7); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestParagraphCount(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{"", 0},
		{"   \n  ", 0},
		{"one paragraph", 1},
		{"first\n\nsecond", 2},
		{"first\n\nsecond\n\nthird", 3},
		{"single\nnewline\nonly", 1},
	}
	for _, c := range cases {
		if got := paragraphCount(c.body); got != c.want {
			t.Errorf("paragraphCount(%q) = %d, want %d", c.body, got, c.want)
		}
	}
}

func TestBuildSection_Metrics(t *testing.T) {
	d := SectionDescriptor{Article: "Article 5 Claims", PageStart: 10, PageEnd: 12}
	body := "Article 5 Claims\n\nSee Table 1 for limits.\n\n그림 2 참조."
	s := buildSection(d, 5, body)

	if s.ID != 5 {
		t.Errorf("id: got %d, want 5", s.ID)
	}
	if s.Title != "Article 5 Claims" {
		t.Errorf("title: got %q", s.Title)
	}
	if len(s.Pages) != 3 || s.Pages[0] != 10 || s.Pages[2] != 12 {
		t.Errorf("pages: got %v, want [10 11 12]", s.Pages)
	}
	if strings.HasPrefix(s.Body, "Article 5 Claims") {
		t.Errorf("title not stripped from body: %q", s.Body)
	}
	if !s.HasTable {
		t.Error("expected table flag for 'Table 1'")
	}
	if !s.HasFigure {
		t.Error("expected figure flag for '그림'")
	}
	if s.ParaCount != 2 {
		t.Errorf("para count: got %d, want 2", s.ParaCount)
	}
	if s.CharCount == 0 {
		t.Error("char count should be nonzero")
	}
}

func TestPageRange(t *testing.T) {
	cases := []struct {
		name string
		d    SectionDescriptor
		want []int
	}{
		{"normal range", SectionDescriptor{PageStart: 6, PageEnd: 8}, []int{6, 7, 8}},
		{"single page", SectionDescriptor{PageStart: 3, PageEnd: 3}, []int{3}},
		{"end before start degrades to start page", SectionDescriptor{PageStart: 5, PageEnd: 4}, []int{5}},
	}
	for _, c := range cases {
		got := pageRange(c.d)
		if len(got) != len(c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
			continue
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Errorf("%s: got %v, want %v", c.name, got, c.want)
				break
			}
		}
	}
}

func TestBuildSection_DuplicateStartKeepsStartPage(t *testing.T) {
	// The earlier of two descriptors sharing a page_start comes out of
	// boundary resolution with end = start-1; it must still cover its own
	// start page rather than an empty range.
	d := SectionDescriptor{Article: "Article 7 Overlap", PageStart: 5, PageEnd: 4}
	s := buildSection(d, 3, "Article 7 Overlap shared page content")

	if len(s.Pages) != 1 || s.Pages[0] != 5 {
		t.Errorf("pages: got %v, want [5]", s.Pages)
	}
	if s.Body != "shared page content" {
		t.Errorf("body: got %q", s.Body)
	}
}

func TestBuildSection_EmptyBody(t *testing.T) {
	d := SectionDescriptor{Level1: "Terms", PageStart: 3, PageEnd: 3}
	s := buildSection(d, 1, "")

	if s.Body != "" {
		t.Errorf("body: got %q", s.Body)
	}
	if s.ParaCount != 0 || s.CharCount != 0 {
		t.Errorf("empty body metrics: para=%d chars=%d", s.ParaCount, s.CharCount)
	}
	if s.HasTable || s.HasFigure {
		t.Error("empty body should carry no content flags")
	}
}

func TestContainsAny_FigureTokens(t *testing.T) {
	if !containsAny("refer to Figure 3", figureTokens) {
		t.Error("expected Figure to match")
	}
	if !containsAny("별도 표 참조", tableTokens) {
		t.Error("expected 표 to match")
	}
	if containsAny("plain body text", tableTokens) {
		t.Error("unexpected table match")
	}
}
