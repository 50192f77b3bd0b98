package toc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Title resolution priority, most specific first: an article heading is the
// most likely wording to appear verbatim at the start of the section body.
func resolveTitle(d SectionDescriptor, ordinal int) string {
	for _, candidate := range []string{d.Article, d.Part, d.Level3, d.Level2, d.Level1} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return fmt.Sprintf("Section %d", ordinal)
}

// ExtractAfterTitle strips everything up to and including the section's own
// title from the fetched body, so only substantive content remains.
//
// Strategy: exact substring match first; then a best-effort alignment on the
// longest common contiguous run between the lower-cased title and body. The
// fallback only truncates when that run exceeds max(3, 80% of the title
// length) in runes. When neither strategy applies the body is returned
// untouched — never discarded.
func ExtractAfterTitle(body, title string) string {
	if title == "" || body == "" {
		return body
	}

	if pos := strings.Index(body, title); pos != -1 {
		return strings.TrimSpace(body[pos+len(title):])
	}

	titleRunes := []rune(title)
	bodyRunes := []rune(body)
	matchEnd, matchLen := longestCommonRun(lowerRunes(titleRunes), lowerRunes(bodyRunes))

	threshold := int(float64(len(titleRunes)) * 0.8)
	if threshold < 3 {
		threshold = 3
	}
	if matchLen > threshold {
		return strings.TrimSpace(string(bodyRunes[matchEnd:]))
	}

	return body
}

// lowerRunes lowercases rune-by-rune so indices stay aligned with the
// original rune slice.
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// longestCommonRun finds the longest common contiguous subsequence of a
// within b, returning the exclusive end index of the match in b and its
// length.
func longestCommonRun(a, b []rune) (endInB, length int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > length {
					length = curr[j]
					endInB = j
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return endInB, length
}

var (
	tableTokens  = []string{"표", "Table"}
	figureTokens = []string{"그림", "Figure", "도"}
)

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func paragraphCount(body string) int {
	if strings.TrimSpace(body) == "" {
		return 0
	}
	return strings.Count(body, "\n\n") + 1
}

// pageRange expands a descriptor to its inclusive page list. When two
// descriptors share a page_start, boundary resolution leaves the earlier one
// with an end before its start; such a section degrades to its single start
// page instead of an empty range.
func pageRange(d SectionDescriptor) []int {
	if d.PageEnd < d.PageStart {
		return []int{d.PageStart}
	}
	pages := make([]int, 0, d.PageEnd-d.PageStart+1)
	for p := d.PageStart; p <= d.PageEnd; p++ {
		pages = append(pages, p)
	}
	return pages
}

// buildSection assembles the immutable Section record from a resolved
// descriptor and its fetched body text.
func buildSection(d SectionDescriptor, ordinal int, fullBody string) Section {
	pages := pageRange(d)

	title := resolveTitle(d, ordinal)
	body := ExtractAfterTitle(fullBody, title)

	return Section{
		SectionDescriptor: d,
		ID:                ordinal,
		Pages:             pages,
		Title:             title,
		Body:              body,
		ParaCount:         paragraphCount(body),
		CharCount:         utf8.RuneCountInString(strings.TrimSpace(body)),
		HasTable:          containsAny(body, tableTokens),
		HasFigure:         containsAny(body, figureTokens),
	}
}

// extractRanges fetches each section's page-range body and builds the final
// Section records. Fetches are independent once boundaries are fixed, so
// they fan out with bounded concurrency; the section list is restored to
// ascending page_start order before it is recorded. A single fetch failure
// degrades that section to an empty body rather than aborting the batch.
func (m *Machine) extractRanges(ctx context.Context, st *RunState, resolved []SectionDescriptor) error {
	type result struct {
		idx     int
		section Section
	}
	results := make(chan result, len(resolved))
	sem := make(chan struct{}, m.maxConcurrentExtract)

	for i, d := range resolved {
		sem <- struct{}{}
		go func(i int, d SectionDescriptor) {
			defer func() { <-sem }()
			ordinal := i + 1

			fullBody, err := m.store.ReadPages(ctx, st.DocID(), pageRange(d))
			if err != nil {
				st.AddLog(fmt.Sprintf("section %d: body fetch failed, kept with empty body: %v", ordinal, err))
				m.log.Error("section body fetch failed", "doc_id", st.DocID(), "section", ordinal, "error", err)
				fullBody = ""
			}

			results <- result{idx: i, section: buildSection(d, ordinal, fullBody)}
		}(i, d)
	}

	sections := make([]Section, len(resolved))
	for range resolved {
		r := <-results
		sections[r.idx] = r.section
	}

	// resolved is sorted by page_start, and results land back at their
	// original index, so sections is already ordered; keep the sort as a
	// guard for downstream consumers that depend on it.
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].PageStart < sections[j].PageStart
	})

	st.SetSections(sections)
	st.SetStatus(StatusExtracted, fmt.Sprintf("body extraction complete: %d sections", len(sections)))
	return nil
}
