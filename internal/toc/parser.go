package toc

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hwkim-dev/policyparse/internal/docstore"
)

// FlattenFragments renders positioned fragments as one descriptive line
// each, in canonical (page, line, span) order. Fragments whose trimmed text
// is shorter than 2 characters are noise (stray dots, leaders) and dropped.
// Page and line numbers are rendered 1-based for the oracle.
func FlattenFragments(frags []docstore.Fragment) []string {
	sorted := append([]docstore.Fragment(nil), frags...)
	docstore.SortFragments(sorted)

	blocks := make([]string, 0, len(sorted))
	for _, f := range sorted {
		text := strings.TrimSpace(f.Text)
		if utf8.RuneCountInString(text) < 2 {
			continue
		}
		bold := ""
		if f.Bold {
			bold = ", bold"
		}
		blocks = append(blocks, fmt.Sprintf("page %d, line %d: %s [%s, %.1fpt%s]",
			f.Page+1, f.Line+1, text, f.FontName, f.FontSize, bold))
	}
	return blocks
}

// extractFragments pulls the positioned fragments of all candidate pages
// into the run state. An empty result is a hard failure: there is nothing
// for the parse stage to work with.
func (m *Machine) extractFragments(ctx context.Context, st *RunState) error {
	pages := st.Candidates()
	frags, err := m.store.Fragments(ctx, st.DocID(), pages)
	if err != nil {
		err = fmt.Errorf("fragment extraction: %w", err)
		st.Fail(ReasonInternal, err)
		return err
	}
	if len(frags) == 0 {
		err = fmt.Errorf("no text fragments on candidate pages %v", pages)
		st.Fail(ReasonInternal, err)
		return err
	}
	st.SetFragments(frags)
	st.SetStatus(StatusDetected, fmt.Sprintf("fragments extracted: %d fragments across pages %v", len(frags), pages))
	return nil
}

// parseTOC makes the single table-of-contents oracle call and validates the
// result. A non-200 status is the oracle declining; its message is kept
// verbatim as the run error.
func (m *Machine) parseTOC(ctx context.Context, st *RunState) error {
	blocks := FlattenFragments(st.Fragments())
	if len(blocks) == 0 {
		err := fmt.Errorf("no usable text blocks after fragment filtering")
		st.Fail(ReasonInternal, err)
		return err
	}

	raw, err := m.oracle.Complete(ctx, ParsePrompt(blocks))
	if err != nil {
		err = fmt.Errorf("toc parse call: %w", err)
		st.Fail(ReasonOracle, err)
		return err
	}

	res, err := DecodeParse(raw)
	if err != nil {
		st.Fail(ReasonOracle, err)
		return err
	}

	if res.Status != 200 || len(res.Parsed) == 0 {
		declined := &OracleDeclinedError{StatusCode: res.Status, Message: res.Message}
		st.Fail(ReasonOracle, declined)
		return declined
	}

	total := st.TotalPages()
	for i, d := range res.Parsed {
		if d.PageStart < 0 || d.PageStart > total-1 {
			err := &OracleResponseError{
				Stage: "parse",
				Err:   fmt.Errorf("entry %d: page_start %d out of range [0,%d]", i, d.PageStart, total-1),
			}
			st.Fail(ReasonOracle, err)
			return err
		}
	}

	st.SetParsed(res)
	st.SetStatus(StatusParsed, fmt.Sprintf("toc parsed: %d entries", len(res.Parsed)))
	return nil
}
