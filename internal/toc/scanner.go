package toc

import (
	"context"
	"fmt"
)

// scanEdge is the conditional transition evaluated after every window step.
type scanEdge int

const (
	edgeContinue scanEdge = iota // more pages to scan
	edgeProceed                  // scan finished, candidates found
	edgeNoTOC                    // scan finished, candidate set empty
)

// decideAfterScan is the scan loop's termination decision, kept separate
// from window processing so it is testable on its own.
func decideAfterScan(cursor, totalPages int, candidates []int) scanEdge {
	if cursor < totalPages {
		return edgeContinue
	}
	if len(candidates) > 0 {
		return edgeProceed
	}
	return edgeNoTOC
}

// scanWindow runs one window step: ask the oracle which pages of the current
// window look like a table of contents, merge its findings into the candidate
// set and advance the cursor. A malformed response fails the run; earlier
// windows' candidates stay merged but the run does not proceed.
func (m *Machine) scanWindow(ctx context.Context, st *RunState) error {
	start := st.Cursor()
	total := st.TotalPages()
	end := start + st.WindowSize()
	if end > total {
		end = total
	}
	pages := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}

	raw, err := m.oracle.Complete(ctx, DetectPrompt(st.DocID(), pages))
	if err != nil {
		err = fmt.Errorf("window %d-%d detection: %w", start, end-1, err)
		st.Fail(ReasonOracle, err)
		return err
	}

	res, err := DecodeDetect(raw)
	if err != nil {
		st.Fail(ReasonOracle, err)
		return err
	}

	inWindow := make(map[int]bool, len(pages))
	for _, p := range pages {
		inWindow[p] = true
	}

	found := make([]int, 0, len(res.TOCPages))
	for _, p := range res.TOCPages {
		if p < 0 || p >= total {
			st.AddLog(fmt.Sprintf("suspicious: oracle reported page %d outside document [0,%d), discarded", p, total))
			m.log.Warn("oracle reported out-of-document page", "doc_id", st.DocID(), "page", p)
			continue
		}
		if !inWindow[p] {
			st.AddLog(fmt.Sprintf("suspicious: oracle reported page %d outside window %d-%d", p, start, end-1))
			m.log.Warn("oracle reported out-of-window page", "doc_id", st.DocID(), "page", p, "window_start", start)
		}
		found = append(found, p)
	}

	st.MergeCandidates(found)
	st.AdvanceCursor(end)
	st.AddLog(fmt.Sprintf("window %d-%d scanned: found=%v confidence=%.2f", start, end-1, found, res.Confidence))
	if len(found) > 0 && res.Reason != "" {
		st.AddLog(fmt.Sprintf("detection rationale: %s", res.Reason))
	}
	return nil
}
