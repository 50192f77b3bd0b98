// Package toc implements the document-structure extraction pipeline: a
// forward-progressing state machine that locates table-of-contents pages
// with an external reasoning oracle, converts the oracle's declarative parse
// into page ranges, and slices the document body into immutable Section
// records.
package toc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hwkim-dev/policyparse/internal/docstore"
	"github.com/hwkim-dev/policyparse/internal/oracle"
)

// Machine drives one run through the pipeline states:
//
//	idle → running ⟲ (window scan) → detected → parsed → extracted
//
// with failed reachable from every stage. The scan loop is an explicit
// conditional edge (decideAfterScan), not a hidden language loop, so the
// termination logic tests independently of window processing. Export to
// completed is the caller's concern.
type Machine struct {
	store                docstore.Store
	oracle               oracle.Client
	log                  *slog.Logger
	maxConcurrentExtract int
}

func NewMachine(store docstore.Store, client oracle.Client, log *slog.Logger, maxConcurrentExtract int) *Machine {
	if maxConcurrentExtract <= 0 {
		maxConcurrentExtract = 1
	}
	return &Machine{
		store:                store,
		oracle:               client,
		log:                  log,
		maxConcurrentExtract: maxConcurrentExtract,
	}
}

// Run executes the pipeline on the given state until a terminal condition.
// On success the state is left in StatusExtracted with its section list
// populated; on any failure it is left in StatusFailed with a reason code,
// and the first error is returned. The run is never auto-retried here.
func (m *Machine) Run(ctx context.Context, st *RunState) error {
	log := m.log.With("doc_id", st.DocID())

	total, err := m.store.PageCount(ctx, st.DocID())
	if err != nil {
		err = fmt.Errorf("document info: %w", err)
		st.Fail(ReasonInternal, err)
		return err
	}
	if total <= 0 {
		err = fmt.Errorf("invalid document: page count %d", total)
		st.Fail(ReasonInternal, err)
		return err
	}
	st.SetTotalPages(total)
	st.SetStatus(StatusRunning, fmt.Sprintf("document info loaded: %d pages", total))

	// Window scan self-loop. One window fully resolves, including its
	// oracle round trip and candidate merge, before the next is issued —
	// the termination edge depends on the merged state.
	for {
		if err := m.scanWindow(ctx, st); err != nil {
			return err
		}
		edge := decideAfterScan(st.Cursor(), st.TotalPages(), st.Candidates())
		if edge == edgeContinue {
			continue
		}
		if edge == edgeNoTOC {
			st.Fail(ReasonNoTOC, ErrNoTOC)
			return ErrNoTOC
		}
		break
	}
	log.Info("window scan complete", "toc_pages", st.Candidates())

	if err := m.extractFragments(ctx, st); err != nil {
		return err
	}

	if err := m.parseTOC(ctx, st); err != nil {
		return err
	}

	resolved := ResolveBoundaries(st.Parsed().Parsed, st.TotalPages())
	st.AddLog(fmt.Sprintf("page_end resolution complete: %d sections", len(resolved)))

	if err := m.extractRanges(ctx, st, resolved); err != nil {
		return err
	}

	log.Info("extraction complete", "sections", len(resolved))
	return nil
}
