// Package runs schedules extraction runs: a worker pool drains a queue of
// submitted documents, executes the pipeline state machine for each, and
// hands the finished section list to the export layer. Runs for different
// documents are fully independent; a document has at most one live run.
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/toc"
)

type Orchestrator struct {
	registry *Registry
	queue    chan *Run
	machine  *toc.Machine
	exporter *export.Exporter
	log      *slog.Logger

	workerCount int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(machine *toc.Machine, exporter *export.Exporter, log *slog.Logger, workerCount, queueSize int, ttl time.Duration) *Orchestrator {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Orchestrator{
		registry:    NewRegistry(ttl),
		queue:       make(chan *Run, queueSize),
		machine:     machine,
		exporter:    exporter,
		log:         log,
		workerCount: workerCount,
	}
}

// Start launches the worker pool and the registry cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.workerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case run, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, run)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.registry.Cleanup()
			}
		}
	}()
}

// Stop drains the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new run for a document. A document with a run still in
// flight cannot be resubmitted.
func (o *Orchestrator) Submit(docID string, windowSize int) (*Run, error) {
	if existing := o.registry.Get(docID); existing != nil && !existing.terminal() {
		return nil, fmt.Errorf("parse already in progress for document %s", docID)
	}

	run := &Run{
		ID:        uuid.New().String(),
		DocID:     docID,
		State:     toc.NewRunState(docID, windowSize),
		CreatedAt: time.Now().UTC(),
	}
	o.registry.Put(run)

	select {
	case o.queue <- run:
		return run, nil
	default:
		run.State.Fail(toc.ReasonInternal, fmt.Errorf("run queue is full (%d)", cap(o.queue)))
		return nil, fmt.Errorf("run queue is full (%d)", cap(o.queue))
	}
}

// Get returns the latest run for a document, or nil.
func (o *Orchestrator) Get(docID string) *Run {
	return o.registry.Get(docID)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// process runs the pipeline and, on success, the export stage. The run only
// reaches completed once the export artifacts are on disk; an export failure
// fails the run.
func (o *Orchestrator) process(ctx context.Context, run *Run) {
	log := o.log.With("run_id", run.ID, "doc_id", run.DocID)

	if err := o.machine.Run(ctx, run.State); err != nil {
		log.Error("run failed", "reason", run.State.Reason(), "error", err)
		return
	}

	res, err := o.exporter.Export(run.DocID, run.State.Sections())
	if err != nil {
		run.State.Fail(toc.ReasonInternal, fmt.Errorf("export: %w", err))
		log.Error("export failed", "error", err)
		return
	}
	run.SetExport(res)
	run.State.SetStatus(toc.StatusCompleted, fmt.Sprintf("export complete: %s", res.CSVPath))
	log.Info("run completed", "sections", len(run.State.Sections()), "csv", res.CSVPath)
}
