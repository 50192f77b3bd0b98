package runs

import (
	"sync"
	"time"

	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/toc"
)

// Run is one extraction run for one document.
type Run struct {
	ID        string
	DocID     string
	State     *toc.RunState
	CreatedAt time.Time

	mu     sync.Mutex
	export export.Result
}

func (r *Run) SetExport(res export.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.export = res
}

func (r *Run) Export() export.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.export
}

// terminal reports whether the run can be superseded by a new submission.
func (r *Run) terminal() bool {
	switch r.State.Status() {
	case toc.StatusCompleted, toc.StatusFailed:
		return true
	}
	return false
}

// Registry holds the latest run per document, with TTL eviction of
// terminal runs.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (g *Registry) Put(run *Run) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs[run.DocID] = run
}

func (g *Registry) Get(docID string) *Run {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runs[docID]
}

// Cleanup evicts terminal runs older than the TTL.
func (g *Registry) Cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := time.Now().Add(-g.ttl)
	for id, run := range g.runs {
		if run.terminal() && run.CreatedAt.Before(cutoff) {
			delete(g.runs, id)
		}
	}
}
