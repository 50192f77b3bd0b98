package toc

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hwkim-dev/policyparse/internal/docstore"
)

// Status is the lifecycle state of one extraction run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusDetected  Status = "detected"
	StatusParsed    Status = "parsed"
	StatusExtracted Status = "extracted"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// FailReason classifies a failed run for callers: a declined run
// (ReasonNoTOC) warrants a "not applicable" response, the others a
// "retry later" response.
type FailReason string

const (
	ReasonNoTOC    FailReason = "no_toc_found"
	ReasonOracle   FailReason = "oracle_error"
	ReasonInternal FailReason = "internal_error"
)

// SectionDescriptor is one entry of the oracle's table-of-contents parse,
// before boundary resolution. The oracle always emits page_end as a
// placeholder zero; it is never trusted and always recomputed.
type SectionDescriptor struct {
	Level1    string `json:"level_1"`
	Level2    string `json:"level_2"`
	Level3    string `json:"level_3"`
	Part      string `json:"part"`
	Article   string `json:"article"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
}

// ParseResult is the oracle's full table-of-contents parse payload.
type ParseResult struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Length  int                 `json:"length"`
	Parsed  []SectionDescriptor `json:"parsed"`
}

// DetectResult is the oracle's per-window detection payload.
type DetectResult struct {
	TOCPages   []int   `json:"toc_pages"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Section is a boundary-resolved descriptor plus its extracted body and
// derived metrics; the unit of final output. Immutable once built.
type Section struct {
	SectionDescriptor

	ID        int    `json:"section_id"`
	Pages     []int  `json:"pages"`
	Title     string `json:"title"`
	Body      string `json:"text"`
	ParaCount int    `json:"para_count"`
	CharCount int    `json:"char_count"`
	HasTable  bool   `json:"has_table"`
	HasFigure bool   `json:"has_figure"`
}

// RunState is the single mutable context threaded through the pipeline.
// One run owns its state exclusively; the mutex only guards against
// concurrent readers (API status polls) while the run progresses.
type RunState struct {
	mu sync.Mutex

	docID      string
	windowSize int

	totalPages int
	cursor     int
	candidates []int
	fragments  []docstore.Fragment
	parsed     *ParseResult
	sections   []Section

	status    Status
	reason    FailReason
	errMsg    string
	logs      []string
	startedAt time.Time
	updatedAt time.Time
}

func NewRunState(docID string, windowSize int) *RunState {
	if windowSize <= 0 {
		windowSize = 5
	}
	now := time.Now().UTC()
	return &RunState{
		docID:      docID,
		windowSize: windowSize,
		status:     StatusIdle,
		startedAt:  now,
		updatedAt:  now,
	}
}

func (s *RunState) DocID() string   { return s.docID }
func (s *RunState) WindowSize() int { return s.windowSize }

func (s *RunState) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *RunState) Reason() FailReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *RunState) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPages
}

func (s *RunState) SetTotalPages(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalPages = n
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// AdvanceCursor moves the window cursor forward. The cursor is monotonic;
// attempts to move it backward are ignored.
func (s *RunState) AdvanceCursor(to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to > s.cursor {
		s.cursor = to
	}
	if s.cursor > s.totalPages {
		s.cursor = s.totalPages
	}
	s.updatedAt = time.Now().UTC()
}

// MergeCandidates folds page indices into the candidate set with set
// semantics: deduplicated, sorted ascending. The set only ever grows.
func (s *RunState) MergeCandidates(pages []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int]bool, len(s.candidates)+len(pages))
	for _, p := range s.candidates {
		seen[p] = true
	}
	for _, p := range pages {
		seen[p] = true
	}
	merged := make([]int, 0, len(seen))
	for p := range seen {
		merged = append(merged, p)
	}
	sort.Ints(merged)
	s.candidates = merged
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Candidates() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.candidates...)
}

func (s *RunState) SetFragments(frags []docstore.Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = frags
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Fragments() []docstore.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fragments
}

func (s *RunState) SetParsed(res *ParseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsed = res
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Parsed() *ParseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parsed
}

func (s *RunState) SetSections(sections []Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = sections
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Sections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Section(nil), s.sections...)
}

// SetStatus transitions the run and records a log line for the transition.
func (s *RunState) SetStatus(status Status, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	if msg != "" {
		s.appendLogLocked(fmt.Sprintf("[%s] %s", status, msg))
	}
	s.updatedAt = time.Now().UTC()
}

// AddLog appends one timestamped entry to the run's log trail.
func (s *RunState) AddLog(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(msg)
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) appendLogLocked(msg string) {
	s.logs = append(s.logs, fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05"), msg))
}

// Fail moves the run to the terminal failed state with a reason code. The
// first failure wins; later calls are ignored.
func (s *RunState) Fail(reason FailReason, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusFailed {
		return
	}
	s.status = StatusFailed
	s.reason = reason
	s.errMsg = err.Error()
	s.appendLogLocked(fmt.Sprintf("ERROR (%s): %v", reason, err))
	s.updatedAt = time.Now().UTC()
}

func (s *RunState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *RunState) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logs...)
}

// Snapshot is a read-only, JSON-safe copy of run state. Section bodies are
// omitted; they are served by the section detail endpoint.
type Snapshot struct {
	DocID          string     `json:"doc_id"`
	Status         Status     `json:"status"`
	Reason         FailReason `json:"reason,omitempty"`
	Error          string     `json:"error,omitempty"`
	TotalPages     int        `json:"total_pages"`
	WindowSize     int        `json:"window_size"`
	Cursor         int        `json:"window_cursor"`
	CandidatePages []int      `json:"toc_pages"`
	SectionCount   int        `json:"section_count"`
	Logs           []string   `json:"logs"`
	StartedAt      time.Time  `json:"started_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ProcessingSecs float64    `json:"processing_seconds"`
}

func (s *RunState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := append([]int{}, s.candidates...)
	return Snapshot{
		DocID:          s.docID,
		Status:         s.status,
		Reason:         s.reason,
		Error:          s.errMsg,
		TotalPages:     s.totalPages,
		WindowSize:     s.windowSize,
		Cursor:         s.cursor,
		CandidatePages: candidates,
		SectionCount:   len(s.sections),
		Logs:           append([]string{}, s.logs...),
		StartedAt:      s.startedAt,
		UpdatedAt:      s.updatedAt,
		ProcessingSecs: s.updatedAt.Sub(s.startedAt).Seconds(),
	}
}
