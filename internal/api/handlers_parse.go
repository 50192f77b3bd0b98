package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hwkim-dev/policyparse/internal/docstore"
	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/toc"
)

type parseRequest struct {
	DocID      string `json:"doc_id"`
	WindowSize int    `json:"window_size"`
}

func (s *Server) handleParseStart(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocID == "" {
		jsonError(w, "doc_id is required", http.StatusBadRequest)
		return
	}
	if req.WindowSize <= 0 {
		req.WindowSize = s.cfg.WindowSize
	}
	if req.WindowSize > 20 {
		jsonError(w, "window_size must be between 1 and 20", http.StatusBadRequest)
		return
	}

	if _, err := s.store.Get(r.Context(), req.DocID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to look up document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run, err := s.orchestrator.Submit(req.DocID, req.WindowSize)
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":   run.ID,
		"doc_id":   run.DocID,
		"status":   run.State.Status(),
		"poll_url": "/api/parse/" + run.DocID,
	})
}

// outcome maps a run's terminal condition to the caller-facing trichotomy:
// success, declined (no table of contents — "not applicable"), or error
// ("retry later").
func outcome(snap toc.Snapshot) string {
	switch snap.Status {
	case toc.StatusCompleted:
		return "success"
	case toc.StatusFailed:
		if snap.Reason == toc.ReasonNoTOC {
			return "declined"
		}
		return "error"
	default:
		return "in_progress"
	}
}

func (s *Server) handleParseStatus(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	run := s.orchestrator.Get(docID)
	if run == nil {
		jsonError(w, "no parse run for document", http.StatusNotFound)
		return
	}

	snap := run.State.Snapshot()
	resp := map[string]any{
		"run_id":  run.ID,
		"outcome": outcome(snap),
		"state":   snap,
	}
	if ex := run.Export(); ex != (export.Result{}) {
		resp["export"] = ex
	}
	writeJSON(w, http.StatusOK, resp)
}

// sectionSummary is a Section without its body.
type sectionSummary struct {
	toc.SectionDescriptor
	ID        int    `json:"section_id"`
	Title     string `json:"title"`
	ParaCount int    `json:"para_count"`
	CharCount int    `json:"char_count"`
	HasTable  bool   `json:"has_table"`
	HasFigure bool   `json:"has_figure"`
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	run := s.orchestrator.Get(docID)
	if run == nil {
		jsonError(w, "no parse run for document", http.StatusNotFound)
		return
	}

	sections := run.State.Sections()
	summaries := make([]sectionSummary, 0, len(sections))
	for _, sec := range sections {
		summaries = append(summaries, sectionSummary{
			SectionDescriptor: sec.SectionDescriptor,
			ID:                sec.ID,
			Title:             sec.Title,
			ParaCount:         sec.ParaCount,
			CharCount:         sec.CharCount,
			HasTable:          sec.HasTable,
			HasFigure:         sec.HasFigure,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   docID,
		"sections": summaries,
		"total":    len(summaries),
	})
}

func (s *Server) handleSectionDetail(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	run := s.orchestrator.Get(docID)
	if run == nil {
		jsonError(w, "no parse run for document", http.StatusNotFound)
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "sectionID"))
	if err != nil {
		jsonError(w, "invalid section id", http.StatusBadRequest)
		return
	}
	for _, sec := range run.State.Sections() {
		if sec.ID == n {
			writeJSON(w, http.StatusOK, sec)
			return
		}
	}
	jsonError(w, "section not found", http.StatusNotFound)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	md, err := s.exporter.ReadReport(docID)
	if err != nil {
		jsonError(w, "no report for document", http.StatusNotFound)
		return
	}
	html, err := export.RenderHTML(md)
	if err != nil {
		jsonError(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
