package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hwkim-dev/policyparse/internal/config"
	"github.com/hwkim-dev/policyparse/internal/docstore"
	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/oracle"
	"github.com/hwkim-dev/policyparse/internal/runs"
)

// Server is the HTTP API for policyparse.
type Server struct {
	router       chi.Router
	store        *docstore.Local
	orchestrator *runs.Orchestrator
	exporter     *export.Exporter
	oracleStats  *oracle.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store *docstore.Local, orch *runs.Orchestrator, exporter *export.Exporter, stats *oracle.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:        store,
		orchestrator: orch,
		exporter:     exporter,
		oracleStats:  stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents", s.handleListDocuments)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/parse", s.handleParseStart)
		r.Get("/api/parse/{docID}", s.handleParseStatus)
		r.Get("/api/parse/{docID}/sections", s.handleSections)
		r.Get("/api/parse/{docID}/sections/{sectionID}", s.handleSectionDetail)
		r.Get("/api/parse/{docID}/report", s.handleReport)

		r.Get("/api/stats/oracle", s.handleOracleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleOracleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"oracle":      s.oracleStats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
