package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/affigen/internal/config"
	"github.com/dgallion1/affigen/internal/pipeline"
	"github.com/dgallion1/affigen/internal/registry"
	"github.com/dgallion1/affigen/internal/session"
)

// Server is the HTTP API server for affigen.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
	registry     *registry.Store
	log          *slog.Logger
	cfg          config.Config
	now          func() time.Time
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, sessions *session.Store, reg *registry.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		registry:     reg,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents/validate", s.handleValidateDocument)
		r.Post("/api/documents/import", s.handleImportDocument)
		r.Post("/api/documents/export", s.handleExportDocument)

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Delete("/{sessionID}", s.handleDeleteSession)
			r.Put("/{sessionID}/document", s.handleReplaceDocument)
			r.Put("/{sessionID}/selection", s.handleSetSelection)
			r.Post("/{sessionID}/commands", s.handleCommands)
			r.Get("/{sessionID}/export", s.handleExportSession)
		})

		r.Post("/api/affidavits/fast", s.handleFastAffidavit)
		r.Post("/api/generate", s.handleGenerate)
		r.Get("/api/generate/{jobID}", s.handleGenerateStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Get("/api/officers", s.handleListOfficers)
		r.Post("/api/officers", s.handleCreateOfficer)
		r.Post("/api/officers/import", s.handleImportOfficers)
		r.Get("/api/officers/{badge}", s.handleGetOfficer)
		r.Put("/api/officers/{badge}", s.handlePutOfficer)
		r.Delete("/api/officers/{badge}", s.handleDeleteOfficer)

		r.Get("/api/station", s.handleGetStation)
		r.Put("/api/station", s.handlePutStation)

		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/templates/{name}", s.handleGetTemplate)
		r.Put("/api/templates/{name}", s.handlePutTemplate)
		r.Delete("/api/templates/{name}", s.handleDeleteTemplate)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	}
	if s.orchestrator != nil {
		resp["queue_depth"] = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
