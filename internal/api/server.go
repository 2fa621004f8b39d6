package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/pdfner/internal/config"
	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/pipeline"
)

// Server is the HTTP API server for pdfner.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	recognizer   ner.Recognizer
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, recognizer ner.Recognizer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		recognizer:   recognizer,
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
		r.Use(AuthMiddleware(s.cfg.Server.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/stats/inference", s.handleInferenceStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
