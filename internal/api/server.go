package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kbility/taxassist/internal/advisor"
	"github.com/kbility/taxassist/internal/config"
	"github.com/kbility/taxassist/internal/docstore"
	"github.com/kbility/taxassist/internal/extract"
	"github.com/kbility/taxassist/internal/irssearch"
)

// Server is the HTTP API server for taxassist.
type Server struct {
	router    chi.Router
	extractor *extract.Extractor
	advisor   *advisor.Advisor
	search    *irssearch.Service
	store     *docstore.Store
	stats     *extract.CallStats
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(ex *extract.Extractor, adv *advisor.Advisor, search *irssearch.Service, store *docstore.Store, stats *extract.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		extractor: ex,
		advisor:   adv,
		search:    search,
		store:     store,
		stats:     stats,
		log:       log,
		cfg:       cfg,
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{s.cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	// Document upload and extraction.
	r.Post("/upload", s.handleUpload)
	r.Post("/upload-multi", s.handleUploadMulti)
	r.Get("/download", s.handleDownload)

	// Conversations over uploaded documents.
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/summary/{employeeName}", s.handleSummary)
	r.Post("/chat/general", s.handleGeneralChat)
	r.Get("/chat/general/summary", s.handleGeneralSummary)

	// IRS search.
	r.Route("/api/irs-search", func(r chi.Router) {
		r.Post("/query", s.handleSearchQuery)
		r.Get("/{topic}", s.handleSearchTopic)
	})

	r.Get("/api/stats/llm", s.handleLLMStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
