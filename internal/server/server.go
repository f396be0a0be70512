// Package server provides the HTTP API for notedraft.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/notedraft/internal/config"
	"github.com/hyperjump/notedraft/internal/notes"
	"go.uber.org/zap"
)

// Server is the HTTP server for the notedraft API.
type Server struct {
	notes   *notes.Service
	config  *config.ServerConfig
	timeout time.Duration
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server backed by svc. requestTimeout bounds each
// request and should exceed the generation timeout; zero uses 2 minutes.
func NewServer(svc *notes.Service, cfg *config.ServerConfig, requestTimeout time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}
	return &Server{
		notes:   svc,
		config:  cfg,
		timeout: requestTimeout,
		logger:  logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/formats", s.handleListFormats)
		r.Get("/formats/{id}", s.handleGetFormat)
		r.Get("/catalog", s.handleCatalog)

		r.Post("/prompt", s.handlePrompt)
		r.Post("/parse", s.handleParse)
		r.Post("/validate", s.handleValidate)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleCreateNote)
			r.Get("/", s.handleListNotes)
			r.Get("/{id}", s.handleGetNote)
			r.Delete("/{id}", s.handleDeleteNote)
			r.Get("/{id}/export", s.handleExportNote)
			r.Post("/{id}/sections/{sectionID}/regenerate", s.handleRegenerateSection)
			r.Put("/{id}/sections/{sectionID}/version", s.handleSelectVersion)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
