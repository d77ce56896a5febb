// Package server provides the HTTP API for factlens.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ppiankov/factlens/internal/history"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"go.uber.org/zap"
)

// maxUploadBytes bounds multipart submissions; the normalizer enforces the
// per-type limits
const maxUploadBytes = 64 << 20

// Server is the HTTP server for the factlens API. It owns one Session, so
// at most one analysis runs at a time.
type Server struct {
	session *pipeline.Session
	history history.Store
	config  *model.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. history may be nil.
func NewServer(session *pipeline.Session, store history.Store, cfg *model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: session,
		history: store,
		config:  cfg,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the API routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(150 * time.Second))

	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Get("/api/v1/session", s.handleSession)
	r.Delete("/api/v1/session", s.handleReset)
	r.Post("/api/v1/report", s.handleReport)
	r.Get("/api/v1/history", s.handleHistoryList)
	r.Delete("/api/v1/history", s.handleHistoryClear)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops. A graceful Stop
// is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
