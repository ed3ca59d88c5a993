package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/http/middleware"
	"github.com/davidbz/imgresolve/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      *config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      cfg,
		handler:     handler,
		middlewares: middlewares,
		srv:         nil,
	}
}

// Routes builds the API router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handler.HandleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/images/resolve", s.handler.HandleResolve)
		r.Post("/images/resolve-batch", s.handler.HandleResolveBatch)
		r.Post("/paths/map", s.handler.HandleMapPaths)
		r.Get("/paths/mappings", s.handler.HandleMappings)
		r.Get("/stats", s.handler.HandleStats)
		r.Get("/duplicates", s.handler.HandleDuplicates)
		r.Post("/cache/sweep", s.handler.HandleSweep)
	})

	if s.middlewares == nil {
		return r
	}
	return s.middlewares(r)
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if s.srv == nil {
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
