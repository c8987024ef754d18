// Package api exposes the form submission pipeline and the admin queries
// over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nartaq/forms-service/internal/auth"
	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/ratelimit"
)

// Server wraps the router and the http.Server lifecycle.
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
	router   *chi.Mux
}

// NewServer builds the router. authManager and limiter may be nil: admin
// routes then run unauthenticated (local development) and the public form
// routes unthrottled.
func NewServer(cfg config.ServerConfig, handlers *Handlers, authManager *auth.Manager, limiter *ratelimit.Limiter) *Server {
	router := SetupRoutes(handlers, authManager, limiter)
	return &Server{
		config:   cfg,
		handler:  router,
		handlers: handlers,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
