// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rolegate/rolegate/internal/assign"
	"github.com/rolegate/rolegate/internal/oauth"
	"github.com/rolegate/rolegate/internal/platform/config"
	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Root is the GET / service identity page.
	Root http.HandlerFunc

	// Health is the GET /api/health probe.
	Health http.HandlerFunc

	// Info is the GET /api/info endpoint catalogue.
	Info http.HandlerFunc

	// Assign handles the authenticated webhook surface.
	Assign *assign.Handler

	// OAuth handles the browser-facing Discord OAuth2 flow.
	OAuth *oauth.Handler
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

Description: Three surfaces with distinct protection levels share one
router:

  - /            service identity, open
  - /api         rate limited per client IP; /health and /info stay
    unauthenticated for probes, everything else requires the API key
  - /auth        the OAuth flow, open by design (browsers arrive with no
    credentials)

Parameters:
  - cfg: loaded application configuration
  - log: structured logger
  - rateLimiter: shared fixed-window limiter for the /api surface
  - h: all domain handlers

Returns:
  - *Server: ready to ListenAndServe
*/
func NewServer(cfg *config.Config, log *slog.Logger, rateLimiter *middleware.RateLimiter, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg.IsDevelopment(), cfg.CORSOrigins))
	r.Use(chimw.CleanPath)

	// # Service Identity
	r.Get("/", h.Root)

	// # Application API
	// Rate limited as a whole; only the webhook itself needs the key.
	r.Route("/api", func(api chi.Router) {
		api.Use(rateLimiter.Middleware())

		api.Get("/health", h.Health)
		api.Get("/info", h.Info)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.APIKey(cfg.APISecretKey))
			protected.Mount("/", h.Assign.Routes())
		})
	})

	// # OAuth Flow
	r.Mount("/auth", h.OAuth.Routes())

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
