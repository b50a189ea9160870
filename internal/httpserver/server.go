// Package httpserver exposes holder analysis, health checks and metrics over
// HTTP.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// requestTimeout bounds a whole request, analysis included
const requestTimeout = 2 * time.Minute

// Server provides the HTTP API
type Server struct {
	server        *http.Server
	log           *logrus.Logger
	healthChecker *HealthChecker
}

// Config holds server configuration
type Config struct {
	Port          int
	Log           *logrus.Logger
	HealthChecker *HealthChecker
	Events        *EventsHandler
}

// New creates a new HTTP server
func New(cfg *Config) *Server {
	return &Server{
		server: &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Port),
			Handler:           NewRouter(cfg),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      requestTimeout + 15*time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log:           cfg.Log,
		healthChecker: cfg.HealthChecker,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.Events != nil {
		r.Route("/api/events/{slug}", func(r chi.Router) {
			r.Get("/markets", cfg.Events.HandleMarkets)
			r.Get("/holders", cfg.Events.HandleHolders)
		})
	}
	return r
}

// Start serves until Shutdown is called or listening fails
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("HTTP server starting")
	s.healthChecker.SetReady(true)

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	s.healthChecker.SetReady(false)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
