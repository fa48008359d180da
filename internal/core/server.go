// Package core provides the HTTP chassis used when the scheduler runs as a
// local HTTP server instead of behind the API gateway integration. It owns
// the chi router, the middleware chain and the JSON response helpers.
package core

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// MetricsCollector records request telemetry.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar mounts domain routes on the router. Registrars are supplied
// by main so that core does not import the handler packages.
type RouteRegistrar func(r chi.Router)

// Server bundles the router with its cross-cutting dependencies.
type Server struct {
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	HealthProbes   []HealthProbe
	RequestTimeout time.Duration
	Registrars     []RouteRegistrar

	router *chi.Mux
}

// NewServer creates a server with an empty router. Call MountRoutes once all
// registrars and probes have been set.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(nopWriter{}, nil))
	}
	return &Server{
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
