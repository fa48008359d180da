package core

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"appointments/internal/types"
)

const defaultRequestTimeout = 29 * time.Second

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-Id"

// MountRoutes registers the middleware chain, the health check and every
// registrar's routes.
//
// Middleware order:
//  1. Recoverer       - outermost so every panic is caught.
//  2. ContextTimeout  - soft deadline for downstream calls.
//  3. RequestID       - correlation id for logs and responses.
//  4. RequestLogger   - one structured line per request.
//  5. Metrics         - latency and count.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	s.router.Use(s.MetricsMiddleware)

	s.router.Get("/health", s.HandleHealth)
	for _, registrar := range s.Registrars {
		registrar(s.router)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout > 0 {
		return s.RequestTimeout
	}
	return defaultRequestTimeout
}

// ContextTimeoutMiddleware sets a deadline on the request context.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware reuses the caller's X-Request-Id or generates a UUID,
// stores it in the context and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := types.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
