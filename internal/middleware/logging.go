// Package middleware provides HTTP middleware for the papermill API server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"papermill/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures a default 200 status if WriteHeader was never called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// requestInfo lets inner middleware report facts back to Logger.
type requestInfo struct {
	org uuid.UUID
}

const infoKey contextKey = "requestInfo"

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// Logger is a structured logging middleware that records method, path,
// status code, size and request duration for every HTTP request, and
// feeds the request counters and latency histogram.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := &requestInfo{}
		if org, ok := OrgFromCtx(r.Context()); ok {
			info.org = org
		}
		r = r.WithContext(context.WithValue(r.Context(), infoKey, info))

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)
		elapsed := time.Since(start)

		route := routePattern(r)
		metrics.RecordHTTPRequest(r.Method, route, wrapped.statusCode, elapsed)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", wrapped.statusCode,
			"bytes", wrapped.bytes,
			"duration", elapsed.String(),
			"remote", r.RemoteAddr,
		}
		if info.org != uuid.Nil {
			attrs = append(attrs, "org", info.org)
		}
		slog.Info("http request", attrs...)
	})
}

// routePattern returns the matched chi route, so metrics are labelled by
// "/v1/templates/{id}" rather than by every distinct ID.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
