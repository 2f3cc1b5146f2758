// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// papermill API. Operational endpoints are public; everything under /v1
// requires an API key.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"papermill/internal/handlers"
	"papermill/internal/metrics"
	"papermill/internal/middleware"
)

// healthTimeout bounds the readiness probe.
const healthTimeout = 2 * time.Second

// Options carries everything New needs to build the router.
type Options struct {
	API     *handlers.API
	Auth    *middleware.Authenticator
	Limiter *middleware.RateLimiter

	// CORSOrigins lists browser origins allowed to call /v1.
	CORSOrigins []string

	// Ping reports whether the database is reachable. Nil skips the check.
	Ping func(ctx context.Context) error
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(o Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler(o.Ping))
	r.Handle("/metrics", metrics.Handler())

	api := o.API
	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   o.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition", "Location", "Retry-After", "X-Template-Version"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(o.Auth.RequireAPIKey)

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", api.CreateTemplate)
			r.Get("/", api.ListTemplates)
			r.Get("/{id}", api.GetTemplate)
			r.Delete("/{id}", api.DeleteTemplate)
			r.Post("/{id}/archive", api.ArchiveTemplate)

			r.Get("/{id}/versions", api.ListVersions)
			r.Post("/{id}/versions", api.CreateVersion)
			r.Post("/{id}/versions/markdown", api.ImportMarkdown)
			r.Get("/{id}/versions/{version}", api.GetVersion)

			// Compile-heavy routes share the per-org token bucket.
			r.Group(func(r chi.Router) {
				r.Use(o.Limiter.Middleware)
				r.Get("/{id}/markup", api.Markup)
				r.Post("/{id}/render", api.RenderTemplate)
				r.Post("/{id}/generate", api.Generate)
			})
		})

		r.Get("/jobs/{id}", api.GetJob)

		r.Post("/assets", api.UploadAsset)
		r.Get("/assets/{id}", api.GetAsset)
	})

	return r
}

// healthHandler returns a JSON health check. With a ping function it also
// reports 503 while the database is unreachable.
func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
