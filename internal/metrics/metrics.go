// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes the Prometheus collectors for the HTTP API, the
// compile/render pipeline and the generation worker.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeCacheHit         = "cache_hit"
	OutcomeSchemaMismatch   = "schema_mismatch"
	OutcomeMalformedContent = "malformed_content"
	OutcomeBackendError     = "backend_error"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papermill_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papermill_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papermill_renders_total",
			Help: "Render attempts by template type and outcome",
		},
		[]string{"type", "outcome"},
	)

	compileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papermill_compile_duration_seconds",
			Help:    "Time spent compiling content to markup",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"type"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papermill_backend_duration_seconds",
			Help:    "Time spent in the render backend",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papermill_jobs_total",
			Help: "Generation jobs by final status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(rendersTotal)
	prometheus.MustRegister(compileDuration)
	prometheus.MustRegister(backendDuration)
	prometheus.MustRegister(jobsTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RegisterDB exports connection pool statistics for db. Registering the
// same pool twice is ignored.
func RegisterDB(db *sql.DB, name string) {
	_ = prometheus.Register(collectors.NewDBStatsCollector(db, name))
}

// RecordHTTPRequest records one served request. route is the chi route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordRender counts a render attempt.
func RecordRender(templateType, outcome string) {
	rendersTotal.WithLabelValues(templateType, outcome).Inc()
}

// ObserveCompile records how long a compile took.
func ObserveCompile(templateType string, d time.Duration) {
	compileDuration.WithLabelValues(templateType).Observe(d.Seconds())
}

// ObserveBackend records how long a backend call took.
func ObserveBackend(backend string, d time.Duration) {
	backendDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordJob counts a generation job reaching a final status.
func RecordJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}
