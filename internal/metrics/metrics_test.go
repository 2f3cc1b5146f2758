// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRender(t *testing.T) {
	c := rendersTotal.WithLabelValues("layout", OutcomeCacheHit)
	before := testutil.ToFloat64(c)

	RecordRender("layout", OutcomeCacheHit)
	RecordRender("layout", OutcomeCacheHit)

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("cache_hit delta = %v, want 2", got)
	}
}

func TestRecordJob(t *testing.T) {
	c := jobsTotal.WithLabelValues("failed")
	before := testutil.ToFloat64(c)
	RecordJob("failed")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	c := httpRequestsTotal.WithLabelValues("POST", "/v1/templates/{id}/render", "422")
	before := testutil.ToFloat64(c)
	RecordHTTPRequest("POST", "/v1/templates/{id}/render", 422, 15*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request delta = %v, want 1", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveCompile("document", time.Millisecond)
	ObserveBackend("http", 200*time.Millisecond)
	RecordJob("completed")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	for _, name := range []string{
		"papermill_compile_duration_seconds",
		"papermill_backend_duration_seconds",
		`papermill_jobs_total{status="completed"}`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("scrape output missing %s", name)
		}
	}
}
