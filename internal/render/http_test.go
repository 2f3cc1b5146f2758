// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newRendererServer creates an httptest.Server that records the html it
// receives and responds with the given status and body.
func newRendererServer(t *testing.T, status int, body []byte, got *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/render" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var req httpRenderRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if got != nil {
			*got = req.HTML
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(status)
		w.Write(body)
	}))
}

func TestHTTPBackendRender_Success(t *testing.T) {
	var got string
	srv := newRendererServer(t, http.StatusOK, []byte("%PDF-1.7 fake"), &got)
	defer srv.Close()

	b := NewHTTP(srv.URL+"/", time.Second)
	pdf, err := b.Render(context.Background(), "<p>hi</p>")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(pdf) != "%PDF-1.7 fake" {
		t.Errorf("pdf = %q", pdf)
	}
	if got != "<p>hi</p>" {
		t.Errorf("renderer received %q", got)
	}
}

func TestHTTPBackendRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "boom", "status 500"},
		{"bad request", http.StatusBadRequest, "html required", "status 400"},
		{"not a pdf", http.StatusOK, "<html>", "not a PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRendererServer(t, tt.status, []byte(tt.body), nil)
			defer srv.Close()

			_, err := NewHTTP(srv.URL, time.Second).Render(context.Background(), "<p></p>")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPBackendRender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewHTTP(url, time.Second).Render(context.Background(), "x"); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestHTTPBackendRender_ContextCancelled(t *testing.T) {
	srv := newRendererServer(t, http.StatusOK, []byte("%PDF-"), nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHTTP(srv.URL, time.Second).Render(ctx, "x"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"default is http", Config{URL: "http://renderer:3001"}, "http", false},
		{"http without url", Config{Backend: "http"}, "", true},
		{"chromium", Config{Backend: "chromium"}, "chromium", false},
		{"unknown", Config{Backend: "wkhtmltopdf"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.wantName)
			}
		})
	}
}
