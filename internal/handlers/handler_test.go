// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared in-memory collaborators and a router
// for handler tests.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"papermill/internal/engine"
	"papermill/internal/middleware"
	"papermill/internal/models"
	"papermill/internal/queue"
	"papermill/internal/store"
)

type memTemplates struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.Template
	clock time.Time
}

func (m *memTemplates) Create(_ context.Context, orgID uuid.UUID, name string, typ models.TemplateType) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	t := &models.Template{ID: uuid.New(), OrgID: orgID, Name: name, Type: typ, Status: models.TemplateStatusActive, CreatedAt: m.clock}
	m.byID[t.ID] = t
	return t, nil
}

func (m *memTemplates) FindByID(_ context.Context, orgID, id uuid.UUID) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OrgID != orgID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTemplates) ListByOrg(_ context.Context, orgID uuid.UUID) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Template
	for _, t := range m.byID {
		if t.OrgID == orgID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memTemplates) Archive(_ context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OrgID != orgID {
		return store.ErrNotFound
	}
	t.Status = models.TemplateStatusArchived
	return nil
}

func (m *memTemplates) Delete(_ context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OrgID != orgID {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memVersions struct {
	mu        sync.Mutex
	templates *memTemplates
	byTmpl    map[uuid.UUID][]*models.TemplateVersion
	conflict  bool // next Append reports a concurrent writer
}

func (m *memVersions) Append(_ context.Context, templateID uuid.UUID, status models.VersionStatus, content models.Content, schema map[string]any) (*models.TemplateVersion, error) {
	m.templates.mu.Lock()
	t, ok := m.templates.byID[templateID]
	archived := ok && t.IsArchived()
	m.templates.mu.Unlock()
	if !ok || archived {
		return nil, store.ErrTemplateArchived
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict {
		m.conflict = false
		return nil, store.ErrVersionConflict
	}
	if status == "" {
		status = models.VersionStatusDraft
	}
	v := &models.TemplateVersion{
		ID:         uuid.New(),
		TemplateID: templateID,
		Version:    len(m.byTmpl[templateID]) + 1,
		Status:     status,
		Content:    content,
		Schema:     schema,
		CreatedAt:  time.Now(),
	}
	m.byTmpl[templateID] = append(m.byTmpl[templateID], v)
	return v, nil
}

func (m *memVersions) Find(_ context.Context, templateID uuid.UUID, n int) (*models.TemplateVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vs := m.byTmpl[templateID]
	if len(vs) == 0 {
		return nil, nil
	}
	if n == 0 {
		return vs[len(vs)-1], nil
	}
	if n > len(vs) {
		return nil, nil
	}
	return vs[n-1], nil
}

func (m *memVersions) List(_ context.Context, templateID uuid.UUID) ([]models.VersionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vs := m.byTmpl[templateID]
	out := make([]models.VersionSummary, 0, len(vs))
	for i := len(vs) - 1; i >= 0; i-- {
		v := vs[i]
		out = append(out, models.VersionSummary{ID: v.ID, TemplateID: v.TemplateID, Version: v.Version, Status: v.Status, CreatedAt: v.CreatedAt})
	}
	return out, nil
}

type memJobs struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.GenerationJob
}

func (m *memJobs) Create(_ context.Context, orgID, templateID uuid.UUID, version int) (*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := &models.GenerationJob{ID: uuid.New(), OrgID: orgID, TemplateID: templateID, Version: version, Status: models.JobStatusPending}
	m.byID[j.ID] = j
	cp := *j
	return &cp, nil
}

func (m *memJobs) FindByID(_ context.Context, orgID, id uuid.UUID) (*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.byID[id]
	if !ok || j.OrgID != orgID {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (m *memJobs) UpdateStatus(_ context.Context, id uuid.UUID, status models.JobStatus, assetID *uuid.UUID, code, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	j.Status, j.OutputAssetID, j.ErrorCode, j.ErrorMessage = status, assetID, code, msg
	return nil
}

type memAssets struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Asset
}

func (m *memAssets) Create(_ context.Context, a *models.Asset) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAssets) FindByID(_ context.Context, orgID, id uuid.UUID) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.OrgID != orgID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

type fakeQueue struct {
	msgs []queue.Message
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, msg queue.Message) error {
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, bucket, key, _ string, body io.Reader, _ int64) error {
	if s.err != nil {
		return s.err
	}
	b, _ := io.ReadAll(body)
	s.objects[bucket+"/"+key] = b
	return nil
}

func (s *fakeStorage) FileURL(key string) string { return "https://cdn.test/" + key }

func (s *fakeStorage) PresignedURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.test/" + bucket + "/" + key, nil
}

func (s *fakeStorage) PublicBucket() string { return "public" }

// stubBackend returns a fixed PDF, or err, and counts calls.
type stubBackend struct {
	calls int
	err   error
}

func (b *stubBackend) Render(context.Context, string) ([]byte, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

func (b *stubBackend) Name() string { return "stub" }

// env bundles an API with its in-memory state.
type env struct {
	org       uuid.UUID
	templates *memTemplates
	versions  *memVersions
	jobs      *memJobs
	assets    *memAssets
	queue     *fakeQueue
	storage   *fakeStorage
	backend   *stubBackend
	api       *API
	router    http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tm := &memTemplates{byID: map[uuid.UUID]*models.Template{}, clock: time.Now()}
	e := &env{
		org:       uuid.New(),
		templates: tm,
		versions:  &memVersions{templates: tm, byTmpl: map[uuid.UUID][]*models.TemplateVersion{}},
		jobs:      &memJobs{byID: map[uuid.UUID]*models.GenerationJob{}},
		assets:    &memAssets{byID: map[uuid.UUID]*models.Asset{}},
		queue:     &fakeQueue{},
		storage:   &fakeStorage{objects: map[string][]byte{}},
		backend:   &stubBackend{},
	}
	e.api = New(Deps{
		Templates: e.templates,
		Versions:  e.versions,
		Jobs:      e.jobs,
		Assets:    e.assets,
		Engine:    engine.New(e.backend),
		Queue:     e.queue,
		Storage:   e.storage,
	})
	e.router = testRouter(e.api, func() uuid.UUID { return e.org })
	return e
}

// testRouter mounts the API the way the production router does, with the
// API key check replaced by a fixed org.
func testRouter(api *API, org func() uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithOrg(req.Context(), org())))
		})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/templates", api.CreateTemplate)
		r.Get("/templates", api.ListTemplates)
		r.Get("/templates/{id}", api.GetTemplate)
		r.Delete("/templates/{id}", api.DeleteTemplate)
		r.Post("/templates/{id}/archive", api.ArchiveTemplate)
		r.Get("/templates/{id}/versions", api.ListVersions)
		r.Post("/templates/{id}/versions", api.CreateVersion)
		r.Post("/templates/{id}/versions/markdown", api.ImportMarkdown)
		r.Get("/templates/{id}/versions/{version}", api.GetVersion)
		r.Get("/templates/{id}/markup", api.Markup)
		r.Post("/templates/{id}/render", api.RenderTemplate)
		r.Post("/templates/{id}/generate", api.Generate)
		r.Get("/jobs/{id}", api.GetJob)
		r.Post("/assets", api.UploadAsset)
		r.Get("/assets/{id}", api.GetAsset)
	})
	return r
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// seed creates a template with one version of content.
func (e *env) seed(t *testing.T, typ models.TemplateType, name, content string) *models.Template {
	t.Helper()
	ctx := context.Background()
	tmpl, err := e.templates.Create(ctx, e.org, name, typ)
	require.NoError(t, err)
	if content != "" {
		c, err := models.ParseContent([]byte(content))
		require.NoError(t, err)
		_, err = e.versions.Append(ctx, tmpl.ID, models.VersionStatusPublished, c, nil)
		require.NoError(t, err)
	}
	return tmpl
}

type apiError struct {
	Error errorBody `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body apiError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body)
	return body.Error
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), "body: %s", rr.Body)
}

const (
	docJSON    = `{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hello "},{"type":"variable","attrs":{"label":"name"}}]}]}`
	layoutJSON = `{"pages":[{"elements":[{"id":"a","type":"text","x":10,"y":20,"width":100,"height":30,"text":"Hi"},{"id":"b","type":"field","x":0,"y":60,"width":100,"height":30,"fieldKey":"total"}]}]}`
)

func path(format string, args ...any) string { return fmt.Sprintf(format, args...) }

var errBoom = errors.New("boom")
