package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appscans "github.com/bryanwahyu/visiai/internal/application/scans"
	"github.com/bryanwahyu/visiai/internal/domain/capture"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
	"github.com/bryanwahyu/visiai/internal/middleware"
)

type stubCapturer struct{ err error }

func (s stubCapturer) Capture(_ context.Context, url string) (capture.Page, error) {
	if s.err != nil {
		return capture.Page{}, s.err
	}
	return capture.Page{URL: url, HTML: `<html lang="en"><h1>Hi</h1></html>`, Text: "Hi"}, nil
}

type stubAuditor struct{}

func (stubAuditor) Audit(context.Context, string) providers.AuditResult {
	return providers.DefaultAudit(providers.ReasonMissingKey)
}

type stubVision struct{}

func (stubVision) Analyze(context.Context, string) providers.VisionResult {
	return providers.DefaultVision(providers.ReasonNoScreenshot)
}

type stubUX struct{}

func (stubUX) Analyze(context.Context, string) providers.UXResult {
	return providers.UXResult{Score: 75, Insights: []string{}, Outcome: providers.Synthetic(providers.ReasonMissingKey)}
}

type memRepo struct {
	mu    sync.Mutex
	scans map[domain.ScanID]*domain.Scan
	order []domain.ScanID
	err   error
}

func (m *memRepo) Save(_ context.Context, s *domain.Scan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.scans[s.ID] = s
	m.order = append([]domain.ScanID{s.ID}, m.order...)
	return nil
}

func (m *memRepo) Get(_ context.Context, id domain.ScanID) (*domain.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *memRepo) Delete(_ context.Context, id domain.ScanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scans[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.scans, id)
	return nil
}

func (m *memRepo) Paginate(_ context.Context, page, pageSize int, _ bool) (domain.PaginatedResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var data []*domain.Scan
	for i, id := range m.order {
		if i >= (page-1)*pageSize && i < page*pageSize {
			data = append(data, m.scans[id])
		}
	}
	return domain.NewPaginatedResult(data, page, pageSize, int64(len(m.order))), nil
}

type memErrors struct{ saved []*scanerrors.ScanError }

func (m *memErrors) Save(_ context.Context, e *scanerrors.ScanError) error {
	m.saved = append(m.saved, e)
	return nil
}

func (m *memErrors) ListByURL(_ context.Context, url string, _ int) ([]*scanerrors.ScanError, error) {
	out := []*scanerrors.ScanError{}
	for _, e := range m.saved {
		if url == "" || e.URL == url {
			out = append(out, e)
		}
	}
	return out, nil
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *pagination     `json:"pagination"`
}

func newTestRouter(t *testing.T, opts Options) (http.Handler, *appscans.Service, *memRepo) {
	t.Helper()
	repo := &memRepo{scans: map[domain.ScanID]*domain.Scan{}}
	svc := &appscans.Service{
		Repo:     repo,
		Errors:   &memErrors{},
		Capturer: stubCapturer{},
		Auditor:  stubAuditor{},
		Vision:   stubVision{},
		UX:       stubUX{},
	}
	return NewRouter(svc, opts), svc, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestScanLifecycle(t *testing.T) {
	h, _, _ := newTestRouter(t, Options{})

	rec, env := do(t, h, http.MethodPost, "/api/scan", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var scan domain.Scan
	require.NoError(t, json.Unmarshal(env.Data, &scan))
	assert.Equal(t, "https://example.com", scan.URL)
	assert.LessOrEqual(t, len(scan.Recommendations), 10)
	assert.Equal(t, providers.SourceDefault, scan.Providers.Audit.Source)

	rec, env = do(t, h, http.MethodGet, "/api/results/"+string(scan.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), string(scan.ID))

	rec, env = do(t, h, http.MethodGet, "/api/results?page=1&limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, pagination{Total: 1, Page: 1, Limit: 100, Pages: 1}, *env.Pagination)

	rec, _ = do(t, h, http.MethodDelete, "/api/results/"+string(scan.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/results/"+string(scan.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "scan not found", env.Error)

	rec, _ = do(t, h, http.MethodDelete, "/api/results/"+string(scan.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScanRejectsBadInput(t *testing.T) {
	h, _, repo := newTestRouter(t, Options{})

	for _, body := range []string{
		`{}`,
		`{"url":""}`,
		`{"url":"ftp://example.com"}`,
		`{"url":"http://127.0.0.1:8080"}`,
		`not json`,
	} {
		rec, env := do(t, h, http.MethodPost, "/api/scan", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, env.Error, body)
	}
	assert.Empty(t, repo.scans)
}

func TestScanErrorMapping(t *testing.T) {
	h, svc, repo := newTestRouter(t, Options{})

	svc.Capturer = stubCapturer{err: errors.New("no such host")}
	rec, _ := do(t, h, http.MethodPost, "/api/scan", `{"url":"https://missing.example"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, env := do(t, h, http.MethodGet, "/api/errors?url=https://missing.example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []scanerrors.ScanError
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, scanerrors.PhaseCapture, list[0].Phase)

	svc.Capturer = stubCapturer{}
	repo.err = errors.New("disk full")
	rec, env = do(t, h, http.MethodPost, "/api/scan", `{"url":"https://example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Error)
}

func TestUnknownIDIsNotFound(t *testing.T) {
	h, _, _ := newTestRouter(t, Options{})
	rec, _ := do(t, h, http.MethodGet, "/api/results/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthMetricsAndAuth(t *testing.T) {
	h, _, _ := newTestRouter(t, Options{
		Health:  map[string]middleware.HealthChecker{"database": middleware.CheckFunc(func(context.Context) error { return nil })},
		Metrics: middleware.NewMetrics(),
		APIKeys: map[string]string{"ci": "token"},
	})

	rec, _ := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/healthz/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/healthz/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "visiai_http_requests_in_flight")

	rec, _ = do(t, h, http.MethodGet, "/api/results", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimited(t *testing.T) {
	h, _, _ := newTestRouter(t, Options{Limiter: middleware.NewRateLimiter(0.5, 1)})

	rec, _ := do(t, h, http.MethodGet, "/api/results", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := do(t, h, http.MethodGet, "/api/results", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.False(t, env.Success)
}
