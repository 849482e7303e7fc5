package scans

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/visiai/internal/application"
	"github.com/bryanwahyu/visiai/internal/domain/capture"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
)

type fakeCapturer struct {
	page capture.Page
	err  error
}

func (f fakeCapturer) Capture(_ context.Context, url string) (capture.Page, error) {
	if f.err != nil {
		return capture.Page{}, f.err
	}
	p := f.page
	p.URL = url
	return p, nil
}

type fakeAuditor struct{ res providers.AuditResult }

func (f fakeAuditor) Audit(context.Context, string) providers.AuditResult { return f.res }

type fakeVision struct {
	mu   sync.Mutex
	seen string
}

func (f *fakeVision) Analyze(_ context.Context, screenshot string) providers.VisionResult {
	f.mu.Lock()
	f.seen = screenshot
	f.mu.Unlock()
	if screenshot == "" {
		return providers.DefaultVision(providers.ReasonNoScreenshot)
	}
	return providers.VisionResult{
		ClarityScore:   80,
		VisualIssues:   []string{"Crowded header"},
		LayoutProblems: []string{"Tight margins"},
		AttentionZones: providers.DefaultZones(),
		Provider:       "OpenAI",
		Outcome:        providers.Live(),
	}
}

type fakeUX struct{}

func (fakeUX) Analyze(context.Context, string) providers.UXResult {
	return providers.UXResult{Score: 80, Insights: []string{"ok"}, Outcome: providers.Synthetic(providers.ReasonMissingKey)}
}

type memRepo struct {
	saved []*domain.Scan
	err   error
}

func (m *memRepo) Save(_ context.Context, s *domain.Scan) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}
func (m *memRepo) Get(context.Context, domain.ScanID) (*domain.Scan, error) { return nil, nil }
func (m *memRepo) Delete(context.Context, domain.ScanID) error             { return nil }
func (m *memRepo) Paginate(context.Context, int, int, bool) (domain.PaginatedResult, error) {
	return domain.NewPaginatedResult(m.saved, 1, 20, int64(len(m.saved))), nil
}

type memErrors struct{ saved []*scanerrors.ScanError }

func (m *memErrors) Save(_ context.Context, e *scanerrors.ScanError) error {
	m.saved = append(m.saved, e)
	return nil
}
func (m *memErrors) ListByURL(context.Context, string, int) ([]*scanerrors.ScanError, error) {
	return m.saved, nil
}

type fakeStore struct {
	key string
	err error
}

func (f *fakeStore) UploadScreenshot(_ context.Context, key, _ string) (string, error) {
	f.key = key
	if f.err != nil {
		return "", f.err
	}
	return "http://minio/shots/" + key, nil
}

type countingRecorder struct {
	mu        sync.Mutex
	statuses  []string
	fallbacks map[string]providers.Source
}

func (r *countingRecorder) ObserveAnalysis(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *countingRecorder) ProviderFallback(provider string, source providers.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallbacks == nil {
		r.fallbacks = map[string]providers.Source{}
	}
	r.fallbacks[provider] = source
}

const page = `<html lang="en"><body><a href="#main">Skip to content</a><h1>Hello</h1></body></html>`

func newService() (*Service, *memRepo, *memErrors, *fakeVision) {
	repo := &memRepo{}
	errs := &memErrors{}
	vision := &fakeVision{}
	text := strings.Repeat("The cat sat on the mat. ", 10)
	return &Service{
		Repo:     repo,
		Errors:   errs,
		Capturer: fakeCapturer{page: capture.Page{HTML: page, Text: text, Screenshot: "data:image/png;base64,aGVsbG8="}},
		Auditor: fakeAuditor{res: providers.AuditResult{
			AccessibilityScore: 80, PerformanceScore: 80, BestPracticesScore: 80, SEOScore: 80,
			Issues: []string{}, Outcome: providers.Live(),
		}},
		Vision: vision,
		UX:     fakeUX{},
		Clock:  application.FixedClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
	}, repo, errs, vision
}

func TestAnalyzePersistsFusedRecord(t *testing.T) {
	svc, repo, _, vision := newService()
	rec := &countingRecorder{}
	svc.Metrics = rec

	scan, err := svc.Analyze(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)

	assert.NotEmpty(t, scan.ID)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), scan.Timestamp)
	assert.Equal(t, "https://example.com", scan.URL)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", vision.seen)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", scan.Screenshot)
	assert.Equal(t, 80, scan.Scores.Accessibility)
	assert.Equal(t, 80, scan.Scores.VisualClarity)
	assert.Equal(t, 80, scan.Scores.ReimagineUX)
	assert.GreaterOrEqual(t, scan.Scores.Overall, 0)
	assert.LessOrEqual(t, scan.Scores.Overall, 100)
	assert.Equal(t, providers.SourceSynthetic, scan.Providers.UX.Source)
	assert.Equal(t, []string{"success"}, rec.statuses)
	assert.Equal(t, map[string]providers.Source{"ux": providers.SourceSynthetic}, rec.fallbacks)
}

func TestAnalyzeUploadsScreenshot(t *testing.T) {
	svc, _, _, _ := newService()
	store := &fakeStore{}
	svc.Screenshots = store

	scan, err := svc.Analyze(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "scans/"+string(scan.ID)+".png", store.key)
	assert.Equal(t, "http://minio/shots/"+store.key, scan.Screenshot)

	store.err = errors.New("minio down")
	scan, err = svc.Analyze(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", scan.Screenshot)
}

func TestAnalyzeRequestScreenshotOverridesCapture(t *testing.T) {
	svc, _, _, vision := newService()
	_, err := svc.Evaluate(context.Background(), AnalyzeCommand{URL: "https://example.com", Screenshot: "b3ZlcnJpZGU="})
	require.NoError(t, err)
	assert.Equal(t, "b3ZlcnJpZGU=", vision.seen)
}

func TestAnalyzeInvalidURL(t *testing.T) {
	svc, repo, _, _ := newService()
	for _, u := range []string{"", "not a url", "ftp://example.com", "https://"} {
		_, err := svc.Analyze(context.Background(), AnalyzeCommand{URL: u})
		assert.ErrorIs(t, err, domain.ErrInvalidURL, u)
	}
	assert.Empty(t, repo.saved)
}

func TestAnalyzeCaptureFailureIsRecorded(t *testing.T) {
	svc, repo, errs, _ := newService()
	svc.Capturer = fakeCapturer{err: errors.New("dial tcp: connection refused")}

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	assert.ErrorIs(t, err, domain.ErrCapture)
	assert.Empty(t, repo.saved)
	require.Len(t, errs.saved, 1)
	assert.Equal(t, scanerrors.PhaseCapture, errs.saved[0].Phase)
	assert.Equal(t, "https://example.com", errs.saved[0].URL)
}

func TestAnalyzePersistFailureIsRecorded(t *testing.T) {
	svc, repo, errs, _ := newService()
	repo.err = errors.New("db down")

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	assert.ErrorContains(t, err, "db down")
	require.Len(t, errs.saved, 1)
	assert.Equal(t, scanerrors.PhasePersist, errs.saved[0].Phase)
}

func TestEvaluateWithoutScreenshotUsesDefaultVision(t *testing.T) {
	svc, _, _, _ := newService()
	svc.Capturer = fakeCapturer{page: capture.Page{HTML: page}}

	scan, err := svc.Evaluate(context.Background(), AnalyzeCommand{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, providers.Defaulted(providers.ReasonNoScreenshot), scan.Providers.Vision)
	assert.Equal(t, 70, scan.Scores.VisualClarity)
	assert.Equal(t, 20, scan.Scores.Readability)
}

func TestFailedAnalysesWithoutRepository(t *testing.T) {
	svc, _, _, _ := newService()
	svc.Errors = nil
	got, err := svc.FailedAnalyses(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
