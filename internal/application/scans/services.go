package scans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/visiai/internal/application"
	"github.com/bryanwahyu/visiai/internal/domain/accessibility"
	"github.com/bryanwahyu/visiai/internal/domain/capture"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/readability"
	"github.com/bryanwahyu/visiai/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
	"github.com/bryanwahyu/visiai/internal/domain/scoring"
)

// Recorder receives pipeline metrics. Optional.
type Recorder interface {
	ObserveAnalysis(status string, d time.Duration)
	ProviderFallback(provider string, source providers.Source)
}

// Service implements use-cases untuk Scan
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo        domain.Repository
	Errors      scanerrors.Repository // optional
	Capturer    capture.Capturer
	Auditor     providers.Auditor
	Vision      providers.VisionAnalyzer
	UX          providers.UXProvider
	Screenshots domain.ScreenshotStore // optional, screenshots stay inline without it
	Clock       application.Clock
	Metrics     Recorder // optional
}

//
// ==== USE CASES ====
//

// Command untuk analisa satu halaman
type AnalyzeCommand struct {
	URL string
	// Screenshot overrides the captured image (base64 or data URI).
	Screenshot string
}

// Evaluate runs the whole analysis pipeline without persisting anything.
func (s *Service) Evaluate(ctx context.Context, cmd AnalyzeCommand) (*domain.Scan, error) {
	target, err := ValidateTarget(cmd.URL)
	if err != nil {
		return nil, err
	}
	log := logrus.WithField("url", target)

	page, err := s.Capturer.Capture(ctx, target)
	if err != nil {
		s.recordError(ctx, target, scanerrors.PhaseCapture, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCapture, err)
	}
	if cmd.Screenshot != "" {
		page.Screenshot = cmd.Screenshot
	}
	log.WithFields(logrus.Fields{"chars": len(page.Text), "screenshot": page.Screenshot != ""}).Info("page captured")

	// provider calls run on their own deadlines, not the caller's
	pctx := context.WithoutCancel(ctx)
	var (
		wg     sync.WaitGroup
		audit  providers.AuditResult
		vision providers.VisionResult
		ux     providers.UXResult
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		audit = s.Auditor.Audit(pctx, target)
	}()
	go func() {
		defer wg.Done()
		vision = s.Vision.Analyze(pctx, page.Screenshot)
	}()
	go func() {
		defer wg.Done()
		ux = s.UX.Analyze(pctx, target)
	}()

	read := readability.Analyze(page.Text)
	a11y := accessibility.AnalyzeHTML(page.HTML, page.Elements)
	wg.Wait()

	s.countFallback("audit", audit.Outcome)
	s.countFallback("vision", vision.Outcome)
	s.countFallback("ux", ux.Outcome)

	scan := scoring.Fuse(scoring.FusionInput{
		URL:           target,
		Audit:         audit,
		Vision:        vision,
		UX:            ux,
		Readability:   read,
		Accessibility: a11y,
	})
	scan.ID = domain.ScanID(uuid.New().String())
	scan.Timestamp = s.now()
	scan.Screenshot = page.Screenshot

	log.WithFields(logrus.Fields{
		"visual":        scan.Scores.VisualClarity,
		"accessibility": scan.Scores.Accessibility,
		"readability":   scan.Scores.Readability,
		"performance":   scan.Scores.FocusAccuracy,
		"ux":            scan.Scores.ReimagineUX,
		"overall":       scan.Scores.Overall,
	}).Info("scores computed")
	return &scan, nil
}

// Analyze evaluates a page, stores its screenshot and persists the record.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Scan, error) {
	start := time.Now()
	scan, err := s.Evaluate(ctx, cmd)
	if err != nil {
		s.observe("failed", start)
		return nil, err
	}

	if s.Screenshots != nil && scan.Screenshot != "" {
		key := fmt.Sprintf("scans/%s%s", scan.ID, screenshotExt(scan.Screenshot))
		if u, err := s.Screenshots.UploadScreenshot(ctx, key, scan.Screenshot); err != nil {
			logrus.WithError(err).WithField("scan_id", scan.ID).Warn("screenshot upload failed, storing inline")
		} else {
			scan.Screenshot = u
		}
	}

	if err := s.Repo.Save(ctx, scan); err != nil {
		s.recordError(ctx, scan.URL, scanerrors.PhasePersist, err)
		s.observe("failed", start)
		return nil, fmt.Errorf("saving scan: %w", err)
	}
	s.observe("success", start)
	logrus.WithField("scan_id", scan.ID).WithField("url", scan.URL).Info("scan saved")
	return scan, nil
}

// List ambil halaman hasil scan, terbaru dulu
func (s *Service) List(ctx context.Context, page, pageSize int, includeScreenshot bool) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, page, pageSize, includeScreenshot)
}

// Get ambil 1 scan by id
func (s *Service) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id domain.ScanID) error {
	return s.Repo.Delete(ctx, id)
}

// FailedAnalyses lists recorded failures, optionally for one URL.
func (s *Service) FailedAnalyses(ctx context.Context, url string, limit int) ([]*scanerrors.ScanError, error) {
	if s.Errors == nil {
		return []*scanerrors.ScanError{}, nil
	}
	return s.Errors.ListByURL(ctx, url, limit)
}

// ValidateTarget accepts absolute http(s) URLs only.
func ValidateTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", domain.ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}
	return u.String(), nil
}

// helper
func (s *Service) recordError(ctx context.Context, target, phase string, cause error) {
	if s.Errors == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{"error": cause.Error()})
	e := &scanerrors.ScanError{
		URL:         target,
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.now(),
	}
	if err := s.Errors.Save(context.WithoutCancel(ctx), e); err != nil {
		logrus.WithError(err).WithField("url", target).Warn("failed to record scan error")
	}
}

func (s *Service) countFallback(provider string, o providers.Outcome) {
	if !o.IsFallback() {
		return
	}
	logrus.WithFields(logrus.Fields{"provider": provider, "source": o.Source, "reason": o.Reason}).Info("provider fell back")
	if s.Metrics != nil {
		s.Metrics.ProviderFallback(provider, o.Source)
	}
}

func (s *Service) observe(status string, start time.Time) {
	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(status, time.Since(start))
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func screenshotExt(dataURI string) string {
	switch {
	case strings.HasPrefix(dataURI, "data:image/png"):
		return ".png"
	case strings.HasPrefix(dataURI, "data:image/webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
