package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/infra/breaker"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	DefaultTimeout = 60 * time.Second

	providerName = "pagespeed"
	apiKeyHeader = "X-Goog-Api-Key"
	maxBodyBytes = 16 << 20
)

var categories = []string{"performance", "accessibility", "best-practices", "seo"}

var (
	errBadStatus = errors.New("unexpected status")
	errMalformed = errors.New("malformed response")
)

// Config for the PageSpeed Insights client. An empty APIKey disables the
// live call and every audit returns the default record.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Breaker breaker.Settings
}

// Client audits pages with Google PageSpeed Insights (Lighthouse).
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		http:    httpClient,
		cb:      breaker.New(providerName, cfg.Breaker),
	}
}

// Audit never fails: every problem yields the default record with a reason.
func (c *Client) Audit(ctx context.Context, target string) providers.AuditResult {
	log := logrus.WithField("provider", providerName).WithField("url", target)
	if c.apiKey == "" {
		log.Warn("audit api key not configured, using default audit")
		return providers.DefaultAudit(providers.ReasonMissingKey)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, target)
	})
	if err != nil {
		reason := breaker.Reason(err, reasonFor(err))
		log.WithError(err).WithField("reason", reason).Warn("audit failed, using default audit")
		return providers.DefaultAudit(reason)
	}
	res := out.(providers.AuditResult)
	log.WithFields(logrus.Fields{
		"accessibility": res.AccessibilityScore,
		"performance":   res.PerformanceScore,
		"issues":        len(res.Issues),
	}).Debug("audit completed")
	return res
}

func (c *Client) fetch(ctx context.Context, target string) (providers.AuditResult, error) {
	q := url.Values{}
	q.Set("url", target)
	for _, cat := range categories {
		q.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return providers.AuditResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return providers.AuditResult{}, fmt.Errorf("call pagespeed: %w", redact(err, c.baseURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return providers.AuditResult{}, fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return providers.AuditResult{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if body.Lighthouse == nil {
		return providers.AuditResult{}, fmt.Errorf("%w: no lighthouseResult", errMalformed)
	}
	return body.Lighthouse.result(), nil
}

// redact drops the query string from transport errors so request
// parameters never reach the logs.
func redact(err error, base string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = base
	}
	return err
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, errBadStatus):
		return providers.ReasonBadStatus
	case errors.Is(err, errMalformed):
		return providers.ReasonMalformed
	default:
		return providers.ReasonUnavailable
	}
}

type response struct {
	Lighthouse *lighthouseResult `json:"lighthouseResult"`
}

type scored struct {
	Score *float64 `json:"score"`
}

type lighthouseResult struct {
	Categories map[string]scored `json:"categories"`
	Audits     map[string]scored `json:"audits"`
}

func (l *lighthouseResult) result() providers.AuditResult {
	res := providers.AuditResult{
		AccessibilityScore: l.category("accessibility"),
		PerformanceScore:   l.category("performance"),
		BestPracticesScore: l.category("best-practices"),
		SEOScore:           l.category("seo"),
		Issues:             []string{},
		Outcome:            providers.Live(),
	}
	for _, check := range providers.AuditChecks {
		a, ok := l.Audits[check.ID]
		if ok && a.Score != nil && *a.Score < 1 {
			res.Issues = append(res.Issues, check.Issue)
		}
	}
	return res
}

// category scores are 0..1; a missing or null category counts as 0.
func (l *lighthouseResult) category(name string) int {
	c, ok := l.Categories[name]
	if !ok || c.Score == nil {
		return 0
	}
	v := math.Round(*c.Score * 100)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
