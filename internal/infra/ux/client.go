package ux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/infra/breaker"
)

const (
	DefaultBaseURL = "https://api.reimagine-web.dev"
	DefaultTimeout = 30 * time.Second
)

var errBadStatus = errors.New("unexpected status")

// SyntheticInsights accompany every synthesized result.
var SyntheticInsights = []string{
	"Strong navigation structure detected",
	"Good visual balance across viewport sizes",
	"Layout adapts well to different screen sizes",
	"Content hierarchy could be improved with better heading structure",
	"Consider optimizing load time for better performance",
	"Color scheme is consistent throughout the page",
	"Typography choices enhance readability",
}

var defaultInsights = []string{
	"Good overall layout structure",
	"Navigation is clear and accessible",
	"Consider improving mobile responsiveness",
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Breaker breaker.Settings
}

// Client fetches UX metrics, or synthesizes bounded ones when the service
// is not configured or fails.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewClient(cfg Config, httpClient *http.Client, rnd *rand.Rand) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    httpClient,
		cb:      breaker.New("ux", cfg.Breaker),
		rnd:     rnd,
	}
}

func (c *Client) Analyze(ctx context.Context, url string) providers.UXResult {
	log := logrus.WithField("provider", "ux").WithField("url", url)
	if c.apiKey == "" {
		log.Debug("ux api key not configured, synthesizing metrics")
		return c.Synthesize(providers.ReasonMissingKey)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		fallback := providers.ReasonUnavailable
		if errors.Is(err, errBadStatus) {
			fallback = providers.ReasonBadStatus
		}
		reason := breaker.Reason(err, fallback)
		log.WithError(err).WithField("reason", reason).Warn("ux call failed, synthesizing metrics")
		return c.Synthesize(reason)
	}
	return out.(providers.UXResult)
}

type analyzeResponse struct {
	UXScore          *float64 `json:"ux_score"`
	LayoutScore      *float64 `json:"layout_score"`
	NavigationScore  *float64 `json:"navigation_score"`
	VisualBalance    *float64 `json:"visual_balance"`
	MobileFriendly   *bool    `json:"mobile_friendly"`
	LoadTime         *float64 `json:"load_time"`
	Responsiveness   *float64 `json:"responsiveness"`
	ContentHierarchy *float64 `json:"content_hierarchy"`
	ColorConsistency *float64 `json:"color_consistency"`
	TypographyScore  *float64 `json:"typography_score"`
	Insights         []string `json:"insights"`
}

func (c *Client) fetch(ctx context.Context, url string) (providers.UXResult, error) {
	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return providers.UXResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return providers.UXResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return providers.UXResult{}, fmt.Errorf("call ux service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return providers.UXResult{}, fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode)
	}

	var data analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data); err != nil {
		return providers.UXResult{}, fmt.Errorf("decode ux response: %w", err)
	}

	insights := data.Insights
	if len(insights) == 0 {
		insights = append([]string{}, defaultInsights...)
	}
	mobile := true
	if data.MobileFriendly != nil {
		mobile = *data.MobileFriendly
	}
	loadTime := 2.5
	if data.LoadTime != nil && *data.LoadTime > 0 {
		loadTime = *data.LoadTime
	}
	return providers.UXResult{
		Score: score(data.UXScore, 75),
		Metrics: providers.UXMetrics{
			LayoutScore:      score(data.LayoutScore, 80),
			NavigationScore:  score(data.NavigationScore, 85),
			VisualBalance:    score(data.VisualBalance, 78),
			MobileFriendly:   mobile,
			LoadTime:         loadTime,
			Responsiveness:   score(data.Responsiveness, 85),
			ContentHierarchy: score(data.ContentHierarchy, 82),
			ColorConsistency: score(data.ColorConsistency, 80),
			TypographyScore:  score(data.TypographyScore, 80),
		},
		Insights: insights,
		Outcome:  providers.Live(),
	}, nil
}

// Synthesize builds pseudo-random metrics inside fixed ranges.
func (c *Client) Synthesize(reason string) providers.UXResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	between := func(lo, span float64) int {
		return int(math.Round(lo + c.rnd.Float64()*span))
	}
	return providers.UXResult{
		Score: between(75, 20),
		Metrics: providers.UXMetrics{
			LayoutScore:      between(78, 15),
			NavigationScore:  between(82, 15),
			VisualBalance:    between(75, 20),
			MobileFriendly:   c.rnd.Float64() > 0.3,
			LoadTime:         math.Round((1.5+c.rnd.Float64()*2)*10) / 10,
			Responsiveness:   between(80, 15),
			ContentHierarchy: between(75, 20),
			ColorConsistency: between(70, 25),
			TypographyScore:  between(75, 20),
		},
		Insights: append([]string{}, SyntheticInsights...),
		Outcome:  providers.Synthetic(reason),
	}
}

func score(v *float64, def int) int {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return int(math.Round(math.Max(0, math.Min(100, *v))))
}
