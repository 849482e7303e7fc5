// Package db holds the column mapping shared by the SQL repositories.
package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/visiai/internal/domain/scans"
)

// ScanColumns is a scan flattened to SQL columns; nested documents are JSON.
type ScanColumns struct {
	ID              string
	URL             string
	CreatedAt       time.Time
	Screenshot      string
	VisualClarity   int
	Accessibility   int
	Readability     int
	ReimagineUX     int
	FocusAccuracy   int
	Overall         int
	Metrics         []byte
	AIAnalysis      []byte
	Recommendations []byte
	Heatmap         []byte
	Providers       []byte
}

// Args returns the columns in insert order.
func (c *ScanColumns) Args() []any {
	return []any{
		c.ID, c.URL, c.CreatedAt, c.Screenshot,
		c.VisualClarity, c.Accessibility, c.Readability, c.ReimagineUX, c.FocusAccuracy, c.Overall,
		c.Metrics, c.AIAnalysis, c.Recommendations, c.Heatmap, c.Providers,
	}
}

// Dest returns scan destinations in the same order as Args.
func (c *ScanColumns) Dest() []any {
	return []any{
		&c.ID, &c.URL, &c.CreatedAt, &c.Screenshot,
		&c.VisualClarity, &c.Accessibility, &c.Readability, &c.ReimagineUX, &c.FocusAccuracy, &c.Overall,
		&c.Metrics, &c.AIAnalysis, &c.Recommendations, &c.Heatmap, &c.Providers,
	}
}

// ColumnList names the columns of the scans table in Args order.
const ColumnList = "id, url, created_at, screenshot, " +
	"score_visual_clarity, score_accessibility, score_readability, score_reimagine_ux, score_focus_accuracy, score_overall, " +
	"metrics, ai_analysis, recommendations, heatmap, providers"

// SelectList is ColumnList with the screenshot optionally blanked out.
func SelectList(includeScreenshot bool) string {
	if includeScreenshot {
		return ColumnList
	}
	return strings.Replace(ColumnList, "screenshot", "'' AS screenshot", 1)
}

func EncodeScan(s *scans.Scan) (*ScanColumns, error) {
	c := &ScanColumns{
		ID:            string(s.ID),
		URL:           s.URL,
		CreatedAt:     s.Timestamp,
		Screenshot:    s.Screenshot,
		VisualClarity: s.Scores.VisualClarity,
		Accessibility: s.Scores.Accessibility,
		Readability:   s.Scores.Readability,
		ReimagineUX:   s.Scores.ReimagineUX,
		FocusAccuracy: s.Scores.FocusAccuracy,
		Overall:       s.Scores.Overall,
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var err error
	if c.Metrics, err = json.Marshal(s.Metrics); err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	if c.AIAnalysis, err = json.Marshal(s.AIAnalysis); err != nil {
		return nil, fmt.Errorf("encode ai analysis: %w", err)
	}
	recs := s.Recommendations
	if recs == nil {
		recs = []string{}
	}
	if c.Recommendations, err = json.Marshal(recs); err != nil {
		return nil, fmt.Errorf("encode recommendations: %w", err)
	}
	if c.Heatmap, err = json.Marshal(s.Heatmap); err != nil {
		return nil, fmt.Errorf("encode heatmap: %w", err)
	}
	if c.Providers, err = json.Marshal(s.Providers); err != nil {
		return nil, fmt.Errorf("encode providers: %w", err)
	}
	return c, nil
}

func (c *ScanColumns) Decode() (*scans.Scan, error) {
	s := &scans.Scan{
		ID:         scans.ScanID(c.ID),
		URL:        c.URL,
		Timestamp:  c.CreatedAt,
		Screenshot: c.Screenshot,
		Scores: scans.Scores{
			VisualClarity: c.VisualClarity,
			Accessibility: c.Accessibility,
			Readability:   c.Readability,
			ReimagineUX:   c.ReimagineUX,
			FocusAccuracy: c.FocusAccuracy,
			Overall:       c.Overall,
		},
	}
	docs := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"metrics", c.Metrics, &s.Metrics},
		{"ai_analysis", c.AIAnalysis, &s.AIAnalysis},
		{"recommendations", c.Recommendations, &s.Recommendations},
		{"heatmap", c.Heatmap, &s.Heatmap},
		{"providers", c.Providers, &s.Providers},
	}
	for _, d := range docs {
		if len(d.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.name, err)
		}
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}
	return s, nil
}

// NormalizeDetails keeps details_json valid JSON; anything else is wrapped.
func NormalizeDetails(details string) string {
	if strings.TrimSpace(details) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(details), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}

// StringOrDash returns "-" when the input is empty/whitespace
func StringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Page normalizes paging input and returns the offset.
func Page(page, pageSize int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}
