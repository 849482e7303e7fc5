package scans

import (
	"time"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

// ID tipe untuk Scan
type ScanID string

// Scores holds the five dimension scores and the weighted overall score,
// every one an integer in [0,100].
type Scores struct {
	VisualClarity int `json:"visualClarity"`
	Accessibility int `json:"accessibility"`
	Readability   int `json:"readability"`
	ReimagineUX   int `json:"reimagineUX"`
	FocusAccuracy int `json:"focusAccuracy"`
	Overall       int `json:"overall"`
}

type ColorContrast struct {
	PassAA  bool     `json:"passAA"`
	PassAAA bool     `json:"passAAA"`
	Issues  []string `json:"issues"`
}

type TextReadability struct {
	FleschScore float64  `json:"fleschScore"`
	GradeLevel  string   `json:"gradeLevel"`
	Issues      []string `json:"issues"`
}

type AccessibilityMetrics struct {
	MissingAlt     int      `json:"missingAlt"`
	AriaIssues     int      `json:"ariaIssues"`
	KeyboardNav    bool     `json:"keyboardNav"`
	HeuristicScore int      `json:"heuristicScore"`
	Issues         []string `json:"issues"`
}

type Lighthouse struct {
	Performance   int `json:"performance"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"bestPractices"`
	SEO           int `json:"seo"`
}

// Metrics are the per-dimension payloads kept next to the scores.
type Metrics struct {
	ColorContrast   ColorContrast        `json:"colorContrast"`
	TextReadability TextReadability      `json:"textReadability"`
	Accessibility   AccessibilityMetrics `json:"accessibility"`
	ReimagineWeb    providers.UXMetrics  `json:"reimagineWeb"`
	Lighthouse      Lighthouse           `json:"lighthouse"`
	UXInsights      []string             `json:"uxInsights"`
}

type AIAnalysis struct {
	VisualIssues   []string                  `json:"visualIssues"`
	LayoutProblems []string                  `json:"layoutProblems"`
	AttentionZones []providers.AttentionZone `json:"attentionZones"`
	ClarityScore   float64                   `json:"clarityScore"`
	Provider       string                    `json:"aiProvider"`
}

type Heatmap struct {
	Zones        []providers.AttentionZone `json:"zones"`
	MaxIntensity float64                   `json:"maxIntensity"`
}

// ProviderOutcomes records, per external provider, whether live data or a
// fallback fed the record.
type ProviderOutcomes struct {
	Audit  providers.Outcome `json:"audit"`
	Vision providers.Outcome `json:"vision"`
	UX     providers.Outcome `json:"ux"`
}

// Aggregate Root: Scan
type Scan struct {
	ID              ScanID           `json:"id"`
	URL             string           `json:"url"`
	Timestamp       time.Time        `json:"timestamp"`
	Screenshot      string           `json:"screenshot,omitempty"`
	Scores          Scores           `json:"scores"`
	Metrics         Metrics          `json:"metrics"`
	AIAnalysis      AIAnalysis       `json:"aiAnalysis"`
	Recommendations []string         `json:"recommendations"`
	Heatmap         Heatmap          `json:"heatmapData"`
	Providers       ProviderOutcomes `json:"providers"`
}
