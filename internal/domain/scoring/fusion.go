package scoring

import (
	"math"

	"github.com/bryanwahyu/visiai/internal/domain/accessibility"
	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/readability"
	"github.com/bryanwahyu/visiai/internal/domain/scans"
)

// Dimension weights of the overall score. They sum to 1 so a uniform input
// is returned unchanged.
const (
	WeightVisualClarity = 0.20
	WeightAccessibility = 0.30
	WeightReadability   = 0.20
	WeightPerformance   = 0.15
	WeightUX            = 0.15
)

// Thresholds on the accessibility dimension.
const (
	PassAAThreshold      = 70
	PassAAAThreshold     = 85
	KeyboardNavThreshold = 75

	MaxHeatmapIntensity = 1.0
)

// Dimensions are the unrounded inputs of the overall score.
type Dimensions struct {
	VisualClarity float64
	Accessibility float64
	Readability   float64
	Performance   float64
	UX            float64
}

func (d Dimensions) clamped() Dimensions {
	return Dimensions{
		VisualClarity: Clamp(d.VisualClarity),
		Accessibility: Clamp(d.Accessibility),
		Readability:   Clamp(d.Readability),
		Performance:   Clamp(d.Performance),
		UX:            Clamp(d.UX),
	}
}

// Overall is the rounded weighted sum of the clamped dimensions.
func Overall(d Dimensions) int {
	c := d.clamped()
	sum := WeightVisualClarity*c.VisualClarity +
		WeightAccessibility*c.Accessibility +
		WeightReadability*c.Readability +
		WeightPerformance*c.Performance +
		WeightUX*c.UX
	return int(math.Round(Clamp(sum)))
}

// FusionInput carries every analyzer result of one page.
type FusionInput struct {
	URL           string
	Audit         providers.AuditResult
	Vision        providers.VisionResult
	UX            providers.UXResult
	Readability   readability.Result
	Accessibility accessibility.Result
}

// AccessibilityScore is the audit accessibility score, the default record's
// score included. The heuristic result only feeds the accessibility metrics.
func AccessibilityScore(in FusionInput) float64 {
	return float64(in.Audit.AccessibilityScore)
}

// Fuse merges the analyzer results into one scan record. ID, timestamp and
// screenshot are left for the caller.
func Fuse(in FusionInput) scans.Scan {
	d := Dimensions{
		VisualClarity: in.Vision.ClarityScore,
		Accessibility: AccessibilityScore(in),
		Readability:   float64(in.Readability.Score),
		Performance:   float64(in.Audit.PerformanceScore),
		UX:            float64(in.UX.Score),
	}.clamped()

	auditIssues := nonNil(in.Audit.Issues)
	a11yIssues := dedupe(append(append([]string{}, auditIssues...), in.Accessibility.Issues...))

	zones := in.Vision.AttentionZones
	if zones == nil {
		zones = []providers.AttentionZone{}
	}

	return scans.Scan{
		URL: in.URL,
		Scores: scans.Scores{
			VisualClarity: round(d.VisualClarity),
			Accessibility: round(d.Accessibility),
			Readability:   round(d.Readability),
			ReimagineUX:   round(d.UX),
			FocusAccuracy: round(d.Performance),
			Overall:       Overall(d),
		},
		Metrics: scans.Metrics{
			ColorContrast: scans.ColorContrast{
				PassAA:  d.Accessibility > PassAAThreshold,
				PassAAA: d.Accessibility > PassAAAThreshold,
				Issues:  auditIssues,
			},
			TextReadability: scans.TextReadability{
				FleschScore: in.Readability.FleschScore,
				GradeLevel:  in.Readability.GradeLevel,
				Issues:      nonNil(in.Readability.Issues),
			},
			Accessibility: scans.AccessibilityMetrics{
				MissingAlt:     in.Accessibility.MissingAlt,
				AriaIssues:     in.Accessibility.AriaIssues,
				KeyboardNav:    d.Accessibility > KeyboardNavThreshold,
				HeuristicScore: in.Accessibility.Score,
				Issues:         a11yIssues,
			},
			ReimagineWeb: in.UX.Metrics,
			Lighthouse: scans.Lighthouse{
				Performance:   in.Audit.PerformanceScore,
				Accessibility: in.Audit.AccessibilityScore,
				BestPractices: in.Audit.BestPracticesScore,
				SEO:           in.Audit.SEOScore,
			},
			UXInsights: nonNil(in.UX.Insights),
		},
		AIAnalysis: scans.AIAnalysis{
			VisualIssues:   nonNil(in.Vision.VisualIssues),
			LayoutProblems: nonNil(in.Vision.LayoutProblems),
			AttentionZones: zones,
			ClarityScore:   in.Vision.ClarityScore,
			Provider:       in.Vision.Provider,
		},
		Recommendations: Recommend(RecommendationInput{
			AccessibilityScore:  d.Accessibility,
			AccessibilityIssues: auditIssues,
			ReadabilityScore:    d.Readability,
			VisualIssues:        in.Vision.VisualIssues,
		}),
		Heatmap: scans.Heatmap{Zones: zones, MaxIntensity: MaxHeatmapIntensity},
		Providers: scans.ProviderOutcomes{
			Audit:  in.Audit.Outcome,
			Vision: in.Vision.Outcome,
			UX:     in.UX.Outcome,
		},
	}
}

// Clamp bounds a score to [0,100]; NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func round(v float64) int { return int(math.Round(v)) }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
