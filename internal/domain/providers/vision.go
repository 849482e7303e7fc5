package providers

const (
	// DefaultClarityScore is reported by the fallback vision record.
	DefaultClarityScore = 70
	// MissingClarityScore is used when a live response omits clarityScore.
	MissingClarityScore = 75
	// FallbackProvider names the provider of the fallback vision record.
	FallbackProvider = "Fallback"

	MaxVisionIssues = 5
)

// AttentionZone is one heatmap hotspot reported by the vision model.
type AttentionZone struct {
	Area      string  `json:"area"`
	Intensity float64 `json:"intensity"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// VisionResult is the normalized outcome of a screenshot analysis.
type VisionResult struct {
	VisualIssues   []string        `json:"visualIssues"`
	LayoutProblems []string        `json:"layoutProblems"`
	AttentionZones []AttentionZone `json:"attentionZones"`
	ClarityScore   float64         `json:"clarityScore"`
	Provider       string          `json:"aiProvider"`
	Outcome        Outcome         `json:"outcome"`
}

// Placeholders used when a live response lists nothing.
const (
	PlaceholderVisualIssue = "Consider improving visual hierarchy"
	PlaceholderLayoutIssue = "Ensure adequate whitespace"
	UnavailableVisualIssue = "Visual analysis unavailable - using defaults"
	UnavailableLayoutIssue = "Layout analysis unavailable - using defaults"
)

// DefaultZones returns a fresh copy of the canned attention zones.
func DefaultZones() []AttentionZone {
	return []AttentionZone{
		{Area: "header", Intensity: 0.9, X: 50, Y: 20},
		{Area: "main-content", Intensity: 0.7, X: 50, Y: 50},
		{Area: "sidebar", Intensity: 0.5, X: 80, Y: 50},
		{Area: "footer", Intensity: 0.3, X: 50, Y: 80},
	}
}

// DefaultVision is the fallback record used whenever the vision model can't
// be reached or its answer can't be parsed.
func DefaultVision(reason string) VisionResult {
	return VisionResult{
		VisualIssues:   []string{UnavailableVisualIssue},
		LayoutProblems: []string{UnavailableLayoutIssue},
		AttentionZones: DefaultZones(),
		ClarityScore:   DefaultClarityScore,
		Provider:       FallbackProvider,
		Outcome:        Defaulted(reason),
	}
}
