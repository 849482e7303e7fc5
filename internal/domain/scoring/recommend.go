package scoring

// MaxRecommendations caps the recommendation list.
const MaxRecommendations = 10

// RecommendationInput is what the rule cascade looks at.
type RecommendationInput struct {
	AccessibilityScore  float64
	AccessibilityIssues []string
	ReadabilityScore    float64
	VisualIssues        []string
}

var bestPractices = []string{
	"Ensure all images have descriptive alt text",
	"Add skip navigation links for keyboard users",
	"Test with keyboard navigation only",
	"Validate HTML and CSS for errors",
	"Optimize images for faster loading",
	"Ensure CTA buttons are 44x44px minimum",
}

// Recommend builds an ordered, duplicate-free list of at most
// MaxRecommendations entries, most severe first.
func Recommend(in RecommendationInput) []string {
	var recs []string

	if in.AccessibilityScore < 80 {
		issues := in.AccessibilityIssues
		if len(issues) > 3 {
			issues = issues[:3]
		}
		recs = append(recs, issues...)
		recs = append(recs, "Review WCAG 2.1 accessibility guidelines")
	}
	if in.AccessibilityScore < 60 {
		recs = append(recs,
			"Conduct full accessibility audit with axe DevTools",
			"Test with screen readers (NVDA, JAWS)",
		)
	}

	if in.ReadabilityScore < 60 {
		recs = append(recs,
			"Simplify complex sentences for better readability",
			"Break long paragraphs into shorter chunks (3-4 sentences)",
			"Use bullet points to improve content scanability",
		)
	}
	if in.ReadabilityScore < 40 {
		recs = append(recs, "Consider rewriting content for a general audience")
	}

	if len(in.VisualIssues) > 0 {
		recs = append(recs,
			"Increase contrast between text and background",
			"Ensure consistent spacing and alignment throughout",
			"Improve visual hierarchy with clear heading structure",
		)
	}

	recs = append(recs, bestPractices...)
	return truncate(dedupe(recs), MaxRecommendations)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func truncate(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
