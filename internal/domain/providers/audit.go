package providers

// DefaultAuditScore is used for every category when the audit is unavailable.
const DefaultAuditScore = 70

// AuditResult holds normalized page-audit category scores and issues.
type AuditResult struct {
	AccessibilityScore int      `json:"accessibilityScore"`
	PerformanceScore   int      `json:"performanceScore"`
	BestPracticesScore int      `json:"bestPracticesScore"`
	SEOScore           int      `json:"seoScore"`
	Issues             []string `json:"accessibilityIssues"`
	Outcome            Outcome  `json:"outcome"`
}

// AuditCheck maps a named sub-audit to the issue reported when it fails.
type AuditCheck struct {
	ID    string
	Issue string
}

// AuditChecks are inspected in this order when building the issue list.
var AuditChecks = []AuditCheck{
	{ID: "color-contrast", Issue: "Low color contrast - fails WCAG standards"},
	{ID: "image-alt", Issue: "Missing alt text on images"},
	{ID: "aria-allowed-attr", Issue: "Invalid ARIA attributes detected"},
	{ID: "aria-required-attr", Issue: "Missing required ARIA attributes"},
	{ID: "form-field-multiple-labels", Issue: "Form fields missing proper labels"},
	{ID: "label", Issue: "Form inputs without associated labels"},
	{ID: "link-name", Issue: "Links without descriptive text"},
	{ID: "document-title", Issue: "Page missing document title"},
}

// DefaultAudit is the safe fallback audit record.
func DefaultAudit(reason string) AuditResult {
	return AuditResult{
		AccessibilityScore: DefaultAuditScore,
		PerformanceScore:   DefaultAuditScore,
		BestPracticesScore: DefaultAuditScore,
		SEOScore:           DefaultAuditScore,
		Issues:             []string{},
		Outcome:            Defaulted(reason),
	}
}
