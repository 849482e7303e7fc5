package providers

import "context"

// Source tells where a provider result came from.
type Source string

const (
	SourceLive      Source = "live"
	SourceCache     Source = "cache"
	SourceDefault   Source = "default"
	SourceSynthetic Source = "synthetic"
)

// Fallback reasons shared by the adapters.
const (
	ReasonMissingKey    = "missing credentials"
	ReasonTimeout       = "timeout"
	ReasonUnavailable   = "provider unavailable"
	ReasonBadStatus     = "non-2xx response"
	ReasonMalformed     = "malformed response"
	ReasonCircuitOpen   = "circuit open"
	ReasonNoScreenshot  = "no screenshot"
	ReasonEmptyResponse = "empty response"
)

// Outcome is attached to every provider result: either live data or a
// documented default together with the reason it was used.
type Outcome struct {
	Source Source `json:"source"`
	Reason string `json:"reason,omitempty"`
}

// Live reports an outcome backed by real provider data.
func Live() Outcome { return Outcome{Source: SourceLive} }

// Defaulted builds a default-record outcome.
func Defaulted(reason string) Outcome { return Outcome{Source: SourceDefault, Reason: reason} }

// Synthetic builds an outcome for generated data.
func Synthetic(reason string) Outcome { return Outcome{Source: SourceSynthetic, Reason: reason} }

// IsFallback is true when the result is not backed by provider data.
func (o Outcome) IsFallback() bool {
	return o.Source == SourceDefault || o.Source == SourceSynthetic
}

// Auditor runs a third-party page audit. Implementations never fail: they
// return the default audit record instead.
type Auditor interface {
	Audit(ctx context.Context, url string) AuditResult
}

// VisionAnalyzer scores a screenshot with a vision model.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, screenshot string) VisionResult
}

// UXProvider returns secondary UX metrics for a URL.
type UXProvider interface {
	Analyze(ctx context.Context, url string) UXResult
}
