package providers

// UXMetrics is the metrics bundle of the secondary UX provider.
type UXMetrics struct {
	LayoutScore      int     `json:"layoutScore"`
	NavigationScore  int     `json:"navigationScore"`
	VisualBalance    int     `json:"visualBalance"`
	MobileFriendly   bool    `json:"mobileFriendly"`
	LoadTime         float64 `json:"loadTime"`
	Responsiveness   int     `json:"responsiveness"`
	ContentHierarchy int     `json:"contentHierarchy"`
	ColorConsistency int     `json:"colorConsistency"`
	TypographyScore  int     `json:"typographyScore"`
}

// UXResult is a bounded UX score with an always-present metrics payload.
type UXResult struct {
	Score    int       `json:"score"`
	Metrics  UXMetrics `json:"metrics"`
	Insights []string  `json:"insights"`
	Outcome  Outcome   `json:"outcome"`
}
