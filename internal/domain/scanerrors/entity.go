package scanerrors

import "time"

// Phases in which an analysis can fail fatally.
const (
	PhaseCapture = "capture"
	PhasePersist = "persist"
)

// ScanError represents a persisted failed-analysis entry
type ScanError struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Phase       string    `json:"phase"` // capture | persist
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
