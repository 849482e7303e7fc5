package scanerrors

import (
	"context"
)

// Repository defines persistence for scan errors
type Repository interface {
	Save(ctx context.Context, e *ScanError) error
	// ListByURL returns newest first; an empty url lists every entry.
	ListByURL(ctx context.Context, url string, limit int) ([]*ScanError, error)
}
