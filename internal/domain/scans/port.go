package scans

import (
	"context"
	"errors"
)

var (
	// ErrInvalidURL is returned for targets that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid url")
	// ErrCapture wraps failures to fetch the target page.
	ErrCapture = errors.New("capture failed")
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, s *Scan) error
	// Get returns sql.ErrNoRows when the scan does not exist.
	Get(ctx context.Context, id ScanID) (*Scan, error)
	// Delete returns sql.ErrNoRows when the scan does not exist.
	Delete(ctx context.Context, id ScanID) error
	// Paginate lists newest first. Screenshots are left empty unless requested.
	Paginate(ctx context.Context, page, pageSize int, includeScreenshot bool) (PaginatedResult, error)
}

// ScreenshotStore port (interface untuk penyimpanan screenshot)
type ScreenshotStore interface {
	UploadScreenshot(ctx context.Context, key, dataURI string) (string, error)
}
