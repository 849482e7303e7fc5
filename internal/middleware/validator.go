package middleware

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/visiai/internal/domain/capture"
)

// Input validation and sanitization utilities

// ValidateURL validates a scan target and blocks internal hosts (SSRF).
// Only literal addresses are checked; names other than localhost are not resolved.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	return capture.CheckTarget(u)
}

// ValidateScanID accepts the UUIDs assigned to stored scans
func ValidateScanID(scanID string) error {
	if scanID == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if _, err := uuid.Parse(scanID); err != nil {
		return fmt.Errorf("invalid scan ID format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates the 1-based page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
