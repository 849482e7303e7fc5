package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	ClientKey contextKey = "client"
)

// exempt paths are reachable without credentials (health checks, scrapers)
func exempt(path string) bool {
	return path == "/api/health" || path == "/metrics" || strings.HasPrefix(path, "/healthz/")
}

// APIKeyAuth validates the API key from the Authorization or X-API-Key header.
// validKeys maps a client name to its key; an empty map disables auth.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Support "Bearer <key>", "<key>" and X-API-Key
			apiKey := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if apiKey == "" {
				apiKey = strings.TrimSpace(r.Header.Get("X-API-Key"))
			}
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			// constant-time comparison, no early exit on match
			var client string
			for name, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					client = name
				}
			}
			if client == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext extracts the authenticated client name
func GetClientFromContext(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}
