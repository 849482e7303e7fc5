package capture

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	ErrInternalHost = errors.New("localhost/internal IPs are not allowed")
	ErrPrivateRange = errors.New("private IP ranges are not allowed")
)

// CheckTarget accepts absolute http(s) URLs whose host is not internal.
func CheckTarget(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (allowed: http, https)", u.Scheme)
	}
	return CheckHost(u.Hostname())
}

// CheckHost rejects localhost names and loopback, private or link-local
// literals. Other names are not resolved.
func CheckHost(host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return fmt.Errorf("URL must include a host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrInternalHost
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsUnspecified() {
			return ErrInternalHost
		}
		if ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return ErrPrivateRange
		}
	}
	return nil
}
