// Package safeurl validates operator-configured endpoint URLs before any
// network activity, so a typoed config fails at startup instead of being
// logged away as a benign fetch failure.
package safeurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("safeurl: only http and https schemes are allowed")

// ErrNoHost is returned when a URL has no hostname.
var ErrNoHost = errors.New("safeurl: URL has no host")

// Validate checks that rawURL parses, uses http or https, and names a host.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safeurl: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	if u.Hostname() == "" {
		return ErrNoHost
	}
	return nil
}
