// Package catalog fetches prompt listings from the two upstream markets.
//
// Both adapters share the same contract: fetch failures are logged and
// treated as end-of-data, never propagated. A partial harvest is a valid
// harvest; the pipeline works with whatever survived.
package catalog

import (
	"net/http"
	"time"
)

// AnonymousAuthor is the canonical marker for listings without a real author.
// Both catalogs normalize their own "no author" representations to it, and
// the merge engine treats it as overridable by any named author.
const AnonymousAuthor = "匿名用户"

// Fallback field values for items that omit them upstream.
const (
	UntitledTitle  = "无标题"
	MissingContent = "无内容"
)

// Record is one prompt listing as received from a catalog, after field
// mapping. Immutable once produced; tag order is the upstream order.
type Record struct {
	Title   string
	Author  string
	Tags    []string
	Content string
}

// Config holds the HTTP settings shared by both catalog adapters.
type Config struct {
	Timeout   time.Duration // per-request timeout. Default: 10s.
	UserAgent string
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "promptdex/1.0"
	}
}

func (c Config) client() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}
