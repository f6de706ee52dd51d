// Package moderation decides textual compliance by calling a signed remote
// text-moderation endpoint.
//
// Long text is split into fixed-size chunks, each submitted as its own
// signed call; the verdict is the AND over all chunks. Every failure mode
// (transport error, bad status, malformed response) fails closed: the text
// is treated as non-compliant, logged, never fatal.
package moderation

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultChunkSize is the maximum text length (in runes) per moderation call.
const DefaultChunkSize = 600

// DefaultEndpoint is the moderation service endpoint.
const DefaultEndpoint = "https://green-cip.cn-shanghai.aliyuncs.com"

// ErrMissingCredentials is returned by New when the access key pair is not
// configured. This is the one fatal precondition in the whole pipeline.
var ErrMissingCredentials = errors.New("moderation: access key id and secret are required")

// Config configures the Client.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Timeout         time.Duration // per-request. Default: 10s.
	ChunkSize       int           // runes per call. Default: 600.
}

func (c *Config) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
}

// Client calls the remote moderation endpoint.
type Client struct {
	endpoint  string
	keyID     string
	keySecret string
	chunkSize int
	client    *http.Client
	logger    *slog.Logger

	// Injectable for deterministic signing tests.
	now      func() time.Time
	newNonce func() string
}

// New creates a Client. Fails fast when credentials are absent, before any
// network activity.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, ErrMissingCredentials
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		keyID:     cfg.AccessKeyID,
		keySecret: cfg.AccessKeySecret,
		chunkSize: cfg.ChunkSize,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
		now:       time.Now,
		newNonce:  uuid.NewString,
	}, nil
}

// IsCompliant reports whether text passes moderation. Empty text is
// trivially compliant with no network call. All error paths collapse to
// false here, at the boundary; checkChunk itself keeps them explicit.
func (c *Client) IsCompliant(ctx context.Context, text string) bool {
	if text == "" {
		return true
	}
	for i, chunk := range splitChunks(text, c.chunkSize) {
		ok, err := c.checkChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn("moderation: chunk check failed closed",
				"chunk", i, "error", err)
			return false
		}
		if !ok {
			c.logger.Info("moderation: chunk flagged non-compliant", "chunk", i)
			return false
		}
	}
	return true
}

// splitChunks slices text into contiguous rune windows of at most size,
// preserving order. The final chunk may be shorter.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// checkChunk submits one chunk to the endpoint and returns its verdict.
// The error is never swallowed here so the fail-closed policy stays
// observable to callers and tests.
func (c *Client) checkChunk(ctx context.Context, chunk string) (bool, error) {
	params, err := c.buildParams(chunk)
	if err != nil {
		return false, err
	}

	query := canonicalize(params)
	signature := c.sign(stringToSign(http.MethodPost, query))
	query += "&Signature=" + popEncode(signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+query, nil)
	if err != nil {
		return false, fmt.Errorf("moderation: new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("moderation: http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("moderation: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("moderation: http %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Data *struct {
			RiskLevel string `json:"RiskLevel"`
		} `json:"Data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("moderation: json decode: %w", err)
	}
	if result.Data == nil {
		return false, fmt.Errorf("moderation: response missing Data envelope: %s", truncate(string(body), 200))
	}

	// Only an explicit high risk level is non-compliant; absent or any
	// other value passes.
	return strings.ToLower(result.Data.RiskLevel) != "high", nil
}

// buildParams assembles the signable parameter map for one chunk.
func (c *Client) buildParams(chunk string) (map[string]string, error) {
	service, err := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: chunk})
	if err != nil {
		return nil, fmt.Errorf("moderation: marshal service parameters: %w", err)
	}
	return map[string]string{
		"Format":            "JSON",
		"Version":           "2022-03-02",
		"AccessKeyId":       c.keyID,
		"SignatureMethod":   "HMAC-SHA1",
		"Timestamp":         c.now().UTC().Format("2006-01-02T15:04:05Z"),
		"SignatureVersion":  "1.0",
		"SignatureNonce":    c.newNonce(),
		"Action":            "TextModerationPlus",
		"Service":           "comment_detection_pro",
		"ServiceParameters": string(service),
	}, nil
}

// sign computes the base64 HMAC-SHA1 over the string-to-sign, keyed by the
// account secret plus a trailing ampersand.
func (c *Client) sign(toSign string) string {
	mac := hmac.New(sha1.New, []byte(c.keySecret+"&"))
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
