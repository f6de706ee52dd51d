package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ListingSource reads a catalog exposed as a single GET returning
// {"data": [...]}. Only items with status "published" are consumed.
type ListingSource struct {
	url       string
	client    *http.Client
	logger    *slog.Logger
	userAgent string
}

// NewListingSource creates an adapter for the full-list catalog.
func NewListingSource(url string, cfg Config, logger *slog.Logger) *ListingSource {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingSource{
		url:       url,
		client:    cfg.client(),
		logger:    logger,
		userAgent: cfg.UserAgent,
	}
}

type listingItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Author  struct {
		Name string `json:"name"`
	} `json:"author"`
	Tags []string `json:"tags"`
}

// Fetch pulls the full listing in one call. A failure yields an empty slice
// after a log line.
func (s *ListingSource) Fetch(ctx context.Context) []Record {
	items, err := s.fetchAll(ctx)
	if err != nil {
		s.logger.Warn("listing catalog: fetch failed", "error", err)
		return nil
	}

	records := make([]Record, 0, len(items))
	for _, msg := range items {
		var item listingItem
		if err := json.Unmarshal(msg, &item); err != nil {
			continue
		}
		if item.Status != "published" {
			continue
		}
		records = append(records, item.record())
	}
	s.logger.Info("listing catalog: fetch complete", "records", len(records))
	return records
}

func (s *ListingSource) fetchAll(ctx context.Context) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: new request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("catalog: json decode: %w", err)
	}
	return envelope.Data, nil
}

func (it listingItem) record() Record {
	r := Record{
		Title:   it.Title,
		Content: it.Content,
		Author:  it.Author.Name,
		Tags:    it.Tags,
	}
	if r.Title == "" {
		r.Title = UntitledTitle
	}
	if r.Content == "" {
		r.Content = MissingContent
	}
	if r.Author == "" {
		r.Author = AnonymousAuthor
	}
	return r
}
