package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultPageSize is the fixed page size the upstream API expects.
const DefaultPageSize = 16

// DefaultPageDelay is the politeness pause between page fetches.
const DefaultPageDelay = 300 * time.Millisecond

// PagedSource reads a catalog exposed as an offset-paginated JSON API
// (GET ?skip=N&limit=16&is_r18=0). Pagination stops on the first empty
// page or the first error; an error is indistinguishable from legitimate
// end-of-data upstream, so a transient failure truncates the harvest.
type PagedSource struct {
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
	pageSize  int
	pageDelay time.Duration
	userAgent string
}

// NewPagedSource creates an adapter for the offset-paginated catalog.
func NewPagedSource(baseURL string, cfg Config, logger *slog.Logger) *PagedSource {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &PagedSource{
		baseURL:   baseURL,
		client:    cfg.client(),
		logger:    logger,
		pageSize:  DefaultPageSize,
		pageDelay: DefaultPageDelay,
		userAgent: cfg.UserAgent,
	}
}

// pagedItem mirrors one element of the upstream page array.
type pagedItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Owner   struct {
		Username string `json:"username"`
	} `json:"owner"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// Fetch pulls every page until the catalog runs dry. Errors end pagination
// after a log line; whatever was collected so far is returned.
func (s *PagedSource) Fetch(ctx context.Context) []Record {
	var records []Record
	for skip := 0; ; skip += s.pageSize {
		page, err := s.fetchPage(ctx, skip)
		if err != nil {
			s.logger.Warn("paged catalog: fetch failed, stopping pagination",
				"skip", skip, "error", err)
			break
		}
		if len(page) == 0 {
			break
		}
		records = append(records, page...)

		// Politeness pause before the next page.
		select {
		case <-time.After(s.pageDelay):
		case <-ctx.Done():
			s.logger.Warn("paged catalog: cancelled", "error", ctx.Err())
			return records
		}
	}
	s.logger.Info("paged catalog: fetch complete", "records", len(records))
	return records
}

func (s *PagedSource) fetchPage(ctx context.Context, skip int) ([]Record, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(s.pageSize))
	q.Set("is_r18", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
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

	// Decode element-wise so one malformed item doesn't sink the page.
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("catalog: json decode: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, msg := range raw {
		var item pagedItem
		if err := json.Unmarshal(msg, &item); err != nil {
			continue
		}
		records = append(records, item.record())
	}
	return records, nil
}

func (it pagedItem) record() Record {
	r := Record{
		Title:   it.Title,
		Content: it.Content,
		Author:  normalizeOwner(it.Owner.Username),
	}
	if r.Title == "" {
		r.Title = UntitledTitle
	}
	if r.Content == "" {
		r.Content = MissingContent
	}
	for _, t := range it.Tags {
		if t.Name != "" {
			r.Tags = append(r.Tags, t.Name)
		}
	}
	return r
}

// normalizeOwner maps the upstream placeholder account and the empty value
// to the anonymous marker.
func normalizeOwner(username string) string {
	if username == "" || username == "default_user" {
		return AnonymousAuthor
	}
	return username
}
