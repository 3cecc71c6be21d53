package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultUserAgent    = "feedwatch/1.0 (+rss)"
)

// FetchConfig configures Fetcher.
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher downloads and parses RSS/Atom/JSON feeds.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
	ua     string
}

func NewFetcher(cfg FetchConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		ua:     ua,
	}
}

// Fetch returns the entries of the feed at url in document order.
// Timestamps gofeed could not parse are left nil.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convertItems(parsed.Items), nil
}

func convertItems(items []*gofeed.Item) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, Entry{
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Published: it.PublishedParsed,
			Updated:   it.UpdatedParsed,
		})
	}
	return out
}
