package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DuckDuckGoOptions configure the DuckDuckGo provider.
type DuckDuckGoOptions struct {
	// BaseURL points at the Instant Answer API. Override for testing.
	BaseURL string

	// HTTPClient performs the requests. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client

	// RateLimitDelay is the minimum delay between requests. Defaults
	// to one second.
	RateLimitDelay time.Duration
}

// DuckDuckGo searches via the DuckDuckGo Instant Answer API. It needs no
// API key, which makes it the default engine for development.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

var _ Provider = (*DuckDuckGo)(nil)

// NewDuckDuckGo creates a DuckDuckGo search provider.
func NewDuckDuckGo(optFns ...func(o *DuckDuckGoOptions)) *DuckDuckGo {
	opts := DuckDuckGoOptions{
		BaseURL:        "https://api.duckduckgo.com/",
		RateLimitDelay: time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &DuckDuckGo{
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
		limiter: newRateLimiter(opts.RateLimitDelay),
	}
}

// Name implements Provider.
func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// instantAnswer mirrors the fields of the Instant Answer API response this
// provider consumes.
type instantAnswer struct {
	Abstract       string `json:"Abstract"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
	Results []struct {
		Title    string `json:"Title"`
		Snippet  string `json:"Snippet"`
		FirstURL string `json:"FirstURL"`
	} `json:"Results"`
}

// Search implements Provider. The instant answer (when present) leads the
// results, followed by related topics and organic results.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if err := d.limiter.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: HTTP %d", resp.StatusCode)
	}

	var data instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("duckduckgo decode: %w", err)
	}

	var results []Result

	if data.Abstract != "" {
		source := data.AbstractSource
		if source == "" {
			source = "DuckDuckGo"
		}

		results = append(results, Result{
			Title:   source,
			Snippet: data.Abstract,
			URL:     data.AbstractURL,
			Type:    TypeInstantAnswer,
		})
	}

	for _, topic := range data.RelatedTopics {
		if len(results) >= maxResults {
			break
		}

		if topic.Text == "" {
			continue
		}

		results = append(results, Result{
			Title:   topicTitle(topic.Text),
			Snippet: topic.Text,
			URL:     topic.FirstURL,
			Type:    TypeRelatedTopic,
		})
	}

	for _, r := range data.Results {
		if len(results) >= maxResults {
			break
		}

		results = append(results, Result{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.FirstURL,
			Type:    TypeWebResult,
		})
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results, nil
}

// topicTitle derives a title from a related topic's text, which formats as
// "Title - description".
func topicTitle(text string) string {
	if title, _, ok := strings.Cut(text, " - "); ok {
		return title
	}

	return text
}
