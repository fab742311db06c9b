package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// bingMaxResults is the API's per-request ceiling.
const bingMaxResults = 50

// BingOptions configure the Bing provider.
type BingOptions struct {
	// BaseURL points at the Bing Web Search API. Override for testing.
	BaseURL string

	// HTTPClient performs the requests. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client

	// RateLimitDelay is the minimum delay between requests. Defaults
	// to one second.
	RateLimitDelay time.Duration
}

// Bing searches via the Bing Web Search API. Requires an API key.
type Bing struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

var _ Provider = (*Bing)(nil)

// NewBing creates a Bing search provider authenticated with the given key.
func NewBing(apiKey string, optFns ...func(o *BingOptions)) *Bing {
	opts := BingOptions{
		BaseURL:        "https://api.bing.microsoft.com/v7.0/search",
		RateLimitDelay: time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Bing{
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
		limiter: newRateLimiter(opts.RateLimitDelay),
	}
}

// Name implements Provider.
func (b *Bing) Name() string {
	return "bing"
}

// Search implements Provider.
func (b *Bing) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if maxResults > bingMaxResults {
		maxResults = bingMaxResults
	}

	if err := b.limiter.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":              {query},
		"count":          {strconv.Itoa(maxResults)},
		"responseFilter": {"Webpages"},
		"textFormat":     {"Raw"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bing: HTTP %d", resp.StatusCode)
	}

	var data struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				Snippet string `json:"snippet"`
				URL     string `json:"url"`
			} `json:"value"`
		} `json:"webPages"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("bing decode: %w", err)
	}

	if data.Error != nil {
		return nil, fmt.Errorf("bing api error: %s", data.Error.Message)
	}

	results := make([]Result, 0, len(data.WebPages.Value))

	for _, item := range data.WebPages.Value {
		if len(results) >= maxResults {
			break
		}

		results = append(results, Result{
			Title:   item.Name,
			Snippet: item.Snippet,
			URL:     item.URL,
			Type:    TypeWebResult,
		})
	}

	return results, nil
}
