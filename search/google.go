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

// googleMaxResults is the Custom Search API's per-request ceiling.
const googleMaxResults = 10

// GoogleOptions configure the Google provider.
type GoogleOptions struct {
	// BaseURL points at the Custom Search API. Override for testing.
	BaseURL string

	// HTTPClient performs the requests. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client

	// RateLimitDelay is the minimum delay between requests. Defaults
	// to one second.
	RateLimitDelay time.Duration
}

// Google searches via the Google Custom Search API. Requires an API key
// and a custom search engine id.
type Google struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
	limiter  *rateLimiter
}

var _ Provider = (*Google)(nil)

// NewGoogle creates a Google search provider.
func NewGoogle(apiKey, engineID string, optFns ...func(o *GoogleOptions)) *Google {
	opts := GoogleOptions{
		BaseURL:        "https://www.googleapis.com/customsearch/v1",
		RateLimitDelay: time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Google{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  opts.BaseURL,
		client:   opts.HTTPClient,
		limiter:  newRateLimiter(opts.RateLimitDelay),
	}
}

// Name implements Provider.
func (g *Google) Name() string {
	return "google"
}

// Search implements Provider.
func (g *Google) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if maxResults > googleMaxResults {
		maxResults = googleMaxResults
	}

	if err := g.limiter.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"key": {g.apiKey},
		"cx":  {g.engineID},
		"q":   {query},
		"num": {strconv.Itoa(maxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: HTTP %d", resp.StatusCode)
	}

	var data struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("google decode: %w", err)
	}

	if data.Error != nil {
		return nil, fmt.Errorf("google api error: %s", data.Error.Message)
	}

	results := make([]Result, 0, len(data.Items))

	for _, item := range data.Items {
		if len(results) >= maxResults {
			break
		}

		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
			Type:    TypeWebResult,
		})
	}

	return results, nil
}
