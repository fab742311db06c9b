// Package search defines the web search seam and HTTP-backed providers for
// DuckDuckGo, Bing, and Google. Providers rate-limit themselves so callers
// can invoke them from tool handlers without extra throttling.
package search

import "context"

// Result types distinguish instant answers from organic web results.
const (
	TypeInstantAnswer = "instant_answer"
	TypeRelatedTopic  = "related_topic"
	TypeWebResult     = "web_result"
)

// DefaultMaxResults bounds a search when the caller passes a non-positive
// limit.
const DefaultMaxResults = 5

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Type    string `json:"type"`
}

// Provider performs a web search and returns up to maxResults hits.
type Provider interface {
	// Name identifies the backing engine in logs and tool output.
	Name() string

	// Search runs the query. A non-positive maxResults falls back to
	// DefaultMaxResults.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
