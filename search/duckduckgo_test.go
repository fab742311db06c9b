package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newDuckDuckGoServer(t *testing.T, body string) (*httptest.Server, *DuckDuckGo) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("no_html"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	provider := NewDuckDuckGo(func(o *DuckDuckGoOptions) {
		o.BaseURL = srv.URL
		o.RateLimitDelay = 0
	})

	return srv, provider
}

func TestDuckDuckGo_InstantAnswerLeads(t *testing.T) {
	_, provider := newDuckDuckGoServer(t, `{
		"Abstract": "Go is a programming language.",
		"AbstractSource": "Wikipedia",
		"AbstractURL": "https://en.wikipedia.org/wiki/Go",
		"RelatedTopics": [
			{"Text": "Golang - the Go language", "FirstURL": "https://golang.org"}
		],
		"Results": [
			{"Title": "Go homepage", "Snippet": "The Go site", "FirstURL": "https://go.dev"}
		]
	}`)

	results, err := provider.Search(context.Background(), "golang", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	assert.Equal(t, TypeInstantAnswer, results[0].Type)
	assert.Equal(t, "Wikipedia", results[0].Title)
	assert.Equal(t, "Go is a programming language.", results[0].Snippet)

	assert.Equal(t, TypeRelatedTopic, results[1].Type)
	assert.Equal(t, "Golang", results[1].Title)

	assert.Equal(t, TypeWebResult, results[2].Type)
	assert.Equal(t, "Go homepage", results[2].Title)
}

func TestDuckDuckGo_MissingAbstractSourceDefaults(t *testing.T) {
	_, provider := newDuckDuckGoServer(t, `{"Abstract": "Some fact."}`)

	results, err := provider.Search(context.Background(), "fact", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "DuckDuckGo", results[0].Title)
}

func TestDuckDuckGo_TruncatesToMaxResults(t *testing.T) {
	_, provider := newDuckDuckGoServer(t, `{
		"RelatedTopics": [
			{"Text": "one", "FirstURL": "u1"},
			{"Text": "two", "FirstURL": "u2"},
			{"Text": "three", "FirstURL": "u3"}
		]
	}`)

	results, err := provider.Search(context.Background(), "numbers", 2)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDuckDuckGo_SkipsEmptyTopics(t *testing.T) {
	_, provider := newDuckDuckGoServer(t, `{
		"RelatedTopics": [
			{"Text": "", "FirstURL": "u1"},
			{"Text": "real topic", "FirstURL": "u2"}
		]
	}`)

	results, err := provider.Search(context.Background(), "x", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "real topic", results[0].Snippet)
}

func TestDuckDuckGo_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	provider := NewDuckDuckGo(func(o *DuckDuckGoOptions) {
		o.BaseURL = srv.URL
		o.RateLimitDelay = 0
	})

	_, err := provider.Search(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestDuckDuckGo_Name(t *testing.T) {
	assert.Equal(t, "duckduckgo", NewDuckDuckGo().Name())
}

func TestTopicTitle(t *testing.T) {
	assert.Equal(t, "Golang", topicTitle("Golang - the Go language"))
	assert.Equal(t, "no delimiter here", topicTitle("no delimiter here"))
}
