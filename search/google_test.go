package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoogle_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key123", r.URL.Query().Get("key"))
		assert.Equal(t, "engine456", r.URL.Query().Get("cx"))
		assert.Equal(t, "golang", r.URL.Query().Get("q"))

		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Go", "snippet": "The Go language", "link": "https://go.dev"}
			]
		}`))
	}))
	t.Cleanup(srv.Close)

	provider := NewGoogle("key123", "engine456", func(o *GoogleOptions) {
		o.BaseURL = srv.URL
		o.RateLimitDelay = 0
	})

	results, err := provider.Search(context.Background(), "golang", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Go", results[0].Title)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.Equal(t, TypeWebResult, results[0].Type)
}

func TestGoogle_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	t.Cleanup(srv.Close)

	provider := NewGoogle("k", "e", func(o *GoogleOptions) {
		o.BaseURL = srv.URL
		o.RateLimitDelay = 0
	})

	_, err := provider.Search(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "google api error: quota exceeded")
}

func TestGoogle_ClampsNum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	t.Cleanup(srv.Close)

	provider := NewGoogle("k", "e", func(o *GoogleOptions) {
		o.BaseURL = srv.URL
		o.RateLimitDelay = 0
	})

	_, err := provider.Search(context.Background(), "x", 100)
	assert.NoError(t, err)
}
