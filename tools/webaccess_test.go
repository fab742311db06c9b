package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Sample Page</title>
<meta name="description" content="A page for testing.">
<style>body { color: red; }</style>
<script>var hidden = "should not appear";</script>
</head>
<body>
<h1>Main Heading</h1>
<h2>Sub Heading</h2>
<p>First paragraph of text.</p>
<p>Second paragraph.</p>
</body>
</html>`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *WebFetcher) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fetcher := NewWebFetcher(func(o *WebFetcherOptions) {
		o.RateLimitDelay = 0
	})

	return srv, fetcher
}

func TestWebFetcher_Fetch(t *testing.T) {
	srv, fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, webAccessUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	})

	content, err := fetcher.Fetch(context.Background(), srv.URL)
	assert.NoError(t, err)

	assert.Equal(t, srv.URL, content.URL)
	assert.Equal(t, http.StatusOK, content.StatusCode)
	assert.Equal(t, "Sample Page", content.Title)
	assert.Equal(t, "A page for testing.", content.Description)
	assert.Equal(t, []string{"Main Heading", "Sub Heading"}, content.Headings)

	assert.Contains(t, content.Text, "First paragraph of text.")
	assert.NotContains(t, content.Text, "should not appear")
	assert.NotContains(t, content.Text, "color: red")
	assert.Positive(t, content.WordCount)
}

func TestWebFetcher_RejectsNonHTTPSchemes(t *testing.T) {
	fetcher := NewWebFetcher(func(o *WebFetcherOptions) {
		o.RateLimitDelay = 0
	})

	_, err := fetcher.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorContains(t, err, "unsupported URL scheme")

	_, err = fetcher.Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestWebFetcher_NonOKStatus(t *testing.T) {
	srv, fetcher := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := fetcher.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://example.com/page"))
	assert.NoError(t, validateURL("http://example.com"))
	assert.Error(t, validateURL("file:///etc/passwd"))
	assert.Error(t, validateURL("https://"))
}

func TestExtractContent_PlainFallbackOnParse(t *testing.T) {
	// html.Parse is extremely tolerant, so even fragments produce a tree.
	content := extractContent([]byte("just some words"))
	assert.Equal(t, "just some words", content.Text)
	assert.Equal(t, 3, content.WordCount)
}

func TestWebAccessTool(t *testing.T) {
	srv, fetcher := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	})

	accessTool, err := NewWebAccessTool(fetcher)
	assert.NoError(t, err)
	assert.Equal(t, "get_web_content", accessTool.Name())

	result, err := accessTool.Call(context.Background(), map[string]any{"url": srv.URL})
	assert.NoError(t, err)

	var content PageContent
	assert.NoError(t, json.Unmarshal([]byte(result.(string)), &content))
	assert.Equal(t, "Sample Page", content.Title)
	assert.True(t, strings.Contains(content.Text, "First paragraph"))
}

func TestWebAccessTool_InvalidURL(t *testing.T) {
	accessTool, err := NewWebAccessTool(NewWebFetcher(func(o *WebFetcherOptions) {
		o.RateLimitDelay = 0
	}))
	assert.NoError(t, err)

	_, err = accessTool.Call(context.Background(), map[string]any{"url": "ftp://host/file"})
	assert.ErrorContains(t, err, "unsupported URL scheme")
}
