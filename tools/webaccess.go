package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/echolabs/echokernel/tool"
)

// maxPageBytes caps how much of a page the fetcher will read.
const maxPageBytes = 10 * 1024 * 1024

const webAccessUserAgent = "EchoKernel-WebAccess/1.0 (Educational Tool)"

// PageContent is the structured result of fetching a web page.
type PageContent struct {
	URL         string   `json:"url"`
	StatusCode  int      `json:"status_code"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Headings    []string `json:"headings"`
	WordCount   int      `json:"word_count"`
}

// WebFetcherOptions configure a WebFetcher.
type WebFetcherOptions struct {
	// HTTPClient performs the requests. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client

	// RateLimitDelay is the minimum delay between requests. Defaults
	// to one second.
	RateLimitDelay time.Duration
}

// WebFetcher retrieves web pages with URL validation, rate limiting, and a
// response size cap, and extracts readable text from the HTML.
type WebFetcher struct {
	client *http.Client
	delay  time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewWebFetcher creates a page fetcher.
func NewWebFetcher(optFns ...func(o *WebFetcherOptions)) *WebFetcher {
	opts := WebFetcherOptions{
		RateLimitDelay: time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &WebFetcher{
		client: opts.HTTPClient,
		delay:  opts.RateLimitDelay,
	}
}

// validateURL accepts absolute http/https URLs only.
func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL has no host")
	}

	return nil
}

func (f *WebFetcher) rateLimit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if remaining := f.delay - time.Since(f.last); remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	f.last = time.Now()

	return nil
}

// Fetch retrieves the page at rawURL and extracts its readable content.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) (*PageContent, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	if err := f.rateLimit(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", webAccessUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("fetch %s: content exceeds %d byte limit", rawURL, maxPageBytes)
	}

	content := extractContent(body)
	content.URL = rawURL
	content.StatusCode = resp.StatusCode

	return content, nil
}

// extractContent walks the HTML tree collecting the title, meta
// description, h1-h3 headings, and visible text. Script and style subtrees
// are skipped.
func extractContent(body []byte) *PageContent {
	content := &PageContent{}

	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		content.Text = string(body)
		content.WordCount = len(strings.Fields(content.Text))
		return content
	}

	var textParts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "title":
				if content.Title == "" {
					content.Title = strings.TrimSpace(nodeText(n))
				}
				return
			case "meta":
				if attrValue(n, "name") == "description" {
					content.Description = strings.TrimSpace(attrValue(n, "content"))
				}
			case "h1", "h2", "h3":
				if heading := strings.TrimSpace(nodeText(n)); heading != "" {
					content.Headings = append(content.Headings, heading)
				}
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				textParts = append(textParts, text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	content.Text = strings.Join(textParts, " ")
	content.WordCount = len(strings.Fields(content.Text))

	return content
}

func nodeText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

type webAccessParams struct {
	URL string `json:"url" description:"The URL of the web page to retrieve."`
}

// NewWebAccessTool returns a tool that fetches a web page and reports its
// title, headings, and readable text as JSON.
func NewWebAccessTool(fetcher *WebFetcher) (*tool.Tool, error) {
	handler := func(ctx context.Context, args map[string]any) (any, error) {
		rawURL, _ := args["url"].(string)

		content, err := fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}

		return string(payload), nil
	}

	return tool.FromStruct(
		"get_web_content",
		"Gets the content of a web page.",
		webAccessParams{},
		handler,
	)
}
