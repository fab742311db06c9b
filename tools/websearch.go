// Package tools provides ready-made kernel tools: web search, safe web page
// retrieval, and sandboxed code execution. Each constructor returns a
// *tool.Tool that can be registered with the kernel directly.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/echolabs/echokernel/search"
	"github.com/echolabs/echokernel/tool"
)

type webSearchParams struct {
	Query      string `json:"query" description:"The query to search for."`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum number of results to return (default 5)."`
}

// NewWebSearchTool returns a tool that searches the web through the given
// provider and reports the results as JSON.
func NewWebSearchTool(provider search.Provider) (*tool.Tool, error) {
	handler := func(ctx context.Context, args map[string]any) (any, error) {
		query, _ := args["query"].(string)

		maxResults := 0
		if n, ok := args["max_results"].(float64); ok {
			maxResults = int(n)
		}

		results, err := provider.Search(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		payload, err := json.Marshal(map[string]any{
			"query":    query,
			"provider": provider.Name(),
			"results":  results,
		})
		if err != nil {
			return nil, err
		}

		return string(payload), nil
	}

	return tool.FromStruct(
		"search_web",
		"Searches the web for the given query.",
		webSearchParams{},
		handler,
	)
}
