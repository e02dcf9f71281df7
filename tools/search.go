package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/assetmod-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the assets_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Words from the asset name or directory; supports \"phrase\" /regex/ and wild*cards"`
	Rule       string `json:"rule,omitempty" jsonschema:"Only return assets matched by this rule"`
	Extension  string `json:"extension,omitempty" jsonschema:"Only return assets with this extension (e.g. .svg)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Catalog *index.Catalog
	Logger  *slog.Logger
}

// Handle processes an assets_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("assets_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	results, total, err := h.Catalog.Search(index.SearchOptions{
		Query:      args.Query,
		Rule:       args.Rule,
		Extension:  args.Extension,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("assets_search failed", "query", args.Query, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("assets_search",
		"query", args.Query,
		"results", len(results),
		"total", total,
		"elapsed", time.Since(start),
	)

	return textResult(FormatSearchResults(results, total)), nil, nil
}
