package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListArgs defines the input parameters for the assets_list tool.
type ListArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob pattern relative to the project root (e.g. assets/**/*.svg)"`
	Rule       string `json:"rule,omitempty" jsonschema:"Only list assets matched by this rule"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 200)"`
}

// ListHandler holds the dependencies for the list tool.
type ListHandler struct {
	Host   AssetSource
	Logger *slog.Logger
}

// AssetEntry is one asset in a tool listing.
type AssetEntry struct {
	RelativePath string
	Rule         string
}

// Handle processes an assets_list request.
func (h *ListHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern != "" && !doublestar.ValidatePattern(args.Pattern) {
		h.Logger.Warn("assets_list called with invalid pattern", "pattern", args.Pattern)
		return errorResult(fmt.Sprintf("Error: invalid glob pattern %q", args.Pattern)), nil, nil
	}
	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 200
	}

	root := h.Host.Options().ProjectRoot()
	var entries []AssetEntry
	total := 0
	for _, path := range h.Host.GetAssetFileNames() {
		rel := relativePath(root, path)
		if args.Pattern != "" {
			if matched, _ := doublestar.Match(args.Pattern, rel); !matched {
				continue
			}
		}
		rule := h.Host.GetMatchedSuggestionRule(path)
		if rule == nil || (args.Rule != "" && rule.Name != args.Rule) {
			continue
		}
		total++
		if len(entries) < maxResults {
			entries = append(entries, AssetEntry{RelativePath: rel, Rule: rule.Name})
		}
	}

	h.Logger.Info("assets_list",
		"pattern", args.Pattern,
		"rule", args.Rule,
		"results", total,
		"elapsed", time.Since(start),
	)

	return textResult(FormatAssetList(entries, total)), nil, nil
}
