package tools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LookupArgs defines the input parameters for the assets_lookup tool.
type LookupArgs struct {
	Path string `json:"path" jsonschema:"File path, absolute or relative to the project root"`
}

// LookupHandler holds the dependencies for the lookup tool.
type LookupHandler struct {
	Host   AssetSource
	Logger *slog.Logger
}

// Handle processes an assets_lookup request.
func (h *LookupHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LookupArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		h.Logger.Warn("assets_lookup called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	root := h.Host.Options().ProjectRoot()
	path := resolvePath(root, args.Path)
	rule := h.Host.GetMatchedSuggestionRule(path)

	h.Logger.Info("assets_lookup", "path", path, "asset", rule != nil)

	return textResult(FormatLookup(relativePath(root, path), rule)), nil, nil
}
