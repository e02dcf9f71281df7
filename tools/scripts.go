package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScriptsArgs defines the input parameters for the assets_scripts tool.
type ScriptsArgs struct {
	AssetsOnly bool `json:"assetsOnly,omitempty" jsonschema:"If true list only the asset entries"`
}

// ScriptsHandler holds the dependencies for the scripts tool.
type ScriptsHandler struct {
	Host   AssetSource
	Logger *slog.Logger
}

// Handle processes an assets_scripts request. It shows the file list the
// analysis host sees, with asset entries marked.
func (h *ScriptsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScriptsArgs) (*mcp.CallToolResult, any, error) {
	root := h.Host.Options().ProjectRoot()
	names := h.Host.GetScriptFileNames()

	var builder strings.Builder
	shown := 0
	for _, name := range names {
		isAsset := h.Host.IsAssetFile(name)
		if args.AssetsOnly && !isAsset {
			continue
		}
		marker := "  "
		if isAsset {
			marker = "* "
		}
		builder.WriteString(marker + relativePath(root, name) + "\n")
		shown++
	}

	h.Logger.Info("assets_scripts", "files", len(names), "shown", shown)

	if shown == 0 {
		return textResult("No script files."), nil, nil
	}
	header := fmt.Sprintf("%d script files (* = asset):\n\n", shown)
	return textResult(header + builder.String()), nil, nil
}
