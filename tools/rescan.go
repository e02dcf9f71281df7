package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RescanArgs defines the input parameters for the assets_rescan tool.
type RescanArgs struct{}

// RescanFunc runs a full verification of the asset registry.
// It is provided by main.go.
type RescanFunc func() (assets.VerifyResult, error)

// RescanHandler holds the dependencies for the rescan tool.
type RescanHandler struct {
	DoRescan RescanFunc
	Logger   *slog.Logger
}

// Handle processes an assets_rescan request.
func (h *RescanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RescanArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("assets_rescan started")

	result, err := h.DoRescan()
	if err != nil {
		h.Logger.Error("assets_rescan failed", "error", err)
		return errorResult(fmt.Sprintf("Rescan error: %v", err)), nil, nil
	}

	h.Logger.Info("assets_rescan complete",
		"missing", result.MissingFiles,
		"stale", result.StaleFiles,
		"reclassified", result.ReclassifiedFiles,
		"elapsed", result.Duration,
	)

	return textResult(FormatVerifyResult(result)), nil, nil
}
