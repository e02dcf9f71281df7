package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/assetmod-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the assets_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Host      AssetSource
	Catalog   *index.Catalog
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes an assets_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	options := h.Host.Options()
	counts := h.Host.RuleCounts()
	assetCount := len(h.Host.GetAssetFileNames())
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("assets_status",
		"assets", assetCount,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== assetmod-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Manifest: %s\n", options.ManifestPath))
	builder.WriteString(fmt.Sprintf("Project root: %s\n", options.ProjectRoot()))
	builder.WriteString(fmt.Sprintf("Project version: %s\n", h.Host.GetProjectVersion()))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Assets: %d\n", assetCount))
	if h.Catalog != nil {
		builder.WriteString(fmt.Sprintf("Catalog documents: %d\n", h.Catalog.DocumentCount()))
	}
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))
	builder.WriteString("\n")
	builder.WriteString(FormatRuleCounts(options.Rules, counts))

	// Counted rule names that are no longer configured
	var extra []string
	for name := range counts {
		if options.Rule(name) == nil {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		builder.WriteString(fmt.Sprintf("  %-20s %d assets (unknown rule)\n", name, counts[name]))
	}

	return textResult(builder.String()), nil, nil
}
