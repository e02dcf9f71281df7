package tools

import (
	"path/filepath"

	"github.com/lexandro/assetmod-mcp/option"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AssetSource is the part of the asset host the tools read.
type AssetSource interface {
	GetAssetFileNames() []string
	GetScriptFileNames() []string
	IsAssetFile(path string) bool
	GetMatchedSuggestionRule(assetFilePath string) *option.SuggestionRule
	RuleCounts() map[string]int
	GetProjectVersion() string
	Options() *option.AssetPluginOptions
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// resolvePath makes a tool argument absolute against the project root.
func resolvePath(root string, path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// relativePath returns path relative to root with forward slashes, or path
// itself when it is outside root.
func relativePath(root string, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
