package server

import (
	"github.com/lexandro/assetmod-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers groups the tool handlers registered by Setup.
type Handlers struct {
	List    *tools.ListHandler
	Lookup  *tools.LookupHandler
	Scripts *tools.ScriptsHandler
	Search  *tools.SearchHandler
	Status  *tools.StatusHandler
	Rescan  *tools.RescanHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "assetmod-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server exposes the asset files (images, fonts, other non-code files) that the TypeScript project treats as importable modules.

- Use assets_list to enumerate assets, optionally filtered by glob or rule
- Use assets_lookup to check whether a path is an asset and which rule governs its generated export name
- Use assets_search to find assets by words in their name or directory
- Use assets_scripts to see the full file list the language service analyzes
- The asset set updates automatically when files change (via filesystem watcher)`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "assets_list",
		Description: `List asset files with the rule that matched each one.

Pattern examples (relative to the project root):
  - "**/*.svg" - all SVG assets
  - "assets/icons/**" - everything under assets/icons`,
	}, handlers.List.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assets_lookup",
		Description: "Report whether a file is an asset and show its matched rule: extensions, exported name case and prefix.",
	}, handlers.Lookup.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assets_scripts",
		Description: "List the script file names the language service sees: project sources followed by asset files (marked with *).",
	}, handlers.Scripts.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "assets_search",
		Description: `Search assets by name.

Query formats:
  - Plain text: word matching on file and directory names; camelCase, dashes and underscores split words (e.g. "arrow left")
  - "quoted text": phrase matching
  - /regex/: regular expression on single words
  - wild*card: wildcard on single words`,
	}, handlers.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assets_status",
		Description: "Show asset status: manifest, project version, asset counts per rule, memory usage, and uptime.",
	}, handlers.Status.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assets_rescan",
		Description: "Rescan the project tree and repair any drift between the asset set and the filesystem.",
	}, handlers.Rescan.Handle)

	return mcpServer
}
