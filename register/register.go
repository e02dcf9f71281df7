// Package register adds this server to an MCP client configuration file.
package register

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Scopes accepted by Register.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Register writes the server entry for the running binary.
// directory is only used for the project scope ("" means ".").
// It returns the path of the written configuration file.
func Register(scope string, directory string, serverName string, serverArgs []string) (string, error) {
	if scope != ScopeProject && scope != ScopeUser {
		return "", fmt.Errorf("unknown scope %q (must be %q or %q)", scope, ScopeProject, ScopeUser)
	}
	if directory == "" {
		directory = "."
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return "", fmt.Errorf("detecting binary path: %w", err)
	}

	configPath, err := resolveConfigPath(scope, directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, serverArgs)); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return configPath, nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == ScopeProject {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := []string{"/C", binaryPath}
		args = append(args, serverArgs...)
		return mcpServerEntry{
			Command: "cmd",
			Args:    args,
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    serverArgs,
	}
}

// writeConfig sets mcpServers.<serverName> in configPath, keeping every other
// key and its order intact.
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", configPath, err)
		}
		data = []byte(`{"mcpServers": {}}`)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("parsing existing config %s: invalid JSON", configPath)
	}
	if servers := gjson.GetBytes(data, "mcpServers"); servers.Exists() && !servers.IsObject() {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}

	output, err := sjson.SetBytes(data, "mcpServers."+escapePathKey(serverName), entry)
	if err != nil {
		return fmt.Errorf("updating config: %w", err)
	}
	output = pretty.Pretty(output)

	// Atomic write: write to temp file in same directory, then rename
	configDir := filepath.Dir(configPath)
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}
	return nil
}

// escapePathKey escapes sjson path syntax so key is used literally.
func escapePathKey(key string) string {
	var builder strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			builder.WriteRune('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
