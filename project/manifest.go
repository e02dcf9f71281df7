// Package project provides the disk-backed analysis host used by the
// assetmod binary: manifest loading, script listing and the OS filesystem.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexandro/assetmod-mcp/host"
	"github.com/lexandro/assetmod-mcp/option"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// ErrPluginNotConfigured is returned when the manifest has no entry for the plugin.
var ErrPluginNotConfigured = errors.New("plugin is not configured in manifest")

// defaultInclude is used when the manifest lists neither include nor files.
var defaultInclude = []string{"**/*"}

// Manifest is a parsed tsconfig-style project file.
type Manifest struct {
	Path            string
	Dir             string
	CompilerOptions host.CompilerOptions
	AllowJs         bool
	Include         []string
	Exclude         []string
	Files           []string
	References      []host.ProjectReference

	json []byte
}

// LoadManifest reads and parses the manifest at path. Comments and trailing
// commas are accepted.
func LoadManifest(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(absPath, data)
}

// ParseManifest parses manifest content. path must be absolute; relative
// entries are resolved against its directory.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return nil, fmt.Errorf("manifest %s is not valid JSON", path)
	}

	dir := filepath.Dir(path)
	compilerOptions := gjson.GetBytes(clean, "compilerOptions")

	m := &Manifest{
		Path: path,
		Dir:  dir,
		CompilerOptions: host.CompilerOptions{
			AllowArbitraryExtensions: compilerOptions.Get("allowArbitraryExtensions").Bool(),
			NewLine:                  compilerOptions.Get("newLine").String(),
		},
		AllowJs: compilerOptions.Get("allowJs").Bool(),
		Include: stringArray(gjson.GetBytes(clean, "include")),
		Exclude: stringArray(gjson.GetBytes(clean, "exclude")),
		Files:   stringArray(gjson.GetBytes(clean, "files")),
		json:    clean,
	}
	if raw, ok := compilerOptions.Value().(map[string]any); ok {
		m.CompilerOptions.Raw = raw
	}
	if m.Include == nil && m.Files == nil {
		m.Include = defaultInclude
	}

	gjson.GetBytes(clean, "references").ForEach(func(_, ref gjson.Result) bool {
		refPath := ref.Get("path").String()
		if refPath == "" {
			return true
		}
		if !filepath.IsAbs(refPath) {
			refPath = filepath.Join(dir, filepath.FromSlash(refPath))
		}
		m.References = append(m.References, host.ProjectReference{
			Path:     refPath,
			Prepend:  ref.Get("prepend").Bool(),
			Circular: ref.Get("circular").Bool(),
		})
		return true
	})

	return m, nil
}

// PluginOptions returns the raw options of the plugin entry named name in
// compilerOptions.plugins.
func (m *Manifest) PluginOptions(name string) (option.RawAssetPluginOptions, error) {
	entry := gjson.GetBytes(m.json, fmt.Sprintf(`compilerOptions.plugins.#(name==%q)`, name))
	if !entry.Exists() {
		return option.RawAssetPluginOptions{}, fmt.Errorf("%w: %s", ErrPluginNotConfigured, name)
	}
	return option.ParseRaw([]byte(entry.Raw))
}

// ResolvedFiles returns the absolute paths of the explicit "files" entries.
func (m *Manifest) ResolvedFiles() []string {
	out := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(m.Dir, filepath.FromSlash(f))
		}
		out = append(out, filepath.Clean(f))
	}
	return out
}

func stringArray(result gjson.Result) []string {
	if !result.IsArray() {
		return nil
	}
	out := []string{}
	for _, item := range result.Array() {
		out = append(out, item.String())
	}
	return out
}
