package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/lexandro/assetmod-mcp/match"
	"github.com/lexandro/assetmod-mcp/option"
)

// ErrWatchUnavailable is returned when the system cannot watch directories.
// The adapter refuses to run without live invalidation.
var ErrWatchUnavailable = errors.New("directory watching is unavailable")

// System is the filesystem the adapter scans. It must also implement
// assets.DirectoryWatcher.
type System interface {
	assets.FileSystem
}

// AssetHost wraps a Project and makes asset files visible as script files.
type AssetHost struct {
	project  Project
	options  *option.AssetPluginOptions
	registry *assets.Registry
	sync     *assets.Synchronizer
	logger   *slog.Logger
}

var _ Host = (*AssetHost)(nil)

// ParseOptions resolves raw plugin options against the project: the manifest
// path comes from the project name and allowArbitraryExtensions is inherited
// from the compilation settings.
func ParseOptions(project Project, raw option.RawAssetPluginOptions) option.AssetPluginOptions {
	return option.Resolve(project.ProjectName(), project.GetCompilationSettings().AllowArbitraryExtensions, raw)
}

// New builds the adapter. Construction scans the project tree and installs a
// recursive watch on the project root; both happen here, not on first use.
func New(project Project, system System, options *option.AssetPluginOptions, logger *slog.Logger) (*AssetHost, error) {
	watcher, ok := system.(assets.DirectoryWatcher)
	if !ok {
		return nil, ErrWatchUnavailable
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plugin options: %w", err)
	}

	matcher, err := match.NewMatcher(options)
	if err != nil {
		return nil, err
	}

	h := &AssetHost{
		project:  project,
		options:  options,
		registry: assets.NewRegistry(),
		logger:   logger,
	}
	h.sync = assets.NewSynchronizer(h.registry, matcher, system, options.IncrementalMatch, logger)
	if err := h.sync.Seed(); err != nil {
		return nil, fmt.Errorf("initial asset scan: %w", err)
	}

	h.sync.OnDirty(func() {
		project.MarkAsDirty()
		project.UpdateGraph()
	})
	if err := h.sync.Watch(watcher); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatchUnavailable, err)
	}
	return h, nil
}

// GetNewLine forwards to the wrapped project.
func (h *AssetHost) GetNewLine() string {
	return h.project.GetNewLine()
}

// UseCaseSensitiveFileNames forwards to the wrapped project.
func (h *AssetHost) UseCaseSensitiveFileNames() bool {
	return h.project.UseCaseSensitiveFileNames()
}

// ReadFile forwards to the wrapped project. Assets are never read.
func (h *AssetHost) ReadFile(path string) (string, bool) {
	return h.project.ReadFile(path)
}

// WriteFile forwards to the wrapped project.
func (h *AssetHost) WriteFile(path string, content string) error {
	return h.project.WriteFile(path, content)
}

// FileExists forwards to the wrapped project.
func (h *AssetHost) FileExists(path string) bool {
	return h.project.FileExists(path)
}

// DirectoryExists forwards to the wrapped project.
func (h *AssetHost) DirectoryExists(path string) bool {
	return h.project.DirectoryExists(path)
}

// GetDirectories forwards to the wrapped project.
func (h *AssetHost) GetDirectories(path string) []string {
	return h.project.GetDirectories(path)
}

// GetCompilationSettings returns the wrapped project's compiler options.
func (h *AssetHost) GetCompilationSettings() CompilerOptions {
	return h.project.GetCompilationSettings()
}

// GetCurrentDirectory forwards to the wrapped project.
func (h *AssetHost) GetCurrentDirectory() string {
	return h.project.GetCurrentDirectory()
}

// GetDefaultLibFileName forwards to the wrapped project.
func (h *AssetHost) GetDefaultLibFileName() string {
	return h.project.GetDefaultLibFileName()
}

// GetProjectVersion changes whenever the wrapped project rebuilds its graph.
func (h *AssetHost) GetProjectVersion() string {
	return h.project.GetProjectVersion()
}

// GetProjectReferences forwards to the wrapped project.
func (h *AssetHost) GetProjectReferences() []ProjectReference {
	return h.project.GetProjectReferences()
}

// GetScriptVersion forwards to the wrapped project.
func (h *AssetHost) GetScriptVersion(fileName string) string {
	return h.project.GetScriptVersion(fileName)
}

// GetScriptSnapshot forwards to the wrapped project.
func (h *AssetHost) GetScriptSnapshot(fileName string) ScriptSnapshot {
	return h.project.GetScriptSnapshot(fileName)
}

// ReadDirectory forwards to the wrapped project; assets are not added here.
func (h *AssetHost) ReadDirectory(path string, extensions []string, exclude []string, include []string, depth int) []string {
	return h.project.ReadDirectory(path, extensions, exclude, include, depth)
}

// Realpath resolves path through the wrapped host. ok is false when the
// wrapped host has no realpath support.
func (h *AssetHost) Realpath(path string) (resolved string, ok bool) {
	rp, ok := h.project.(RealPather)
	if !ok {
		return "", false
	}
	return rp.Realpath(path), true
}

// GetScriptFileNames returns the wrapped host's script files followed by every asset file.
func (h *AssetHost) GetScriptFileNames() []string {
	h.logger.Debug("getScriptFileNames")
	scripts := h.project.GetScriptFileNames()
	assetFiles := h.registry.List()

	out := make([]string, 0, len(scripts)+len(assetFiles))
	out = append(out, scripts...)
	return append(out, assetFiles...)
}

// GetAssetFileNames returns every known asset path.
func (h *AssetHost) GetAssetFileNames() []string {
	return h.registry.List()
}

// IsAssetFile reports whether path is a known asset.
func (h *AssetHost) IsAssetFile(path string) bool {
	return h.registry.Contains(path)
}

// GetMatchedSuggestionRule returns the rule that matched an asset, or nil.
func (h *AssetHost) GetMatchedSuggestionRule(assetFilePath string) *option.SuggestionRule {
	return h.registry.Lookup(assetFilePath)
}

// Options returns the resolved plugin options.
func (h *AssetHost) Options() *option.AssetPluginOptions {
	return h.options
}

// RuleCounts returns rule name -> number of matched assets.
func (h *AssetHost) RuleCounts() map[string]int {
	return h.registry.RuleCounts()
}

// Observe registers fn to receive every registry change.
func (h *AssetHost) Observe(fn func(assets.Change)) {
	h.sync.Observe(fn)
}

// Verify rescans the project and repairs registry drift.
func (h *AssetHost) Verify() (assets.VerifyResult, error) {
	return h.sync.Verify()
}

// Close removes the directory watch.
func (h *AssetHost) Close() error {
	return h.sync.Close()
}
