package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"sync"

	"github.com/lexandro/assetmod-mcp/host"
	"github.com/lexandro/assetmod-mcp/language"
)

// DefaultLibFileName is reported by GetDefaultLibFileName.
const DefaultLibFileName = "lib.d.ts"

// Disk is a host.Project backed by the local filesystem and a manifest.
// Script files are the manifest's selected TypeScript files (and JavaScript
// when allowJs is set).
type Disk struct {
	mu       sync.RWMutex
	manifest *Manifest
	system   *OSSystem
	logger   *slog.Logger
	scripts  []string
	dirty    bool
	version  int
}

var (
	_ host.Project    = (*Disk)(nil)
	_ host.RealPather = (*Disk)(nil)
)

// NewDisk creates the project and lists its script files.
func NewDisk(manifest *Manifest, system *OSSystem, logger *slog.Logger) (*Disk, error) {
	d := &Disk{
		manifest: manifest,
		system:   system,
		logger:   logger,
	}
	scripts, err := d.listScripts()
	if err != nil {
		return nil, err
	}
	d.scripts = scripts
	d.version = 1
	return d, nil
}

func (d *Disk) listScripts() ([]string, error) {
	allowJs := d.manifest.AllowJs
	scripts := []string{}
	seen := make(map[string]bool)
	for _, f := range d.manifest.ResolvedFiles() {
		if language.IsScript(f, allowJs) && d.system.FileExists(f) && !seen[f] {
			seen[f] = true
			scripts = append(scripts, f)
		}
	}

	if len(d.manifest.Include) > 0 {
		found, err := d.system.ReadDirectory(d.manifest.Dir, language.ScriptExtensions(allowJs), d.manifest.Exclude, d.manifest.Include, 0)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				scripts = append(scripts, f)
			}
		}
	}
	return scripts, nil
}

// Manifest returns the parsed project manifest.
func (d *Disk) Manifest() *Manifest {
	return d.manifest
}

func (d *Disk) GetNewLine() string {
	switch d.manifest.CompilerOptions.NewLine {
	case "crlf", "CRLF":
		return "\r\n"
	default:
		return "\n"
	}
}

func (d *Disk) UseCaseSensitiveFileNames() bool {
	return runtime.GOOS != "windows" && runtime.GOOS != "darwin"
}

func (d *Disk) ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (d *Disk) WriteFile(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (d *Disk) FileExists(path string) bool {
	return d.system.FileExists(path)
}

func (d *Disk) DirectoryExists(path string) bool {
	return d.system.DirectoryExists(path)
}

// GetDirectories returns the names of the direct subdirectories of path.
func (d *Disk) GetDirectories(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs
}

func (d *Disk) ReadDirectory(path string, extensions []string, exclude []string, include []string, depth int) []string {
	files, err := d.system.ReadDirectory(path, extensions, exclude, include, depth)
	if err != nil {
		d.logger.Warn("read directory failed", "path", path, "error", err)
		return nil
	}
	return files
}

func (d *Disk) GetCompilationSettings() host.CompilerOptions {
	return d.manifest.CompilerOptions
}

func (d *Disk) GetCurrentDirectory() string {
	return d.manifest.Dir
}

func (d *Disk) GetDefaultLibFileName() string {
	return DefaultLibFileName
}

func (d *Disk) GetProjectVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strconv.Itoa(d.version)
}

func (d *Disk) GetProjectReferences() []host.ProjectReference {
	return d.manifest.References
}

func (d *Disk) GetScriptFileNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.scripts)
}

// GetScriptVersion returns the file's modification time in nanoseconds, or
// "" when the file does not exist.
func (d *Disk) GetScriptVersion(fileName string) string {
	info, err := os.Stat(fileName)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

// GetScriptSnapshot returns nil when the file cannot be read.
func (d *Disk) GetScriptSnapshot(fileName string) host.ScriptSnapshot {
	content, ok := d.ReadFile(fileName)
	if !ok {
		return nil
	}
	return host.StringSnapshot(content)
}

// Realpath resolves symlinks; path is returned unchanged when that fails.
func (d *Disk) Realpath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func (d *Disk) ProjectName() string {
	return d.manifest.Path
}

func (d *Disk) MarkAsDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = true
}

// UpdateGraph re-lists script files if the project is dirty and bumps the
// project version. It returns false when there was nothing to do.
func (d *Disk) UpdateGraph() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return false
	}

	scripts, err := d.listScripts()
	if err != nil {
		d.logger.Warn("failed to list script files", "error", err)
	} else {
		d.scripts = scripts
	}
	d.dirty = false
	d.version++
	d.logger.Debug("project graph updated", "version", d.version, "scripts", len(d.scripts))
	return true
}
