// Package host defines the analysis host contract and the asset-aware
// decorator that wraps it.
package host

// CompilerOptions is the subset of compilation settings the asset layer reads,
// plus the raw settings for consumers that need more.
type CompilerOptions struct {
	AllowArbitraryExtensions bool
	NewLine                  string
	Raw                      map[string]any
}

// ProjectReference points at another project the host depends on.
type ProjectReference struct {
	Path     string
	Prepend  bool
	Circular bool
}

// ScriptSnapshot is an immutable view of a script's text.
type ScriptSnapshot interface {
	GetText(start int, end int) string
	GetLength() int
}

// StringSnapshot is a ScriptSnapshot over an in-memory string.
type StringSnapshot string

func (s StringSnapshot) GetText(start int, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return string(s[start:end])
}

func (s StringSnapshot) GetLength() int {
	return len(s)
}

// Host is the analysis host contract. Every member is forwarded unchanged by AssetHost.
type Host interface {
	GetNewLine() string
	UseCaseSensitiveFileNames() bool
	ReadFile(path string) (string, bool)
	WriteFile(path string, content string) error
	FileExists(path string) bool
	DirectoryExists(path string) bool
	GetDirectories(path string) []string
	ReadDirectory(path string, extensions []string, exclude []string, include []string, depth int) []string
	GetCompilationSettings() CompilerOptions
	GetCurrentDirectory() string
	GetDefaultLibFileName() string
	GetProjectVersion() string
	GetProjectReferences() []ProjectReference
	GetScriptFileNames() []string
	GetScriptVersion(fileName string) string
	GetScriptSnapshot(fileName string) ScriptSnapshot
}

// RealPather is implemented by hosts that can resolve symlinks.
type RealPather interface {
	Realpath(path string) string
}

// Project is the host's project handle: the host contract plus the
// invalidation hooks used after the visible file set changes.
type Project interface {
	Host
	// ProjectName is the path of the project manifest.
	ProjectName() string
	MarkAsDirty()
	// UpdateGraph recomputes the dependency graph; it reports whether anything changed.
	UpdateGraph() bool
}
