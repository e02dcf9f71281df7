package language

import (
	"path/filepath"
	"sort"
	"strings"
)

// ScriptKind classifies a file the way the analysis host loads it.
type ScriptKind int

const (
	Unknown ScriptKind = iota
	JS
	JSX
	TS
	TSX
	JSON
)

// extensionToKind maps lowercase extensions (with dot) to script kinds.
var extensionToKind = map[string]ScriptKind{
	".ts": TS, ".mts": TS, ".cts": TS,
	".tsx": TSX,
	".js": JS, ".mjs": JS, ".cjs": JS,
	".jsx": JSX,
	".json": JSON,
}

func (k ScriptKind) String() string {
	switch k {
	case JS:
		return "JS"
	case JSX:
		return "JSX"
	case TS:
		return "TS"
	case TSX:
		return "TSX"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// IsTypeScript reports whether k is TS or TSX.
func (k ScriptKind) IsTypeScript() bool {
	return k == TS || k == TSX
}

// IsJavaScript reports whether k is JS or JSX.
func (k ScriptKind) IsJavaScript() bool {
	return k == JS || k == JSX
}

// DetectScriptKind returns the script kind for a file path based on its extension.
func DetectScriptKind(filePath string) ScriptKind {
	return extensionToKind[strings.ToLower(filepath.Ext(filePath))]
}

// DetectLanguage returns the language name for a file path based on its extension.
// Returns "Unknown" if the extension is not recognized.
func DetectLanguage(filePath string) string {
	kind := DetectScriptKind(filePath)
	switch {
	case kind.IsTypeScript():
		return "TypeScript"
	case kind.IsJavaScript():
		return "JavaScript"
	case kind == JSON:
		return "JSON"
	}
	return "Unknown"
}

// IsScript reports whether the host loads filePath as a source file.
// JavaScript counts only when allowJs is set.
func IsScript(filePath string, allowJs bool) bool {
	kind := DetectScriptKind(filePath)
	return kind.IsTypeScript() || (allowJs && kind.IsJavaScript())
}

// ScriptExtensions returns the sorted extensions accepted by IsScript.
func ScriptExtensions(allowJs bool) []string {
	var out []string
	for ext, kind := range extensionToKind {
		if kind.IsTypeScript() || (allowJs && kind.IsJavaScript()) {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
