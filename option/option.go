// Package option holds the typed configuration of the asset plugin:
// suggestion rules, the resolved plugin options and their defaults.
package option

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExportedNameCase names the case transform applied to generated export names.
type ExportedNameCase string

const (
	ConstantCase ExportedNameCase = "constantCase"
	CamelCase    ExportedNameCase = "camelCase"
	PascalCase   ExportedNameCase = "pascalCase"
	SnakeCase    ExportedNameCase = "snakeCase"
)

// ExportedNameCases lists every accepted name case in declaration order.
var ExportedNameCases = []ExportedNameCase{ConstantCase, CamelCase, PascalCase, SnakeCase}

// Valid reports whether c is one of the known name cases.
func (c ExportedNameCase) Valid() bool {
	return slices.Contains(ExportedNameCases, c)
}

// MatchPolicy selects which rule wins when several rules claim a changed path
// during incremental updates.
type MatchPolicy string

const (
	// LastMatch evaluates every rule and keeps the last one that matched.
	LastMatch MatchPolicy = "lastMatch"
	// FirstMatch keeps the first matching rule, like the initial scan.
	FirstMatch MatchPolicy = "firstMatch"
)

const (
	DefaultExportedNameCase         = ConstantCase
	DefaultExportedNamePrefix       = "I_"
	DefaultAllowArbitraryExtensions = false
	DefaultIncrementalMatch         = LastMatch
)

// SuggestionRule maps a set of file extensions to the naming policy of the
// synthetic module an asset appears as. Rules are immutable once built.
type SuggestionRule struct {
	Name               string
	Extensions         []string
	ExportedNameCase   ExportedNameCase
	ExportedNamePrefix string
}

// Claims reports whether the rule covers the file name's extension.
// Extensions are matched as suffixes so compound ones like ".module.css" work.
func (r *SuggestionRule) Claims(fileName string) bool {
	for _, ext := range r.Extensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

func (r *SuggestionRule) String() string {
	if r == nil {
		return "<none>"
	}
	return r.Name
}

// AssetPluginOptions is the process-wide configuration, resolved once at startup.
type AssetPluginOptions struct {
	ManifestPath             string
	AllowArbitraryExtensions bool
	Rules                    []SuggestionRule
	Extensions               []string // union of every rule's extensions
	Include                  []string
	Exclude                  []string
	RespectGitignore         bool
	IncrementalMatch         MatchPolicy
}

// ProjectRoot returns the directory holding the project manifest.
func (o *AssetPluginOptions) ProjectRoot() string {
	return filepath.Dir(o.ManifestPath)
}

// ExcludeFile adds a single file below the project root to Exclude, so that
// writes to it never reach the watch. Files outside the root are ignored.
func (o *AssetPluginOptions) ExcludeFile(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(o.ProjectRoot(), absPath)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return
	}
	pattern := escapeGlob(rel)
	if !slices.Contains(o.Exclude, pattern) {
		o.Exclude = append(o.Exclude, pattern)
	}
}

// escapeGlob quotes doublestar metacharacters so a file name matches literally.
func escapeGlob(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Rule returns a pointer to the configured rule with the given name, or nil.
func (o *AssetPluginOptions) Rule(name string) *SuggestionRule {
	for i := range o.Rules {
		if o.Rules[i].Name == name {
			return &o.Rules[i]
		}
	}
	return nil
}

// UnionExtensions flattens rule extensions in rule order, dropping duplicates.
func UnionExtensions(rules []SuggestionRule) []string {
	var union []string
	for _, rule := range rules {
		for _, ext := range rule.Extensions {
			if !slices.Contains(union, ext) {
				union = append(union, ext)
			}
		}
	}
	return union
}

// Validate checks the options for internal consistency.
func (o *AssetPluginOptions) Validate() error {
	var errs []error

	if o.ManifestPath == "" {
		errs = append(errs, errors.New("manifest path is required"))
	}
	if len(o.Rules) == 0 {
		errs = append(errs, errors.New("at least one rule is required"))
	}
	for i, rule := range o.Rules {
		if len(rule.Extensions) == 0 {
			errs = append(errs, fmt.Errorf("rule %d (%s): extensions must not be empty", i, rule.Name))
		}
		for _, ext := range rule.Extensions {
			if ext == "" {
				errs = append(errs, fmt.Errorf("rule %d (%s): empty extension", i, rule.Name))
			}
		}
		if !rule.ExportedNameCase.Valid() {
			errs = append(errs, fmt.Errorf("rule %d (%s): unknown exportedNameCase %q", i, rule.Name, rule.ExportedNameCase))
		}
	}
	for _, ext := range o.Extensions {
		claimed := false
		for i := range o.Rules {
			if slices.Contains(o.Rules[i].Extensions, ext) {
				claimed = true
				break
			}
		}
		if !claimed {
			errs = append(errs, fmt.Errorf("extension %q is not claimed by any rule", ext))
		}
	}
	if len(o.Include) == 0 {
		errs = append(errs, errors.New("include must list at least one pattern"))
	}
	for _, pattern := range append(slices.Clone(o.Include), o.Exclude...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			errs = append(errs, fmt.Errorf("invalid glob pattern: %s", pattern))
		}
	}
	switch o.IncrementalMatch {
	case LastMatch, FirstMatch:
	default:
		errs = append(errs, fmt.Errorf("unknown incrementalMatch %q", o.IncrementalMatch))
	}

	return errors.Join(errs...)
}
