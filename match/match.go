// Package match decides whether a file path belongs to the project's asset
// surface and which suggestion rule governs it.
package match

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lexandro/assetmod-mcp/glob"
	"github.com/lexandro/assetmod-mcp/ignore"
	"github.com/lexandro/assetmod-mcp/option"
)

// ErrUnreachable marks a configuration inconsistency: a path passed the union
// extension filter but no rule claims it. It is fatal and never a validation error.
var ErrUnreachable = errors.New("unreachable")

func unreachable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnreachable, fmt.Sprintf(format, args...))
}

const cacheSize = 4096

// Classify returns the first rule, in configured order, that governs filePath,
// or nil when the file is not an asset. include and exclude are resolved
// relative to projectRoot. Paths under implicitly skipped directories are
// never assets, as with Matcher.Classify.
func Classify(filePath string, rules []option.SuggestionRule, include []string, exclude []string, projectRoot string) (*option.SuggestionRule, error) {
	includeSet, err := glob.NewSet(projectRoot, include, glob.Include)
	if err != nil {
		return nil, err
	}
	ignoreMatcher, err := ignore.NewMatcher(ignore.MatcherOptions{RootDir: projectRoot, Exclude: exclude})
	if err != nil {
		return nil, err
	}
	extensions := option.UnionExtensions(rules)
	if !hasExtension(filePath, extensions) || !includeSet.Match(filePath) || ignoreMatcher.ShouldIgnore(filePath) {
		return nil, nil
	}
	return firstClaim(filePath, rules, extensions)
}

// Matcher is the precompiled form of Classify bound to one set of options.
// Results are cached per path; the cache is dropped on Reload.
type Matcher struct {
	options    *option.AssetPluginOptions
	include    glob.Set
	ignore     *ignore.Matcher
	extensions []string
	cache      *lru.Cache[string, int]
}

// NewMatcher compiles the include/exclude patterns of options.
func NewMatcher(options *option.AssetPluginOptions) (*Matcher, error) {
	root := options.ProjectRoot()
	include, err := glob.NewSet(root, options.Include, glob.Include)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}
	ignoreMatcher, err := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:      root,
		Exclude:      options.Exclude,
		UseGitignore: options.RespectGitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}
	cache, err := lru.New[string, int](cacheSize)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		options:    options,
		include:    include,
		ignore:     ignoreMatcher,
		extensions: options.Extensions,
		cache:      cache,
	}, nil
}

// Classify returns the first matching rule for path, nil when path is not an asset.
func (m *Matcher) Classify(path string) (*option.SuggestionRule, error) {
	if idx, ok := m.cache.Get(path); ok {
		if idx < 0 {
			return nil, nil
		}
		return &m.options.Rules[idx], nil
	}

	if !hasExtension(path, m.extensions) || !m.Selected(path) {
		m.cache.Add(path, -1)
		return nil, nil
	}
	rule, err := firstClaim(path, m.options.Rules, m.extensions)
	if err != nil {
		return nil, err
	}
	m.cache.Add(path, m.ruleIndex(rule))
	return rule, nil
}

// MatchesRule reports whether path has one of rule's extensions and passes
// the include and exclude filters.
func (m *Matcher) MatchesRule(path string, rule *option.SuggestionRule) bool {
	return rule.Claims(path) && m.Selected(path)
}

// Selected reports whether path is selected by include and not rejected by exclude.
func (m *Matcher) Selected(path string) bool {
	return m.include.Match(path) && !m.ignore.ShouldIgnore(path)
}

// ExcludedDir reports whether a directory is pruned from scans and watches.
func (m *Matcher) ExcludedDir(dir string) bool {
	return m.ignore.ShouldIgnoreDir(dir)
}

// ShouldIgnoreDir lets the matcher act as a watcher ignore checker.
func (m *Matcher) ShouldIgnoreDir(dir string) bool {
	return m.ExcludedDir(dir)
}

// ShouldIgnore lets the matcher act as a watcher ignore checker. Only excluded
// paths are ignored; non-asset files still reach the registry so that
// deletions are seen.
func (m *Matcher) ShouldIgnore(path string) bool {
	return m.ignore.ShouldIgnore(path)
}

// Rules returns the configured rules in order.
func (m *Matcher) Rules() []option.SuggestionRule {
	return m.options.Rules
}

// Extensions returns the union extension set.
func (m *Matcher) Extensions() []string {
	return m.extensions
}

// Root returns the project root directory.
func (m *Matcher) Root() string {
	return m.options.ProjectRoot()
}

// IncludePatterns returns include patterns resolved to absolute paths.
func (m *Matcher) IncludePatterns() []string {
	return m.include.Strings()
}

// ExcludePatterns returns exclude patterns resolved to absolute paths.
func (m *Matcher) ExcludePatterns() []string {
	return m.ignore.Patterns()
}

// IsIgnoreFile reports whether path is an ignore file whose change requires Reload.
func (m *Matcher) IsIgnoreFile(path string) bool {
	return m.ignore.IsIgnoreFile(path)
}

// Reload re-reads ignore files and drops cached classifications.
func (m *Matcher) Reload() {
	m.ignore.Reload()
	m.cache.Purge()
}

func (m *Matcher) ruleIndex(rule *option.SuggestionRule) int {
	for i := range m.options.Rules {
		if &m.options.Rules[i] == rule {
			return i
		}
	}
	return -1
}

func firstClaim(path string, rules []option.SuggestionRule, extensions []string) (*option.SuggestionRule, error) {
	for i := range rules {
		if rules[i].Claims(path) {
			return &rules[i], nil
		}
	}
	return nil, unreachable("rule not found for %s (extensions %v)", path, extensions)
}

func hasExtension(path string, extensions []string) bool {
	probe := option.SuggestionRule{Extensions: extensions}
	return probe.Claims(path)
}
