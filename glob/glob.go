// Package glob matches absolute file paths against include/exclude patterns
// that are written relative to a base directory.
//
// Patterns use doublestar syntax (*, ?, **, [...], {a,b}). A pattern is split
// into a literal directory prefix and a wildcard remainder so that special
// characters in the base directory itself never act as wildcards.
package glob

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind selects include or exclude semantics for a pattern.
type Kind int

const (
	// Include selects files. A pattern whose last segment has no wildcard and
	// no extension names a directory and selects everything below it.
	Include Kind = iota
	// Exclude rejects the matched path and everything below it.
	Exclude
)

// Pattern is a single resolved pattern.
type Pattern struct {
	source  string // absolute pattern, forward slashes
	literal string // absolute OS path of the wildcard-free prefix
	rest    string // wildcard remainder relative to literal, may be empty
	kind    Kind
	dirLike bool
}

// NewPattern resolves pattern against baseDir. Absolute patterns are kept as-is.
func NewPattern(baseDir string, pattern string, kind Kind) (Pattern, error) {
	resolved := pattern
	if !filepath.IsAbs(filepath.FromSlash(pattern)) {
		resolved = filepath.Join(baseDir, filepath.FromSlash(pattern))
	}
	source := filepath.ToSlash(filepath.Clean(resolved))
	if !doublestar.ValidatePattern(source) {
		return Pattern{}, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	segments := strings.Split(source, "/")
	split := len(segments)
	for i, segment := range segments {
		if hasMeta(segment) {
			split = i
			break
		}
	}
	literal := strings.Join(segments[:split], "/")
	if literal == "" {
		literal = "/"
	}

	last := segments[len(segments)-1]
	return Pattern{
		source:  source,
		literal: filepath.FromSlash(literal),
		rest:    strings.Join(segments[split:], "/"),
		kind:    kind,
		dirLike: !hasMeta(last) && path.Ext(last) == "",
	}, nil
}

// String returns the absolute pattern.
func (p Pattern) String() string {
	return p.source
}

// Match reports whether the absolute path is selected (Include) or rejected (Exclude).
func (p Pattern) Match(absPath string) bool {
	rel, ok := relativeTo(p.literal, absPath)
	if !ok {
		return false
	}

	if p.kind == Exclude {
		if p.rest == "" {
			return true
		}
		return matchAny(rel, p.rest, p.rest+"/**")
	}

	if p.rest == "" {
		// Literal file or directory.
		return rel == "" || p.dirLike
	}
	if p.dirLike {
		return matchAny(rel, p.rest+"/**/*")
	}
	return matchAny(rel, p.rest)
}

// CouldContain reports whether a directory may hold paths this pattern matches.
// Used to prune directory walks.
func (p Pattern) CouldContain(dir string) bool {
	if _, ok := relativeTo(p.literal, dir); ok {
		return true
	}
	_, ok := relativeTo(dir, p.literal)
	return ok
}

// Set is an ordered list of patterns of the same kind.
type Set []Pattern

// NewSet resolves every pattern against baseDir.
func NewSet(baseDir string, patterns []string, kind Kind) (Set, error) {
	set := make(Set, 0, len(patterns))
	for _, raw := range patterns {
		p, err := NewPattern(baseDir, raw, kind)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Match reports whether any pattern matches.
func (s Set) Match(absPath string) bool {
	for _, p := range s {
		if p.Match(absPath) {
			return true
		}
	}
	return false
}

// CouldContain reports whether any pattern may match below dir.
func (s Set) CouldContain(dir string) bool {
	for _, p := range s {
		if p.CouldContain(dir) {
			return true
		}
	}
	return false
}

// Strings returns the absolute patterns.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.source
	}
	return out
}

// relativeTo returns target relative to base with forward slashes, "" when
// they are equal. ok is false when target is not inside base.
func relativeTo(base string, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

func matchAny(rel string, patterns ...string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func hasMeta(segment string) bool {
	return strings.ContainsAny(segment, "*?[{")
}
