// Package assets maintains the mapping from asset file paths to the suggestion
// rule that matched them, and keeps it in step with the filesystem.
package assets

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lexandro/assetmod-mcp/option"
)

// Reader is the read side of the registry handed to consumers.
type Reader interface {
	List() []string
	Contains(path string) bool
	Lookup(path string) *option.SuggestionRule
}

// Registry maps absolute asset paths to their matched rule.
// Reads are safe from any goroutine; writes happen only through a Synchronizer.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*option.SuggestionRule
	sortedPaths []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*option.SuggestionRule),
		sortedPaths: make([]string, 0),
	}
}

// List returns every asset path in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.sortedPaths))
	copy(out, r.sortedPaths)
	return out
}

// Contains reports whether path is a known asset.
func (r *Registry) Contains(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[path]
	return ok
}

// Lookup returns the rule that matched path, or nil.
func (r *Registry) Lookup(path string) *option.SuggestionRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[path]
}

// Len returns the number of assets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns path -> rule name for diagnostics.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries))
	for path, rule := range r.entries {
		out[path] = rule.Name
	}
	return out
}

// RuleCounts returns rule name -> number of assets matched by it.
func (r *Registry) RuleCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, rule := range r.entries {
		counts[rule.Name]++
	}
	return counts
}

// set stores or replaces the rule for path, keeping the path list sorted.
func (r *Registry) set(path string, rule *option.SuggestionRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.entries[path]
	r.entries[path] = rule
	if !exists {
		idx := sort.SearchStrings(r.sortedPaths, path)
		r.sortedPaths = append(r.sortedPaths, "")
		copy(r.sortedPaths[idx+1:], r.sortedPaths[idx:])
		r.sortedPaths[idx] = path
	}
}

// remove drops path; unknown paths are ignored.
func (r *Registry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[path]; !exists {
		return
	}
	delete(r.entries, path)

	idx := sort.SearchStrings(r.sortedPaths, path)
	if idx < len(r.sortedPaths) && r.sortedPaths[idx] == path {
		r.sortedPaths = append(r.sortedPaths[:idx], r.sortedPaths[idx+1:]...)
	}
}

// under returns the asset paths located below dir.
func (r *Registry) under(dir string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	var out []string
	for idx := sort.SearchStrings(r.sortedPaths, prefix); idx < len(r.sortedPaths); idx++ {
		if !strings.HasPrefix(r.sortedPaths[idx], prefix) {
			break
		}
		out = append(out, r.sortedPaths[idx])
	}
	return out
}

// apply performs one change.
func (r *Registry) apply(change Change) {
	switch change.Op {
	case OpUpsert:
		r.set(change.Path, change.Rule)
	case OpDelete:
		r.remove(change.Path)
	}
}
