package assets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/assetmod-mcp/match"
	"github.com/lexandro/assetmod-mcp/option"
)

// FileSystem is the set of filesystem primitives the synchronizer relies on.
type FileSystem interface {
	FileExists(path string) bool
	DirectoryExists(path string) bool
	// ReadDirectory lists files below root whose name ends with one of
	// extensions, selected by include and not rejected by exclude (absolute
	// patterns). depth 0 means unlimited.
	ReadDirectory(root string, extensions []string, exclude []string, include []string, depth int) ([]string, error)
}

// DirectoryWatcher delivers change notifications for paths below dir.
// Callbacks must not run concurrently.
type DirectoryWatcher interface {
	WatchDirectory(dir string, recursive bool, excludeDirectories []string, callback func(path string)) (io.Closer, error)
}

// VerifyResult holds the outcome of a registry verification run.
type VerifyResult struct {
	MissingFiles      int // on disk but not in the registry
	StaleFiles        int // in the registry but not on disk
	ReclassifiedFiles int // stored rule no longer matches
	Duration          time.Duration
}

// Synchronizer is the single writer of a Registry.
type Synchronizer struct {
	mu        sync.Mutex
	registry  *Registry
	matcher   *match.Matcher
	fs        FileSystem
	policy    option.MatchPolicy
	logger    *slog.Logger
	onDirty   func()
	observers []func(Change)
	watch     io.Closer
}

// NewSynchronizer creates a synchronizer writing into registry.
func NewSynchronizer(registry *Registry, matcher *match.Matcher, fs FileSystem, policy option.MatchPolicy, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		registry: registry,
		matcher:  matcher,
		fs:       fs,
		policy:   policy,
		logger:   logger,
	}
}

// OnDirty sets the hook called once after every callback that mutated the registry.
func (s *Synchronizer) OnDirty(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDirty = fn
}

// Observe registers fn to receive every applied change.
func (s *Synchronizer) Observe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Seed fills the registry from a full scan of the project root. Running it
// again on an unchanged tree leaves the registry unchanged.
func (s *Synchronizer) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, changes, err := s.rescanLocked()
	if err != nil {
		return err
	}
	s.notifyLocked(changes)
	s.logger.Info("asset registry seeded", "root", s.matcher.Root(), "assets", s.registry.Len())
	return nil
}

// Watch installs the recursive directory watch. Configured exclude
// directories are not watched at all.
func (s *Synchronizer) Watch(watcher DirectoryWatcher) error {
	closer, err := watcher.WatchDirectory(s.matcher.Root(), true, s.matcher.ExcludePatterns(), s.HandleChange)
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.matcher.Root(), err)
	}
	s.mu.Lock()
	s.watch = closer
	s.mu.Unlock()
	return nil
}

// HandleChange is the watch callback: it reconciles the changed path, mutates
// the registry and marks the host dirty. The dirty hook runs exactly once per
// call, whether or not the registry changed.
func (s *Synchronizer) HandleChange(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change
	switch {
	case s.matcher.IsIgnoreFile(path):
		s.matcher.Reload()
		_, rescanned, err := s.rescanLocked()
		if err != nil {
			s.logger.Error("rescan after ignore file change failed", "path", path, "error", err)
		}
		changes = rescanned
		s.logger.Info("reloaded ignore rules", "trigger", path)

	case s.fs.DirectoryExists(path):
		changes = s.reconcileTreeLocked(path)

	default:
		exists := s.fs.FileExists(path)
		changes = s.reconcileLocked(path, exists)
		if !exists {
			for _, child := range s.registry.under(path) {
				changes = append(changes, s.reconcileLocked(child, false)...)
			}
		}
	}

	s.logger.Debug("watch callback",
		"path", path,
		"changes", len(changes),
		"assets", s.registry.Len(),
	)

	if len(changes) > 0 {
		s.notifyLocked(changes)
	}
	// Script files are tracked by the project, so it refreshes on every callback.
	if s.onDirty != nil {
		s.onDirty()
	}
}

// Verify compares the registry with a fresh scan and repairs any drift.
func (s *Synchronizer) Verify() (VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, changes, err := s.rescanLocked()
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}
	if len(changes) > 0 {
		s.notifyLocked(changes)
		if s.onDirty != nil {
			s.onDirty()
		}
	}
	return result, nil
}

// Close stops watching.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch == nil {
		return nil
	}
	err := s.watch.Close()
	s.watch = nil
	return err
}

// rescanLocked brings the registry in line with a full scan. An existing
// entry whose stored rule still matches is kept even if the first-match rule
// differs, so incremental decisions survive verification.
func (s *Synchronizer) rescanLocked() (VerifyResult, []Change, error) {
	var result VerifyResult

	found, err := s.scan(s.matcher.Root())
	if err != nil {
		return result, nil, err
	}

	var changes []Change
	for path, rule := range found {
		previous := s.registry.Lookup(path)
		switch {
		case previous == nil:
			result.MissingFiles++
		case previous == rule || s.matcher.MatchesRule(path, previous):
			continue
		default:
			result.ReclassifiedFiles++
		}
		change := Change{Op: OpUpsert, Path: path, Rule: rule, Previous: previous}
		s.registry.apply(change)
		changes = append(changes, change)
	}
	for _, path := range s.registry.List() {
		if _, ok := found[path]; ok {
			continue
		}
		change := Change{Op: OpDelete, Path: path, Previous: s.registry.Lookup(path)}
		s.registry.apply(change)
		changes = append(changes, change)
		result.StaleFiles++
	}
	return result, changes, nil
}

// scan lists and classifies every asset below dir, first rule wins.
func (s *Synchronizer) scan(dir string) (map[string]*option.SuggestionRule, error) {
	paths, err := s.fs.ReadDirectory(dir, s.matcher.Extensions(), s.matcher.ExcludePatterns(), s.matcher.IncludePatterns(), 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	found := make(map[string]*option.SuggestionRule, len(paths))
	for _, path := range paths {
		rule, err := s.matcher.Classify(path)
		if err != nil {
			if errors.Is(err, match.ErrUnreachable) {
				return nil, err
			}
			return nil, fmt.Errorf("classifying %s: %w", path, err)
		}
		if rule != nil {
			found[path] = rule
		}
	}
	return found, nil
}

// reconcileTreeLocked handles a directory that appeared: each asset below it
// is treated as its own change notification.
func (s *Synchronizer) reconcileTreeLocked(dir string) []Change {
	if s.matcher.ExcludedDir(dir) {
		return nil
	}
	paths, err := s.fs.ReadDirectory(dir, s.matcher.Extensions(), s.matcher.ExcludePatterns(), s.matcher.IncludePatterns(), 0)
	if err != nil {
		s.logger.Warn("failed to read new directory", "path", dir, "error", err)
		return nil
	}
	var changes []Change
	for _, path := range paths {
		changes = append(changes, s.reconcileLocked(path, true)...)
	}
	return changes
}

func (s *Synchronizer) reconcileLocked(path string, exists bool) []Change {
	change := Reconcile(s.registry, path, exists, s.matcher, s.policy)
	if change.Op == OpNone {
		return nil
	}
	s.registry.apply(change)
	return []Change{change}
}

func (s *Synchronizer) notifyLocked(changes []Change) {
	for _, observer := range s.observers {
		for _, change := range changes {
			observer(change)
		}
	}
}
