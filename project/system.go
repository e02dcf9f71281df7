package project

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexandro/assetmod-mcp/glob"
	"github.com/lexandro/assetmod-mcp/ignore"
	"github.com/lexandro/assetmod-mcp/watcher"
)

// OSSystem is the real filesystem. It satisfies the adapter's System and
// directory watch contracts.
type OSSystem struct {
	logger *slog.Logger
}

// NewOSSystem creates an OSSystem.
func NewOSSystem(logger *slog.Logger) *OSSystem {
	return &OSSystem{logger: logger}
}

// FileExists reports whether path exists and is not a directory.
func (s *OSSystem) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirectoryExists reports whether path exists and is a directory.
func (s *OSSystem) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadDirectory walks root and returns, sorted, every file whose name ends
// with one of extensions, matched by include and not by exclude. Patterns
// are absolute or relative to root. Implicit directories (node_modules,
// dot-directories) are skipped. depth limits how many directory levels below
// root are entered; 0 means unlimited.
func (s *OSSystem) ReadDirectory(root string, extensions []string, exclude []string, include []string, depth int) ([]string, error) {
	includeSet, err := glob.NewSet(root, include, glob.Include)
	if err != nil {
		return nil, err
	}
	skip, err := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root, Exclude: exclude})
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // Skip entries that can't be read
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if skip.ShouldIgnoreDir(path) || !includeSet.CouldContain(path) {
				return filepath.SkipDir
			}
			if depth > 0 && levelsBelow(root, path) >= depth {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if !hasSuffix(path, extensions) || skip.ShouldIgnore(path) || !includeSet.Match(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// WatchDirectory watches dir recursively and calls callback for every changed
// path, one at a time from a single goroutine. Directories matched by
// excludeDirectories are neither watched nor reported.
func (s *OSSystem) WatchDirectory(dir string, recursive bool, excludeDirectories []string, callback func(path string)) (io.Closer, error) {
	checker, err := ignore.NewMatcher(ignore.MatcherOptions{RootDir: dir, Exclude: excludeDirectories})
	if err != nil {
		return nil, err
	}
	var filter watcher.IgnoreChecker = checker
	if !recursive {
		filter = shallow{IgnoreChecker: checker, root: dir}
	}

	w, err := watcher.NewWatcher(dir, filter, s.logger)
	if err != nil {
		return nil, err
	}
	go w.Start()
	go func() {
		for {
			select {
			case batch := <-w.Events():
				for _, event := range batch {
					s.logger.Debug("file change", "path", event.Path, "op", event.Op)
					callback(event.Path)
				}
			case <-w.Done():
				return
			}
		}
	}()
	return w, nil
}

// shallow restricts a watch to the root directory itself.
type shallow struct {
	watcher.IgnoreChecker
	root string
}

func (s shallow) ShouldIgnoreDir(path string) bool {
	return filepath.Clean(path) != filepath.Clean(s.root)
}

func levelsBelow(root string, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func hasSuffix(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
