package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/lexandro/assetmod-mcp/glob"
)

// Matcher determines whether a path is excluded from the asset surface.
// It combines the configured exclude patterns, the implicit directories skipped
// by wildcard traversal and, optionally, the project's .gitignore.
// Thread-safe: Reload() acquires a write lock, ShouldIgnore()/ShouldIgnoreDir() acquire a read lock.
type Matcher struct {
	mu           sync.RWMutex
	rootDir      string
	exclude      glob.Set
	useGitignore bool
	gitIgnore    gitignore.GitIgnore
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir string
	// Exclude patterns are resolved relative to RootDir.
	Exclude      []string
	UseGitignore bool
}

// NewMatcher creates an ignore matcher. It fails only on invalid exclude patterns.
func NewMatcher(options MatcherOptions) (*Matcher, error) {
	exclude, err := glob.NewSet(options.RootDir, options.Exclude, glob.Exclude)
	if err != nil {
		return nil, err
	}

	matcher := &Matcher{
		rootDir:      options.RootDir,
		exclude:      exclude,
		useGitignore: options.UseGitignore,
	}
	if matcher.useGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}
	return matcher, nil
}

// ShouldIgnore returns true if the given absolute path is excluded.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.exclude.Match(absolutePath) {
		return true
	}

	// Every directory component below the root must be enterable
	parts := strings.Split(relativePath, "/")
	for _, part := range parts[:len(parts)-1] {
		if isImplicitDir(part) {
			return true
		}
	}

	if m.gitIgnore != nil && relativePath != "." && !strings.HasPrefix(relativePath, "../") {
		isDir := false
		if info, err := os.Stat(absolutePath); err == nil {
			isDir = info.IsDir()
		}
		// Relative() doesn't require the file to exist on disk
		match := m.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return false
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely
// during traversal and watching.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if filepath.Clean(absolutePath) == filepath.Clean(m.rootDir) {
		return false
	}
	if isImplicitDir(filepath.Base(absolutePath)) {
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// Patterns returns the absolute exclude patterns.
func (m *Matcher) Patterns() []string {
	return m.exclude.Strings()
}

// Reload re-reads .gitignore from disk. It is a no-op when gitignore support is off.
func (m *Matcher) Reload() {
	if !m.useGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// IsIgnoreFile reports whether path is the ignore file this matcher reads.
func (m *Matcher) IsIgnoreFile(absolutePath string) bool {
	return m.useGitignore && absolutePath == filepath.Join(m.rootDir, ".gitignore")
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
