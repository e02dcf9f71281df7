package host

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/lexandro/assetmod-mcp/match"
	"github.com/lexandro/assetmod-mcp/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = filepath.FromSlash("/project")

func abs(rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// fakeProject records calls and serves fixed answers.
type fakeProject struct {
	scripts     []string
	dirtyCalls  int
	updateCalls int
	written     map[string]string
	settings    CompilerOptions
}

func (p *fakeProject) GetNewLine() string              { return "\n" }
func (p *fakeProject) UseCaseSensitiveFileNames() bool { return true }
func (p *fakeProject) ReadFile(path string) (string, bool) {
	if path == abs("src/index.ts") {
		return "export {}", true
	}
	return "", false
}
func (p *fakeProject) WriteFile(path string, content string) error {
	if p.written == nil {
		p.written = make(map[string]string)
	}
	p.written[path] = content
	return nil
}
func (p *fakeProject) FileExists(path string) bool         { return path == abs("src/index.ts") }
func (p *fakeProject) DirectoryExists(path string) bool    { return path == abs("src") }
func (p *fakeProject) GetDirectories(path string) []string { return []string{"assets", "src"} }
func (p *fakeProject) ReadDirectory(path string, extensions []string, exclude []string, include []string, depth int) []string {
	return []string{abs("src/index.ts")}
}
func (p *fakeProject) GetCompilationSettings() CompilerOptions { return p.settings }
func (p *fakeProject) GetCurrentDirectory() string             { return root }
func (p *fakeProject) GetDefaultLibFileName() string           { return "lib.d.ts" }
func (p *fakeProject) GetProjectVersion() string               { return "7" }
func (p *fakeProject) GetProjectReferences() []ProjectReference {
	return []ProjectReference{{Path: abs("../shared")}}
}
func (p *fakeProject) GetScriptFileNames() []string            { return p.scripts }
func (p *fakeProject) GetScriptVersion(fileName string) string { return "1" }
func (p *fakeProject) GetScriptSnapshot(fileName string) ScriptSnapshot {
	return StringSnapshot("export {}")
}
func (p *fakeProject) ProjectName() string { return abs("tsconfig.json") }
func (p *fakeProject) MarkAsDirty()        { p.dirtyCalls++ }
func (p *fakeProject) UpdateGraph() bool {
	p.updateCalls++
	return true
}

type realpathProject struct {
	fakeProject
}

func (p *realpathProject) Realpath(path string) string { return "/real" + path }

// fakeSystem is an in-memory filesystem that can optionally watch.
type fakeSystem struct {
	files map[string]bool
}

func newFakeSystem(rel ...string) *fakeSystem {
	s := &fakeSystem{files: make(map[string]bool)}
	for _, r := range rel {
		s.files[abs(r)] = true
	}
	return s
}

func (s *fakeSystem) FileExists(path string) bool      { return s.files[path] }
func (s *fakeSystem) DirectoryExists(path string) bool { return false }
func (s *fakeSystem) ReadDirectory(dir string, extensions []string, exclude []string, include []string, depth int) ([]string, error) {
	var out []string
	for path := range s.files {
		for _, ext := range extensions {
			if strings.HasPrefix(path, dir) && strings.HasSuffix(path, ext) {
				out = append(out, path)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type watchingSystem struct {
	*fakeSystem
	callback func(string)
}

func (s *watchingSystem) WatchDirectory(dir string, recursive bool, excludeDirectories []string, callback func(path string)) (io.Closer, error) {
	s.callback = callback
	return io.NopCloser(nil), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngOptions(t *testing.T, project Project) *option.AssetPluginOptions {
	t.Helper()
	raw, err := option.ParseRaw([]byte(`{"include": ["**/*"], "extensions": [".png"], "exportedNameCase": "camelCase"}`))
	require.NoError(t, err)
	opts := ParseOptions(project, raw)
	return &opts
}

func newTestHost(t *testing.T, project Project, system *watchingSystem) *AssetHost {
	t.Helper()
	h, err := New(project, system, pngOptions(t, project), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func Test_AssetHost_Scenario_ScanAndQueries(t *testing.T) {
	project := &fakeProject{scripts: []string{abs("src/index.ts")}}
	system := &watchingSystem{fakeSystem: newFakeSystem("assets/logo.png", "src/index.ts")}
	h := newTestHost(t, project, system)

	assert.Equal(t, []string{abs("assets/logo.png")}, h.GetAssetFileNames())

	rule := h.GetMatchedSuggestionRule(abs("assets/logo.png"))
	require.NotNil(t, rule)
	assert.Equal(t, []string{".png"}, rule.Extensions)
	assert.Equal(t, option.CamelCase, rule.ExportedNameCase)

	assert.True(t, h.IsAssetFile(abs("assets/logo.png")))
	assert.False(t, h.IsAssetFile(abs("src/index.ts")))
	assert.Nil(t, h.GetMatchedSuggestionRule(abs("src/index.ts")))
	assert.Equal(t, 0, project.dirtyCalls)
}

func Test_AssetHost_Scenario_DeleteNotification(t *testing.T) {
	project := &fakeProject{scripts: []string{abs("src/index.ts")}}
	system := &watchingSystem{fakeSystem: newFakeSystem("assets/logo.png", "src/index.ts")}
	h := newTestHost(t, project, system)

	delete(system.files, abs("assets/logo.png"))
	system.callback(abs("assets/logo.png"))

	assert.Empty(t, h.GetAssetFileNames())
	assert.Equal(t, 1, project.dirtyCalls)
	assert.Equal(t, 1, project.updateCalls)
}

func Test_AssetHost_ScriptChangeRefreshesProject(t *testing.T) {
	project := &fakeProject{scripts: []string{abs("src/index.ts")}}
	system := &watchingSystem{fakeSystem: newFakeSystem("assets/logo.png", "src/index.ts")}
	h := newTestHost(t, project, system)

	system.files[abs("src/extra.ts")] = true
	system.callback(abs("src/extra.ts"))

	assert.Equal(t, []string{abs("assets/logo.png")}, h.GetAssetFileNames())
	assert.Equal(t, 1, project.dirtyCalls)
	assert.Equal(t, 1, project.updateCalls)
}

func Test_AssetHost_GetScriptFileNames_IsUnion(t *testing.T) {
	project := &fakeProject{scripts: []string{abs("src/index.ts"), abs("src/app.ts")}}
	system := &watchingSystem{fakeSystem: newFakeSystem("assets/logo.png", "assets/bg.png")}
	h := newTestHost(t, project, system)

	got := h.GetScriptFileNames()

	assert.Equal(t, []string{
		abs("src/index.ts"),
		abs("src/app.ts"),
		abs("assets/bg.png"),
		abs("assets/logo.png"),
	}, got)
	assert.Subset(t, got, project.GetScriptFileNames())
	assert.Subset(t, got, h.GetAssetFileNames())
}

func Test_AssetHost_DelegatesEverything(t *testing.T) {
	project := &fakeProject{settings: CompilerOptions{AllowArbitraryExtensions: true}}
	h := newTestHost(t, project, &watchingSystem{fakeSystem: newFakeSystem()})

	assert.Equal(t, "\n", h.GetNewLine())
	assert.True(t, h.UseCaseSensitiveFileNames())
	content, ok := h.ReadFile(abs("src/index.ts"))
	assert.True(t, ok)
	assert.Equal(t, "export {}", content)
	require.NoError(t, h.WriteFile(abs("out.txt"), "x"))
	assert.Equal(t, "x", project.written[abs("out.txt")])
	assert.True(t, h.FileExists(abs("src/index.ts")))
	assert.True(t, h.DirectoryExists(abs("src")))
	assert.Equal(t, []string{"assets", "src"}, h.GetDirectories(root))
	assert.Equal(t, []string{abs("src/index.ts")}, h.ReadDirectory(root, []string{".ts"}, nil, nil, 0))
	assert.True(t, h.GetCompilationSettings().AllowArbitraryExtensions)
	assert.Equal(t, root, h.GetCurrentDirectory())
	assert.Equal(t, "lib.d.ts", h.GetDefaultLibFileName())
	assert.Equal(t, "7", h.GetProjectVersion())
	assert.Len(t, h.GetProjectReferences(), 1)
	assert.Equal(t, "1", h.GetScriptVersion(abs("src/index.ts")))
	assert.Equal(t, 9, h.GetScriptSnapshot(abs("src/index.ts")).GetLength())

	assert.True(t, h.Options().AllowArbitraryExtensions, "inherited from compilation settings")
}

func Test_AssetHost_Realpath(t *testing.T) {
	plain := newTestHost(t, &fakeProject{}, &watchingSystem{fakeSystem: newFakeSystem()})
	_, ok := plain.Realpath("/a")
	assert.False(t, ok)

	resolving := newTestHost(t, &realpathProject{}, &watchingSystem{fakeSystem: newFakeSystem()})
	resolved, ok := resolving.Realpath("/a")
	assert.True(t, ok)
	assert.Equal(t, "/real/a", resolved)
}

func Test_AssetHost_RequiresWatchCapability(t *testing.T) {
	project := &fakeProject{}
	_, err := New(project, newFakeSystem(), pngOptions(t, project), testLogger())

	assert.True(t, errors.Is(err, ErrWatchUnavailable))
}

func Test_AssetHost_RejectsInvalidOptions(t *testing.T) {
	project := &fakeProject{}
	opts := pngOptions(t, project)
	opts.Include = nil

	_, err := New(project, &watchingSystem{fakeSystem: newFakeSystem()}, opts, testLogger())
	assert.Error(t, err)
}

func Test_AssetHost_UnclaimedExtensionIsFatal(t *testing.T) {
	project := &fakeProject{}
	opts := pngOptions(t, project)
	opts.Extensions = append(opts.Extensions, ".gif")
	system := &watchingSystem{fakeSystem: newFakeSystem("anim.gif")}

	_, err := New(project, system, opts, testLogger())
	assert.Error(t, err)

	// Without validation the matcher itself reports the file as unreachable
	m, err := match.NewMatcher(opts)
	require.NoError(t, err)
	_, err = m.Classify(abs("anim.gif"))
	assert.True(t, errors.Is(err, match.ErrUnreachable))
}

func Test_AssetHost_ObserveAndVerify(t *testing.T) {
	project := &fakeProject{}
	system := &watchingSystem{fakeSystem: newFakeSystem("a.png")}
	h := newTestHost(t, project, system)

	var seen []assets.Change
	h.Observe(func(c assets.Change) { seen = append(seen, c) })

	system.files[abs("b.png")] = true
	result, err := h.Verify()
	require.NoError(t, err)

	assert.Equal(t, 1, result.MissingFiles)
	require.Len(t, seen, 1)
	assert.Equal(t, assets.OpUpsert, seen[0].Op)
	assert.Equal(t, map[string]int{"default": 2}, h.RuleCounts())
	assert.Equal(t, 1, project.updateCalls)
}
