package match

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lexandro/assetmod-mcp/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = filepath.FromSlash("/project")

func abs(rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func testOptions(exclude ...string) *option.AssetPluginOptions {
	rules := []option.SuggestionRule{
		{Name: "images", Extensions: []string{".png", ".svg"}, ExportedNameCase: option.CamelCase, ExportedNamePrefix: "I_"},
		{Name: "vectors", Extensions: []string{".svg"}, ExportedNameCase: option.PascalCase, ExportedNamePrefix: "V_"},
		{Name: "fonts", Extensions: []string{".woff2"}, ExportedNameCase: option.ConstantCase, ExportedNamePrefix: "F_"},
	}
	return &option.AssetPluginOptions{
		ManifestPath:     filepath.Join(root, "tsconfig.json"),
		Rules:            rules,
		Extensions:       option.UnionExtensions(rules),
		Include:          []string{"**/*"},
		Exclude:          exclude,
		IncrementalMatch: option.LastMatch,
	}
}

func newTestMatcher(t *testing.T, opts *option.AssetPluginOptions) *Matcher {
	t.Helper()
	m, err := NewMatcher(opts)
	require.NoError(t, err)
	return m
}

func Test_Classify_FirstRuleWins(t *testing.T) {
	opts := testOptions()

	rule, err := Classify(abs("assets/icon.svg"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "images", rule.Name)
}

func Test_Classify_NonAssetExtension(t *testing.T) {
	opts := testOptions()

	rule, err := Classify(abs("src/index.ts"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func Test_Classify_IncludeAndExclude(t *testing.T) {
	opts := testOptions("assets/generated")
	opts.Include = []string{"assets"}

	rule, err := Classify(abs("assets/logo.png"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	assert.NotNil(t, rule)

	rule, err = Classify(abs("public/logo.png"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	assert.Nil(t, rule, "outside include")

	rule, err = Classify(abs("assets/generated/logo.png"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	assert.Nil(t, rule, "excluded")
}

func Test_Classify_InvalidPattern(t *testing.T) {
	opts := testOptions()
	_, err := Classify(abs("a.png"), opts.Rules, []string{"[bad"}, nil, root)
	assert.Error(t, err)
}

func Test_Classify_AgreesWithMatcherOnImplicitDirs(t *testing.T) {
	opts := testOptions()
	m := newTestMatcher(t, opts)

	for _, rel := range []string{"node_modules/pkg/logo.png", ".cache/logo.png", "assets/logo.png"} {
		free, err := Classify(abs(rel), opts.Rules, opts.Include, opts.Exclude, root)
		require.NoError(t, err)
		bound, err := m.Classify(abs(rel))
		require.NoError(t, err)
		assert.Equal(t, bound, free, rel)
	}

	rule, err := Classify(abs("node_modules/pkg/logo.png"), opts.Rules, opts.Include, opts.Exclude, root)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func Test_Matcher_Classify(t *testing.T) {
	opts := testOptions()
	m := newTestMatcher(t, opts)

	rule, err := m.Classify(abs("fonts/inter.woff2"))
	require.NoError(t, err)
	assert.Same(t, &opts.Rules[2], rule)

	// Second lookup is served from the cache and must agree
	rule, err = m.Classify(abs("fonts/inter.woff2"))
	require.NoError(t, err)
	assert.Same(t, &opts.Rules[2], rule)

	rule, err = m.Classify(abs("src/index.ts"))
	require.NoError(t, err)
	assert.Nil(t, rule)

	rule, err = m.Classify(abs("node_modules/pkg/logo.png"))
	require.NoError(t, err)
	assert.Nil(t, rule, "wildcards never enter node_modules")
}

func Test_Matcher_Classify_Unreachable(t *testing.T) {
	opts := testOptions()
	opts.Extensions = append(opts.Extensions, ".gif")
	m := newTestMatcher(t, opts)

	_, err := m.Classify(abs("assets/anim.gif"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func Test_Matcher_MatchesRule(t *testing.T) {
	opts := testOptions("dist")
	m := newTestMatcher(t, opts)

	assert.True(t, m.MatchesRule(abs("a/icon.svg"), &opts.Rules[0]))
	assert.True(t, m.MatchesRule(abs("a/icon.svg"), &opts.Rules[1]))
	assert.False(t, m.MatchesRule(abs("a/icon.svg"), &opts.Rules[2]))
	assert.False(t, m.MatchesRule(abs("dist/icon.svg"), &opts.Rules[0]))
}

func Test_Matcher_PatternsAreAbsolute(t *testing.T) {
	m := newTestMatcher(t, testOptions("dist"))

	assert.Equal(t, []string{"/project/**/*"}, m.IncludePatterns())
	assert.Equal(t, []string{"/project/dist"}, m.ExcludePatterns())
	assert.Equal(t, []string{".png", ".svg", ".woff2"}, m.Extensions())
	assert.Equal(t, root, m.Root())
}

func Test_Matcher_ExcludedDir(t *testing.T) {
	m := newTestMatcher(t, testOptions("dist"))

	assert.True(t, m.ExcludedDir(abs("dist")))
	assert.True(t, m.ExcludedDir(abs(".git")))
	assert.False(t, m.ExcludedDir(abs("assets")))
	assert.False(t, m.ExcludedDir(root))
}
