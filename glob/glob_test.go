package glob

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = filepath.FromSlash("/project")

func abs(rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func Test_Pattern_IncludeDoubleStar(t *testing.T) {
	p, err := NewPattern(root, "**/*", Include)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("logo.png")))
	assert.True(t, p.Match(abs("assets/deep/logo.png")))
	assert.False(t, p.Match(filepath.FromSlash("/elsewhere/logo.png")))
	assert.Equal(t, "/project/**/*", p.String())
}

func Test_Pattern_IncludeDirectoryShorthand(t *testing.T) {
	p, err := NewPattern(root, "assets", Include)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("assets/logo.png")))
	assert.True(t, p.Match(abs("assets/icons/x.svg")))
	assert.False(t, p.Match(abs("src/logo.png")))
	assert.False(t, p.Match(abs("assets-old/logo.png")))
}

func Test_Pattern_IncludeSingleDirectoryWildcard(t *testing.T) {
	p, err := NewPattern(root, "assets/*.png", Include)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("assets/logo.png")))
	assert.False(t, p.Match(abs("assets/icons/logo.png")))
	assert.False(t, p.Match(abs("assets/logo.svg")))
}

func Test_Pattern_IncludeLiteralFile(t *testing.T) {
	p, err := NewPattern(root, "assets/logo.png", Include)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("assets/logo.png")))
	assert.False(t, p.Match(abs("assets/logo.png.bak")))
}

func Test_Pattern_ExcludeCoversDescendants(t *testing.T) {
	p, err := NewPattern(root, "assets/generated", Exclude)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("assets/generated")))
	assert.True(t, p.Match(abs("assets/generated/a/b.png")))
	assert.False(t, p.Match(abs("assets/logo.png")))

	wild, err := NewPattern(root, "**/tmp", Exclude)
	require.NoError(t, err)
	assert.True(t, wild.Match(abs("a/tmp/x.png")))
	assert.False(t, wild.Match(abs("a/tmpfile.png")))
}

func Test_Pattern_AbsolutePatternKept(t *testing.T) {
	p, err := NewPattern(root, "/other/**/*.png", Include)
	require.NoError(t, err)

	assert.True(t, p.Match(filepath.FromSlash("/other/a/b.png")))
	assert.False(t, p.Match(abs("a/b.png")))
}

func Test_Pattern_Invalid(t *testing.T) {
	_, err := NewPattern(root, "src/[invalid", Include)
	assert.Error(t, err)
}

func Test_Set_MatchAndCouldContain(t *testing.T) {
	set, err := NewSet(root, []string{"assets", "public/**/*.svg"}, Include)
	require.NoError(t, err)

	assert.True(t, set.Match(abs("public/icons/a.svg")))
	assert.True(t, set.Match(abs("assets/a.png")))
	assert.False(t, set.Match(abs("src/a.png")))

	assert.True(t, set.CouldContain(root))
	assert.True(t, set.CouldContain(abs("public/icons")))
	assert.False(t, set.CouldContain(abs("src")))

	assert.Equal(t, []string{"/project/assets", "/project/public/**/*.svg"}, set.Strings())
}

func Test_Pattern_EscapedMetaMatchesLiterally(t *testing.T) {
	p, err := NewPattern(root, `logs/run\[1\].log`, Exclude)
	require.NoError(t, err)

	assert.True(t, p.Match(abs("logs/run[1].log")))
	assert.False(t, p.Match(abs("logs/run1.log")))
}
