package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/assetmod-mcp/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assetManifest = `{
  "compilerOptions": {
    "plugins": [
      { "name": "assetmod", "include": ["**/*"], "extensions": [".png"], "exportedNameCase": "camelCase" }
    ]
  }
}`

func Test_AssetHost_OnDisk_DeleteIsObserved(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "assets/logo.png", "src/index.ts")
	d := newTestDisk(t, dir, assetManifest)

	raw, err := d.Manifest().PluginOptions("assetmod")
	require.NoError(t, err)
	opts := host.ParseOptions(d, raw)

	h, err := host.New(d, NewOSSystem(testLogger()), &opts, testLogger())
	require.NoError(t, err)
	defer h.Close()

	logo := filepath.Join(dir, "assets", "logo.png")
	assert.Equal(t, []string{logo}, h.GetAssetFileNames())
	assert.Equal(t, []string{filepath.Join(dir, "src", "index.ts"), logo}, h.GetScriptFileNames())

	require.NoError(t, os.Remove(logo))

	require.Eventually(t, func() bool {
		return len(h.GetAssetFileNames()) == 0
	}, 3*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return d.GetProjectVersion() != "1"
	}, time.Second, 10*time.Millisecond)
}

func newDiskHost(t *testing.T, d *Disk, logger *slog.Logger, excludeFiles ...string) *host.AssetHost {
	t.Helper()
	raw, err := d.Manifest().PluginOptions("assetmod")
	require.NoError(t, err)
	opts := host.ParseOptions(d, raw)
	for _, path := range excludeFiles {
		opts.ExcludeFile(path)
	}

	h, err := host.New(d, NewOSSystem(logger), &opts, logger)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func Test_AssetHost_OnDisk_NewScriptBecomesVisible(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "assets/logo.png", "src/index.ts")
	d := newTestDisk(t, dir, assetManifest)
	h := newDiskHost(t, d, testLogger())

	extra := filepath.Join(dir, "src", "extra.ts")
	require.NoError(t, os.WriteFile(extra, []byte("export {}"), 0o644))

	require.Eventually(t, func() bool {
		return slices.Contains(h.GetScriptFileNames(), extra)
	}, 3*time.Second, 20*time.Millisecond)
	assert.NotEqual(t, "1", h.GetProjectVersion())
	assert.Equal(t, []string{filepath.Join(dir, "assets", "logo.png")}, h.GetAssetFileNames())
}

func Test_AssetHost_OnDisk_LogFileInsideRootDoesNotRetrigger(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "assets/logo.png")
	d := newTestDisk(t, dir, assetManifest)

	logPath := filepath.Join(dir, "assetmod-mcp.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { logFile.Close() })
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	newDiskHost(t, d, logger, logPath)

	callbacks := func() int {
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		return strings.Count(string(data), "watch callback")
	}

	writeFiles(t, dir, "notes.txt")
	require.Eventually(t, func() bool {
		return callbacks() > 0
	}, 3*time.Second, 20*time.Millisecond)

	// Several debounce windows with no filesystem activity besides logging
	time.Sleep(500 * time.Millisecond)
	settled := callbacks()
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, settled, callbacks())
	assert.LessOrEqual(t, settled, 2)
}
