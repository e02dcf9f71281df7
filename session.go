package main

import (
	"fmt"
	"log/slog"

	"github.com/lexandro/assetmod-mcp/host"
	"github.com/lexandro/assetmod-mcp/project"
)

// session is an opened project with its asset host installed.
type session struct {
	disk  *project.Disk
	host  *host.AssetHost
	close func() error
}

// openSession loads the manifest, builds the disk project and wraps it with
// the asset host. Configuration errors and a missing watch capability are fatal.
// A non-empty logFile is kept out of the watch since every callback writes to it.
func openSession(manifestPath string, pluginName string, logFile string, logger *slog.Logger) (*session, error) {
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	raw, err := manifest.PluginOptions(pluginName)
	if err != nil {
		return nil, err
	}

	system := project.NewOSSystem(logger)
	disk, err := project.NewDisk(manifest, system, logger)
	if err != nil {
		return nil, fmt.Errorf("listing project files: %w", err)
	}

	options := host.ParseOptions(disk, raw)
	if logFile != "" {
		options.ExcludeFile(logFile)
	}
	logger.Info("plugin options",
		"manifest", options.ManifestPath,
		"rules", len(options.Rules),
		"extensions", options.Extensions,
		"include", options.Include,
		"exclude", options.Exclude,
		"incrementalMatch", options.IncrementalMatch,
	)

	assetHost, err := host.New(disk, system, &options, logger)
	if err != nil {
		return nil, err
	}
	return &session{disk: disk, host: assetHost, close: assetHost.Close}, nil
}
