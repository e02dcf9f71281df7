package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/lexandro/assetmod-mcp/index"
	"github.com/lexandro/assetmod-mcp/register"
	"github.com/lexandro/assetmod-mcp/server"
	"github.com/lexandro/assetmod-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// config holds the flags shared by every subcommand.
type config struct {
	manifest     string
	plugin       string
	logLevel     string
	logFile      string
	syncInterval time.Duration
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:          "assetmod-mcp",
		Short:        "Expose a TypeScript project's asset files as modules over MCP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.manifest, "manifest", envOr("ASSETMOD_MANIFEST", "tsconfig.json"), "Project manifest (tsconfig.json) holding the plugin entry")
	flags.StringVar(&cfg.plugin, "plugin", envOr("ASSETMOD_PLUGIN", "assetmod"), "Plugin name in compilerOptions.plugins")
	flags.StringVar(&cfg.logLevel, "log-level", envOr("ASSETMOD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	flags.StringVar(&cfg.logFile, "log-file", os.Getenv("ASSETMOD_LOG_FILE"), "Log file path (default: assetmod-mcp.log next to the manifest for serve, stderr otherwise)")
	flags.DurationVar(&cfg.syncInterval, "sync-interval", time.Minute, "Interval between full rescans; 0 disables")

	rootCmd.AddCommand(
		newServeCommand(cfg),
		newScanCommand(cfg),
		newRegisterCommand(),
	)
	return rootCmd
}

func newServeCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}

func newScanCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Print every asset file and its matched rule, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(cfg.logLevel, cfg.logFile)
			s, err := openSession(cfg.manifest, cfg.plugin, cfg.logFile, logger)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			root := s.host.Options().ProjectRoot()
			for _, path := range s.host.GetAssetFileNames() {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					rel = path
				}
				if rule := s.host.GetMatchedSuggestionRule(path); rule != nil {
					fmt.Fprintf(out, "%s\t%s\n", filepath.ToSlash(rel), rule.Name)
				}
			}
			fmt.Fprintf(out, "%d assets, %d script files\n",
				len(s.host.GetAssetFileNames()), len(s.disk.GetScriptFileNames()))
			return nil
		},
	}
}

func newRegisterCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "register <project|user> [directory] [-- server flags]",
		Short: "Add this server to .mcp.json (project) or ~/.claude.json (user)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, serverArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				positional, serverArgs = args[:dash], args[dash:]
			}
			if len(positional) == 0 || len(positional) > 2 {
				return fmt.Errorf("expected <project|user> [directory], got %v", positional)
			}
			directory := ""
			if len(positional) == 2 {
				if positional[0] != register.ScopeProject {
					return fmt.Errorf("a directory is only accepted for the %q scope", register.ScopeProject)
				}
				directory = positional[1]
			}

			configPath, err := register.Register(positional[0], directory, name, serverArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", name, configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", register.DeriveServerName(os.Args[0]), "Server name in the MCP configuration")
	return cmd
}

func runServe(ctx context.Context, cfg *config) error {
	logFile := cfg.logFile
	if logFile == "" {
		if manifestPath, err := filepath.Abs(cfg.manifest); err == nil {
			logFile = filepath.Join(filepath.Dir(manifestPath), "assetmod-mcp.log")
		}
	}

	// Logs go to a file or stderr, never stdout: stdout carries MCP stdio
	logger := setupLogger(cfg.logLevel, logFile)
	logger.Info("starting assetmod-mcp", "manifest", cfg.manifest, "plugin", cfg.plugin)

	startTime := time.Now()
	s, err := openSession(cfg.manifest, cfg.plugin, logFile, logger)
	if err != nil {
		logger.Error("plugin failed to activate", "error", err)
		return err
	}
	defer s.close()
	logger.Info("asset host ready", "assets", len(s.host.GetAssetFileNames()), "duration", time.Since(startTime))

	catalog, err := index.NewCatalog(s.host.Options().ProjectRoot())
	if err != nil {
		return err
	}
	defer catalog.Close()
	s.host.Observe(func(change assets.Change) {
		if err := catalog.Apply(change); err != nil {
			logger.Warn("catalog update failed", "path", change.Path, "error", err)
		}
	})
	if err := catalog.Load(s.host); err != nil {
		return err
	}

	if cfg.syncInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go runPeriodicSync(cfg.syncInterval, s.host, logger, stop)
	}

	mcpServer := server.Setup(server.Handlers{
		List:    &tools.ListHandler{Host: s.host, Logger: logger},
		Lookup:  &tools.LookupHandler{Host: s.host, Logger: logger},
		Scripts: &tools.ScriptsHandler{Host: s.host, Logger: logger},
		Search:  &tools.SearchHandler{Catalog: catalog, Logger: logger},
		Status: &tools.StatusHandler{
			Host:      s.host,
			Catalog:   catalog,
			StartTime: startTime,
			Logger:    logger,
		},
		Rescan: &tools.RescanHandler{
			Logger: logger,
			DoRescan: func() (assets.VerifyResult, error) {
				return performSyncVerification(s.host, logger)
			},
		},
	})

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return err
	}
	return nil
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
