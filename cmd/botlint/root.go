package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"botlint/internal/allowlist"
	"botlint/internal/config"
	"botlint/internal/engine"
	"botlint/internal/history"
	"botlint/internal/paths"
	"botlint/internal/slogutil"
	"botlint/internal/version"
)

var (
	rootFlag  string
	verbosity int
	quietFlag bool
)

// app is the per-invocation state built before any subcommand runs.
var app struct {
	root   string
	cfg    *config.Config
	logs   *slogutil.Factory
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "botlint",
	Short: "botlint - pattern linter for Discord bot sources",
	Long: `botlint scans the source of a discord.py bot for known problem patterns
(security, error handling, database use, rate limiting, formatting and
documentation), ranks the findings and renders them as text, JSON, YAML,
TOML, HTML or SARIF. It can also serve the same analysis over HTTP.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app.logs != nil {
			return app.logs.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("botlint version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Workspace root holding .botlint/")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logging")
}

func setupApp(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return fmt.Errorf("invalid --root: %w", err)
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var cliLevel *slog.Level
	if cmd.Flags().Changed("verbose") || cmd.Flags().Changed("quiet") {
		level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
		cliLevel = &level
	}

	app.root = root
	app.cfg = cfg
	app.logs = slogutil.NewFactory(cfg.Logging, cliLevel)
	app.logger = app.logs.Console(os.Stderr)
	return nil
}

// engineOptions controls which optional stores newEngine opens.
type engineOptions struct {
	allowlistPath string
	noAllowlist   bool
	withHistory   bool
}

// newEngine builds an engine from the loaded config.
func newEngine(opts engineOptions, logger *slog.Logger) (*engine.Engine, error) {
	eo := engine.Options{Logger: logger}

	if !opts.noAllowlist {
		path := opts.allowlistPath
		if path == "" {
			path = app.cfg.Allowlist.Path
		}
		allow, err := allowlist.Load(paths.Resolve(app.root, path))
		if err != nil {
			return nil, err
		}
		if len(allow.Entries) > 0 {
			logger.Debug("Allowlist loaded", "entries", len(allow.Entries))
		}
		eo.Allowlist = allow
	}

	if opts.withHistory {
		store, err := openHistory(logger)
		if err != nil {
			return nil, err
		}
		eo.History = store
	}

	return engine.New(eo), nil
}

// openHistory opens the run history, failing when it is disabled.
func openHistory(logger *slog.Logger) (*history.DB, error) {
	if !app.cfg.History.Enabled {
		return nil, fmt.Errorf("run history is disabled (history.enabled=false)")
	}
	return history.Open(app.root, app.cfg.History.MaxRuns, logger)
}
