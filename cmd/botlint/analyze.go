package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"botlint/internal/engine"
	lerrors "botlint/internal/errors"
	"botlint/internal/issue"
	"botlint/internal/output"
	"botlint/internal/paths"
	"botlint/internal/report"
	"botlint/internal/version"
	"botlint/internal/watcher"
)

// exitCritical is returned when critical issues remain after filtering.
const exitCritical = 2

var (
	analyzeFormat      string
	analyzeMinSeverity string
	analyzeAllowlist   string
	analyzeNoAllowlist bool
	analyzeSave        bool
	analyzeOutput      string
	analyzeWatch       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a bot source file",
	Long: `Analyze a Python bot source and report the issues found.

Reads standard input when no file or "-" is given. Exits with status 2 when
critical issues remain after the allowlist and severity filter.

With --watch the file is analyzed again every time it changes, until
interrupted.

Formats: human, json, yaml, toml, html, sarif.`,
	Example: `  botlint analyze bot/commands.py
  botlint analyze --format sarif -o botlint.sarif bot/commands.py
  cat bot/commands.py | botlint analyze --min-severity medium --format json
  botlint analyze --watch bot/commands.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "Output format (default from report.format)")
	analyzeCmd.Flags().StringVar(&analyzeMinSeverity, "min-severity", "", "Drop issues below this severity (default from report.minSeverity)")
	analyzeCmd.Flags().StringVar(&analyzeAllowlist, "allowlist", "", "Allowlist file (default from allowlist.path)")
	analyzeCmd.Flags().BoolVar(&analyzeNoAllowlist, "no-allowlist", false, "Ignore the allowlist")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Record the run in the history database")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "Analyze again whenever the file changes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format := analyzeFormat
	if format == "" {
		format = app.cfg.Report.Format
	}
	minSev := analyzeMinSeverity
	if minSev == "" {
		minSev = app.cfg.Report.MinSeverity
	}
	sev, err := issue.ParseSeverity(minSev)
	if err != nil {
		return err
	}

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	if analyzeWatch && (arg == "" || arg == "-") {
		return lerrors.New(lerrors.InvalidInput, "--watch needs a file argument", nil)
	}

	eng, err := newEngine(engineOptions{
		allowlistPath: analyzeAllowlist,
		noAllowlist:   analyzeNoAllowlist,
		withHistory:   analyzeSave,
	}, app.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	res, err := analyzeOnce(cmd, eng, arg, sev, format)
	if err != nil {
		return err
	}
	if analyzeWatch {
		return watchSource(cmd, eng, arg, sev, format)
	}
	if res.Summary.CriticalCount > 0 {
		return &exitError{code: exitCritical}
	}
	return nil
}

// analyzeOnce reads, analyzes and writes one report.
func analyzeOnce(cmd *cobra.Command, eng *engine.Engine, arg string, sev issue.Severity, format string) (*engine.Result, error) {
	code, err := readSource(cmd, arg)
	if err != nil {
		return nil, err
	}

	res, err := eng.Analyze(cmd.Context(), engine.Request{
		Source:      paths.SourceName(arg, app.root),
		Code:        code,
		MinSeverity: sev,
		Save:        analyzeSave,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := renderResult(res, format)
	if err != nil {
		return nil, err
	}
	if err := writeOutput(cmd, analyzeOutput, rendered); err != nil {
		return nil, err
	}

	if res.RunID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recorded run %s\n", res.RunID)
	}
	return res, nil
}

// watchSource re-runs the analysis on every change until interrupted.
func watchSource(cmd *cobra.Command, eng *engine.Engine, arg string, sev issue.Severity, format string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(watcher.DefaultConfig(), app.logger, func(events []watcher.Event) {
		for _, ev := range events {
			if ev.Type == watcher.EventDelete {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s was removed, waiting for it to return\n", ev.Path)
				return
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s changed, analyzing again\n", arg)
		if _, err := analyzeOnce(cmd, eng, arg, sev, format); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
	if err := w.Add(arg); err != nil {
		return lerrors.New(lerrors.InvalidInput, "cannot watch "+arg, err)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// renderResult formats an analysis result.
func renderResult(res *engine.Result, format string) (string, error) {
	switch format {
	case "human":
		return formatAnalysisHuman(res), nil
	case "html":
		page, _, err := report.RenderPage(res.Report, "botlint: "+res.Source)
		return page, err
	case "sarif":
		return FormatSARIF(res, version.Version)
	}

	f, err := output.ParseFormat(format)
	if err != nil {
		return "", lerrors.New(lerrors.UnsupportedFormat, err.Error(), nil)
	}
	data, err := output.Encode(res, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readSource reads a file, or standard input for "" and "-".
func readSource(cmd *cobra.Command, arg string) (string, error) {
	if arg == "" || arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", lerrors.New(lerrors.InvalidInput, "cannot read "+arg, err)
	}
	return string(data), nil
}

// writeOutput writes s to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, s string) error {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), s)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
