package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"botlint/internal/engine"
	lerrors "botlint/internal/errors"
	"botlint/internal/history"
	"botlint/internal/report"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded analysis runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(app.logger)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		doc := struct {
			Runs []history.Run `json:"runs" yaml:"runs" toml:"runs"`
		}{runs}
		out, err := formatDocument(doc, historyFormat, func() string { return formatRunsHuman(runs) })
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", out)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded run (full ID or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(app.logger)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return runError(args[0], err)
		}

		res := &engine.Result{
			RunID:     run.ID,
			Source:    run.Source,
			LineCount: run.LineCount,
			Report:    run.Report,
			Summary:   report.Summarize(run.Report),
		}
		if historyFormat == "html" {
			page, _, err := report.RenderPage(run.Report, "botlint: "+run.Source,
				report.WithClock(func() time.Time { return run.CreatedAt.Local() }))
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", page)
		}

		out, err := renderResult(res, historyFormat)
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", out)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(app.logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return runError(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	historyCmd.PersistentFlags().StringVarP(&historyFormat, "format", "f", "human", "Output format")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list (0 for all)")
}

// runError attaches a lint error code to a history lookup failure.
func runError(id string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return lerrors.New(lerrors.RunNotFound, "run '"+id+"' not found", nil)
	case errors.Is(err, history.ErrAmbiguousID):
		return lerrors.New(lerrors.InvalidInput, "run id '"+id+"' matches more than one run", nil)
	}
	return fmt.Errorf("run %s: %w", id, err)
}
