// Package engine is the single entry point shared by the CLI and the HTTP
// API: analyze, apply the allowlist, summarize and optionally record a run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"botlint/internal/aggregate"
	"botlint/internal/allowlist"
	"botlint/internal/analyzer"
	lerrors "botlint/internal/errors"
	"botlint/internal/history"
	"botlint/internal/issue"
	"botlint/internal/report"
	"botlint/internal/rewriter"
	"botlint/internal/slogutil"
)

// Engine wires the analyzer to the optional allowlist and history store.
type Engine struct {
	analyzer  *analyzer.Analyzer
	allowlist *allowlist.List
	history   *history.DB
	logger    *slog.Logger
}

// Options configures an Engine. Nil fields disable the feature.
type Options struct {
	Allowlist *allowlist.List
	History   *history.DB
	Logger    *slog.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Engine{
		analyzer:  analyzer.New(analyzer.WithLogger(logger)),
		allowlist: opts.Allowlist,
		history:   opts.History,
		logger:    logger,
	}
}

// Request is one analysis job.
type Request struct {
	Source      string
	Code        string
	MinSeverity issue.Severity
	Save        bool
}

// Result is the outcome of Analyze.
type Result struct {
	RunID      string            `json:"run_id,omitempty" yaml:"run_id,omitempty" toml:"run_id,omitempty"`
	Source     string            `json:"source" yaml:"source" toml:"source"`
	LineCount  int               `json:"line_count" yaml:"line_count" toml:"line_count"`
	Suppressed int               `json:"suppressed" yaml:"suppressed" toml:"suppressed"`
	Summary    report.Summary    `json:"summary" yaml:"summary" toml:"summary"`
	Report     *aggregate.Report `json:"report" yaml:"report" toml:"report"`
}

// Analyze runs the analyzer over req.Code and post-processes the report.
// The run is recorded when req.Save is set and a history store is present.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	rep := aggregate.Aggregate(e.analyzer.Analyze(req.Code))

	rep, suppressed := e.allowlist.Apply(rep)
	if req.MinSeverity != "" {
		rep = rep.MinSeverity(req.MinSeverity)
	}

	res := &Result{
		Source:     req.Source,
		LineCount:  LineCount(req.Code),
		Suppressed: suppressed,
		Report:     rep,
		Summary:    report.Summarize(rep),
	}

	if req.Save && e.history != nil {
		run := history.NewRun(req.Source, res.LineCount, rep, res.Summary)
		if err := e.history.Save(ctx, run); err != nil {
			return nil, lerrors.New(lerrors.StorageUnavailable, "failed to record run", err)
		}
		res.RunID = run.ID
	}

	e.logger.Info("Analysis finished",
		"source", req.Source,
		"lines", res.LineCount,
		"issues", rep.TotalIssues,
		"suppressed", suppressed,
		"health", res.Summary.OverallHealth,
		"run_id", res.RunID,
		"duration", time.Since(start).String())
	return res, nil
}

// Improve returns the rewritten variant of code.
func (e *Engine) Improve(code string) string {
	return rewriter.Rewrite(code)
}

// History returns the run store, or nil when history is disabled.
func (e *Engine) History() *history.DB {
	return e.history
}

// Close releases the history store.
func (e *Engine) Close() error {
	if e.history == nil {
		return nil
	}
	if err := e.history.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	return nil
}

// LineCount counts newline-terminated lines, plus a final unterminated one.
func LineCount(code string) int {
	if code == "" {
		return 0
	}
	n := strings.Count(code, "\n")
	if !strings.HasSuffix(code, "\n") {
		n++
	}
	return n
}
