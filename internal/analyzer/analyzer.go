// Package analyzer runs the builtin line-pattern rules over a source text.
//
// There is no parsing: every rule looks at one line at a time, optionally
// peeking at a bounded window of the lines that follow it. Rules never fail;
// a pattern that is absent simply produces no issue.
package analyzer

import (
	"log/slog"
	"strings"

	"botlint/internal/issue"
	"botlint/internal/slogutil"
)

// Source is the line view of the text under analysis.
type Source struct {
	Lines []string
}

// NewSource splits text on newline boundaries.
func NewSource(text string) *Source {
	return &Source{Lines: strings.Split(text, "\n")}
}

// Window returns up to n lines that follow line (1-based). Lines past the
// end of the text are dropped, so the window may be short or empty.
func (s *Source) Window(line, n int) []string {
	if line < 0 || n <= 0 || line >= len(s.Lines) {
		return nil
	}
	end := line + n
	if end > len(s.Lines) {
		end = len(s.Lines)
	}
	return s.Lines[line:end]
}

// Issue builds an issue for line using the rule's template.
func (s *Source) Issue(line int, rule string, t issue.Template) issue.Issue {
	return issue.New(s.Lines, line, rule, t)
}

// Pass is one independent detection rule.
type Pass struct {
	Name        string
	Description string
	Run         func(src *Source) []issue.Issue
}

// Analyzer runs an ordered battery of passes.
type Analyzer struct {
	passes []Pass
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger logs per-pass counts at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer with the builtin passes.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		passes: BuiltinPasses,
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs every pass in order and returns the issues in detection order.
func (a *Analyzer) Analyze(text string) []issue.Issue {
	if text == "" {
		return []issue.Issue{}
	}

	src := NewSource(text)
	issues := make([]issue.Issue, 0)
	for _, p := range a.passes {
		found := p.Run(src)
		a.logger.Debug("Pass complete", "pass", p.Name, "issues", len(found))
		issues = append(issues, found...)
	}

	a.logger.Debug("Analysis complete",
		"lines", len(src.Lines),
		"issues", len(issues))
	return issues
}

// Analyze runs the builtin passes over text.
func Analyze(text string) []issue.Issue {
	return New().Analyze(text)
}

// Passes returns the builtin passes in execution order.
func Passes() []Pass {
	out := make([]Pass, len(BuiltinPasses))
	copy(out, BuiltinPasses)
	return out
}
