package main

import (
	"fmt"
	"strings"

	"botlint/internal/allowlist"
	"botlint/internal/engine"
	lerrors "botlint/internal/errors"
	"botlint/internal/history"
	"botlint/internal/issue"
	"botlint/internal/output"
	"botlint/internal/version"
)

const ruleWidth = 60

// formatDocument encodes v as json, yaml or toml, or calls human for "human".
func formatDocument(v any, format string, human func() string) (string, error) {
	if format == "human" || format == "" {
		return human(), nil
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return "", lerrors.New(lerrors.UnsupportedFormat, err.Error(), nil)
	}
	data, err := output.Encode(v, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatAnalysisHuman renders an analysis for the terminal.
func formatAnalysisHuman(res *engine.Result) string {
	var b strings.Builder
	r := res.Report

	b.WriteString(fmt.Sprintf("botlint %s  %s (%d lines)\n", version.Version, res.Source, res.LineCount))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	b.WriteString(fmt.Sprintf("Health: %s   Issues: %d", res.Summary.OverallHealth, r.TotalIssues))
	if res.Suppressed > 0 {
		b.WriteString(fmt.Sprintf("   Suppressed: %d", res.Suppressed))
	}
	b.WriteString("\n")
	for _, sev := range issue.Severities {
		if n := r.BySeverity[string(sev)]; n > 0 {
			b.WriteString(fmt.Sprintf("  %-9s %3d\n", sev, n))
		}
	}

	if r.TotalIssues == 0 {
		b.WriteString("\nNo issues found.\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, iss := range r.Issues {
		b.WriteString(fmt.Sprintf("[%s] line %d  %s\n", strings.ToUpper(string(iss.Severity)), iss.Line, iss.Category))
		b.WriteString(fmt.Sprintf("  %s\n", iss.Description))
		if iss.Code != "" {
			b.WriteString(fmt.Sprintf("  > %s\n", iss.Code))
		}
		b.WriteString(fmt.Sprintf("  fix: %s\n\n", iss.Suggestion))
	}

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString(fmt.Sprintf("Most common category: %s\n", res.Summary.MostCommonCategory))
	if len(res.Summary.PriorityFixes) > 0 {
		b.WriteString("Priority fixes:\n")
		for _, fix := range res.Summary.PriorityFixes {
			b.WriteString(fmt.Sprintf("  - %s\n", fix))
		}
	}
	return b.String()
}

// formatRunsHuman renders the history list.
func formatRunsHuman(runs []history.Run) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s  %-16s  %6s  %4s  %4s  %-9s  %s\n", "ID", "WHEN", "ISSUES", "CRIT", "HIGH", "HEALTH", "SOURCE"))
	for _, run := range runs {
		b.WriteString(fmt.Sprintf("%-8s  %-16s  %6d  %4d  %4d  %-9s  %s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.TotalIssues, run.Critical, run.High, run.Health, run.Source))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAdviceHuman renders the advice catalogue.
func formatAdviceHuman(doc adviceDocument) string {
	var b strings.Builder

	b.WriteString("Refactoring suggestions\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
	for i, s := range doc.RefactoringSuggestions {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.Title))
		b.WriteString(fmt.Sprintf("   %s\n", s.Description))
		writeBlock(&b, "Before", s.CodeBefore)
		writeBlock(&b, "After", s.CodeAfter)
		if len(s.Benefits) > 0 {
			b.WriteString("   Benefits:\n")
			for _, benefit := range s.Benefits {
				b.WriteString(fmt.Sprintf("     - %s\n", benefit))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Security fixes\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
	for i, f := range doc.SecurityFixes {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Issue))
		b.WriteString(fmt.Sprintf("   Risk: %s\n", f.Risk))
		b.WriteString(fmt.Sprintf("   Fix:  %s\n", f.Fix))
		writeBlock(&b, "Code", f.Code)
		b.WriteString("\n")
	}
	return b.String()
}

func writeBlock(b *strings.Builder, label, code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	b.WriteString(fmt.Sprintf("   %s:\n", label))
	for _, line := range strings.Split(code, "\n") {
		b.WriteString("     " + line + "\n")
	}
}

// formatRulesHuman renders the pass list.
func formatRulesHuman(rules []ruleInfo) string {
	var b strings.Builder
	for i, r := range rules {
		b.WriteString(fmt.Sprintf("%d. %-15s %s\n", i+1, r.Name, r.Description))
	}
	return b.String()
}

// formatAllowlistHuman renders allowlist entries.
func formatAllowlistHuman(l *allowlist.List) string {
	if len(l.Entries) == 0 {
		return "Allowlist is empty.\n"
	}

	var b strings.Builder
	for _, e := range l.Entries {
		var criteria []string
		if e.Rule != "" {
			criteria = append(criteria, "rule="+e.Rule)
		}
		if e.Category != "" {
			criteria = append(criteria, fmt.Sprintf("category=%q", e.Category))
		}
		if e.Line > 0 {
			criteria = append(criteria, fmt.Sprintf("line=%d", e.Line))
		}
		if e.Contains != "" {
			criteria = append(criteria, fmt.Sprintf("contains=%q", e.Contains))
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", e.ID, strings.Join(criteria, " ")))
		if e.Reason != "" {
			b.WriteString(fmt.Sprintf("    reason: %s\n", e.Reason))
		}
	}
	return b.String()
}
