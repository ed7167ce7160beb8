// Package aggregate turns a flat list of issues into an analysis report:
// per-dimension counts plus the issues ranked by severity and line.
package aggregate

import (
	"sort"

	"botlint/internal/analyzer"
	"botlint/internal/issue"
)

// Report is the aggregated result of one analysis run.
type Report struct {
	TotalIssues int            `json:"total_issues" yaml:"total_issues" toml:"total_issues"`
	BySeverity  map[string]int `json:"by_severity" yaml:"by_severity" toml:"by_severity"`
	ByType      map[string]int `json:"by_type" yaml:"by_type" toml:"by_type"`
	ByCategory  map[string]int `json:"by_category" yaml:"by_category" toml:"by_category"`
	Issues      []issue.Issue  `json:"issues" yaml:"issues" toml:"issues"`
}

// Aggregate counts issues by severity, type and category and ranks them.
// Ranking is by severity (most severe first), then line; equal keys keep
// their detection order. The input slice is not modified.
func Aggregate(issues []issue.Issue) *Report {
	r := &Report{
		TotalIssues: len(issues),
		BySeverity:  make(map[string]int),
		ByType:      make(map[string]int),
		ByCategory:  make(map[string]int),
		Issues:      make([]issue.Issue, len(issues)),
	}
	copy(r.Issues, issues)

	for _, iss := range issues {
		r.BySeverity[string(iss.Severity)]++
		r.ByType[string(iss.Type)]++
		r.ByCategory[iss.Category]++
	}

	sort.SliceStable(r.Issues, func(i, j int) bool {
		ri, rj := r.Issues[i].Severity.Rank(), r.Issues[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return r.Issues[i].Line < r.Issues[j].Line
	})

	return r
}

// Analyze runs the builtin analyzer over text and aggregates the result.
func Analyze(text string) *Report {
	return Aggregate(analyzer.Analyze(text))
}

// Filter re-aggregates the issues for which keep returns true.
func (r *Report) Filter(keep func(issue.Issue) bool) *Report {
	kept := make([]issue.Issue, 0, len(r.Issues))
	for _, iss := range r.Issues {
		if keep(iss) {
			kept = append(kept, iss)
		}
	}
	return Aggregate(kept)
}

// MinSeverity keeps only issues at least as severe as min.
func (r *Report) MinSeverity(min issue.Severity) *Report {
	return r.Filter(func(iss issue.Issue) bool {
		return iss.Severity.AtLeast(min)
	})
}

// CountSeverity returns the number of issues with severity s.
func (r *Report) CountSeverity(s issue.Severity) int {
	return r.BySeverity[string(s)]
}

// Categories returns the categories in the order they first appear in the
// ranked issue list.
func (r *Report) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, iss := range r.Issues {
		if !seen[iss.Category] {
			seen[iss.Category] = true
			out = append(out, iss.Category)
		}
	}
	return out
}
