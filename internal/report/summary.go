package report

import (
	"botlint/internal/aggregate"
	"botlint/internal/issue"
)

// maxPriorityFixes caps the priority list in the summary.
const maxPriorityFixes = 5

// Health labels, best to worst.
const (
	HealthExcellent = "Excellent"
	HealthGood      = "Good"
	HealthRegular   = "Regular"
	HealthPoor      = "Poor"
	HealthCritical  = "Critical"
)

// Summary is the executive digest of a report.
type Summary struct {
	TotalIssues        int      `json:"total_issues" yaml:"total_issues" toml:"total_issues"`
	CriticalCount      int      `json:"critical_count" yaml:"critical_count" toml:"critical_count"`
	HighCount          int      `json:"high_count" yaml:"high_count" toml:"high_count"`
	MostCommonCategory string   `json:"most_common_category" yaml:"most_common_category" toml:"most_common_category"`
	PriorityFixes      []string `json:"priority_fixes" yaml:"priority_fixes" toml:"priority_fixes"`
	OverallHealth      string   `json:"overall_health" yaml:"overall_health" toml:"overall_health"`
}

// Summarize builds the executive summary of r.
func Summarize(r *aggregate.Report) Summary {
	critical := r.CountSeverity(issue.SeverityCritical)
	high := r.CountSeverity(issue.SeverityHigh)
	medium := r.CountSeverity(issue.SeverityMedium)

	return Summary{
		TotalIssues:        r.TotalIssues,
		CriticalCount:      critical,
		HighCount:          high,
		MostCommonCategory: mostCommonCategory(r),
		PriorityFixes:      priorityFixes(r.Issues),
		OverallHealth:      HealthLabel(critical, high, medium),
	}
}

// mostCommonCategory returns the category with the most issues. Ties go to
// the category that appears first in the ranked issue list.
func mostCommonCategory(r *aggregate.Report) string {
	best, bestCount := "N/A", 0
	for _, cat := range r.Categories() {
		if n := r.ByCategory[cat]; n > bestCount {
			best, bestCount = cat, n
		}
	}
	return best
}

// priorityFixes lists critical descriptions followed by high ones.
func priorityFixes(issues []issue.Issue) []string {
	fixes := make([]string, 0, maxPriorityFixes)
	for _, sev := range []issue.Severity{issue.SeverityCritical, issue.SeverityHigh} {
		for _, iss := range issues {
			if len(fixes) == maxPriorityFixes {
				return fixes
			}
			if iss.Severity == sev {
				fixes = append(fixes, iss.Description)
			}
		}
	}
	return fixes
}

// Penalty weighs severity counts: 10 per critical, 5 per high, 2 per medium.
func Penalty(critical, high, medium int) int {
	return critical*10 + high*5 + medium*2
}

// HealthLabel maps severity counts to a qualitative label.
func HealthLabel(critical, high, medium int) string {
	switch p := Penalty(critical, high, medium); {
	case p == 0:
		return HealthExcellent
	case p < 10:
		return HealthGood
	case p < 25:
		return HealthRegular
	case p < 50:
		return HealthPoor
	default:
		return HealthCritical
	}
}
