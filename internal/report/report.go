// Package report renders an aggregated analysis as an HTML document and
// derives the executive summary shown next to it.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"botlint/internal/aggregate"
	"botlint/internal/issue"
)

// severityStyle is the badge icon and colour of a severity.
type severityStyle struct {
	Icon  string
	Color string
}

var severityStyles = map[issue.Severity]severityStyle{
	issue.SeverityCritical: {Icon: "🚨", Color: "#dc2626"},
	issue.SeverityHigh:     {Icon: "⚠️", Color: "#ea580c"},
	issue.SeverityMedium:   {Icon: "🔶", Color: "#d97706"},
	issue.SeverityLow:      {Icon: "💡", Color: "#65a30d"},
	issue.SeverityInfo:     {Icon: "ℹ️", Color: "#0284c7"},
}

var fallbackStyle = severityStyle{Icon: "•", Color: "#6b7280"}

func styleFor(s issue.Severity) severityStyle {
	if st, ok := severityStyles[s]; ok {
		return st
	}
	return fallbackStyle
}

// dateLayout renders as e.g. "05/03/2026 às 14:07".
const dateLayout = "02/01/2006 às 15:04"

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	now func() time.Time
}

// WithClock overrides the time source used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *renderer) {
		if now != nil {
			r.now = now
		}
	}
}

var (
	documentTmpl = template.Must(template.New("report").Parse(documentTemplate))
	pageTmpl     = template.Must(template.New("page").Parse(pageTemplate))
)

// Render produces the HTML document and the summary for r.
func Render(r *aggregate.Report, opts ...Option) (string, Summary, error) {
	rd := &renderer{now: time.Now}
	for _, opt := range opts {
		opt(rd)
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, buildDocument(r, rd.now())); err != nil {
		return "", Summary{}, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), Summarize(r), nil
}

// RenderPage wraps the Render fragment in a standalone HTML page.
func RenderPage(r *aggregate.Report, title string, opts ...Option) (string, Summary, error) {
	body, summary, err := Render(r, opts...)
	if err != nil {
		return "", Summary{}, err
	}

	var buf bytes.Buffer
	data := struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)}
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", Summary{}, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), summary, nil
}

// ============ Template data ============

type document struct {
	GeneratedAt     string
	Total           int
	Stats           []statCard
	Groups          []categoryGroup
	Recommendations []Recommendation
}

type statCard struct {
	Severity   string
	Label      string
	Count      int
	Percentage string
}

type categoryGroup struct {
	Category string
	Issues   []issueCard
}

type issueCard struct {
	Severity    string
	Badge       string
	Icon        string
	Color       template.CSS
	Line        int
	Description string
	Code        string
	Suggestion  string
}

func buildDocument(r *aggregate.Report, now time.Time) document {
	return document{
		GeneratedAt:     now.Format(dateLayout),
		Total:           r.TotalIssues,
		Stats:           statCards(r),
		Groups:          groupByCategory(r.Issues),
		Recommendations: Recommendations(r),
	}
}

// statCards returns one card per severity present, most severe first.
func statCards(r *aggregate.Report) []statCard {
	cards := make([]statCard, 0, len(r.BySeverity))
	for _, sev := range issue.Severities {
		count := r.BySeverity[string(sev)]
		if count == 0 {
			continue
		}
		cards = append(cards, statCard{
			Severity:   string(sev),
			Label:      titleCase(string(sev)),
			Count:      count,
			Percentage: percentage(count, r.TotalIssues),
		})
	}
	return cards
}

func percentage(count, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(count) / float64(total) * 100
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// groupByCategory splits issues into runs of equal category. A category
// that reappears after a different one starts a new group.
func groupByCategory(issues []issue.Issue) []categoryGroup {
	var groups []categoryGroup
	for _, iss := range issues {
		if len(groups) == 0 || groups[len(groups)-1].Category != iss.Category {
			groups = append(groups, categoryGroup{Category: iss.Category})
		}
		st := styleFor(iss.Severity)
		g := &groups[len(groups)-1]
		g.Issues = append(g.Issues, issueCard{
			Severity:    string(iss.Severity),
			Badge:       upper(string(iss.Severity)),
			Icon:        st.Icon,
			Color:       template.CSS(st.Color),
			Line:        iss.Line,
			Description: iss.Description,
			Code:        iss.Code,
			Suggestion:  iss.Suggestion,
		})
	}
	return groups
}
