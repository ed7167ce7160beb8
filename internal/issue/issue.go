// Package issue defines the finding record produced by every analyzer rule.
package issue

import (
	"fmt"
	"strings"
)

// Type classifies what kind of problem an issue describes.
type Type string

const (
	TypeBug             Type = "bug"
	TypeSecurity        Type = "security"
	TypePerformance     Type = "performance"
	TypeCodeQuality     Type = "code_quality"
	TypeBestPractice    Type = "best_practice"
	TypeMaintainability Type = "maintainability"
)

// Severity indicates how urgently an issue should be fixed.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists every severity, most severe first.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// Rank returns the sort rank of a severity (0 = most severe).
// Unknown severities rank after info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() <= min.Rank()
}

// ParseSeverity converts user input (case-insensitive) to a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() > SeverityInfo.Rank() {
		return "", fmt.Errorf("unknown severity %q (use: critical, high, medium, low, info)", s)
	}
	return sev, nil
}

// Category labels used by the builtin rules. Categories are an open set;
// these constants keep grouping stable across runs.
const (
	CategoryCodeOrganization = "Organização de Código"
	CategoryErrorHandling    = "Tratamento de Erros"
	CategoryUX               = "UX/Usabilidade"
	CategoryAuth             = "Autenticação e Autorização"
	CategoryDataSecurity     = "Segurança de Dados"
	CategoryPerformance      = "Performance"
	CategoryDatabase         = "Banco de Dados"
	CategoryDatabaseTuning   = "Otimização de Banco"
	CategoryDiscordAPI       = "API do Discord"
	CategoryRateLimiting     = "Rate Limiting"
	CategoryFormatting       = "Formatação"
	CategoryMaintainability  = "Manutenibilidade"
	CategoryDRY              = "DRY Principle"
	CategoryQueryTuning      = "Otimização de Queries"
	CategoryDocumentation    = "Documentação"
)

// Issue is a single finding. It is created once by a rule and never mutated.
type Issue struct {
	Type        Type     `json:"type" yaml:"type" toml:"type"`
	Severity    Severity `json:"severity" yaml:"severity" toml:"severity"`
	Line        int      `json:"line" yaml:"line" toml:"line"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Code        string   `json:"code" yaml:"code" toml:"code"`
	Suggestion  string   `json:"suggestion" yaml:"suggestion" toml:"suggestion"`
	Category    string   `json:"category" yaml:"category" toml:"category"`

	// Rule is the analyzer pass that produced the issue (not serialized).
	Rule string `json:"-" yaml:"-" toml:"-"`
}

// Template holds the fixed text of a rule's finding.
type Template struct {
	Type        Type
	Severity    Severity
	Description string
	Suggestion  string
	Category    string
}

// New builds an Issue for lineNo (1-based). The snippet is the trimmed
// source line, or empty when lineNo is outside lines.
func New(lines []string, lineNo int, rule string, t Template) Issue {
	return Issue{
		Type:        t.Type,
		Severity:    t.Severity,
		Line:        lineNo,
		Description: t.Description,
		Code:        Snippet(lines, lineNo),
		Suggestion:  t.Suggestion,
		Category:    t.Category,
		Rule:        rule,
	}
}

// Snippet returns the trimmed text of line lineNo, or "" if out of range.
func Snippet(lines []string, lineNo int) string {
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[lineNo-1])
}
