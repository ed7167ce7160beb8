package issue

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSeverityRank(t *testing.T) {
	for i, sev := range Severities {
		if got := sev.Rank(); got != i {
			t.Errorf("%s.Rank() = %d, want %d", sev, got, i)
		}
	}
	if got := Severity("bogus").Rank(); got <= SeverityInfo.Rank() {
		t.Errorf("unknown severity should rank after info, got %d", got)
	}
}

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		sev  Severity
		min  Severity
		want bool
	}{
		{SeverityCritical, SeverityHigh, true},
		{SeverityHigh, SeverityHigh, true},
		{SeverityMedium, SeverityHigh, false},
		{SeverityInfo, SeverityLow, false},
		{SeverityLow, SeverityInfo, true},
	}
	for _, tt := range tests {
		if got := tt.sev.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.sev, tt.min, got, tt.want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	got, err := ParseSeverity("  HIGH ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SeverityHigh {
		t.Errorf("ParseSeverity = %q, want %q", got, SeverityHigh)
	}

	if _, err := ParseSeverity("urgent"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestSnippet(t *testing.T) {
	lines := []string{"  first  ", "\tsecond"}

	tests := []struct {
		line int
		want string
	}{
		{1, "first"},
		{2, "second"},
		{0, ""},
		{3, ""},
		{-4, ""},
	}
	for _, tt := range tests {
		if got := Snippet(lines, tt.line); got != tt.want {
			t.Errorf("Snippet(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	lines := []string{"x = 1", "    await ctx.send('hi')   "}
	tmpl := Template{
		Type:        TypeBestPractice,
		Severity:    SeverityInfo,
		Description: "desc",
		Suggestion:  "fix",
		Category:    CategoryRateLimiting,
	}

	iss := New(lines, 2, "discord-api", tmpl)
	if iss.Code != "await ctx.send('hi')" {
		t.Errorf("Code = %q", iss.Code)
	}
	if iss.Line != 2 || iss.Rule != "discord-api" || iss.Category != CategoryRateLimiting {
		t.Errorf("unexpected issue: %+v", iss)
	}

	outOfRange := New(lines, 10, "x", tmpl)
	if outOfRange.Code != "" {
		t.Errorf("out-of-range snippet should be empty, got %q", outOfRange.Code)
	}
}

func TestIssueJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Issue{
		Type:     TypeSecurity,
		Severity: SeverityCritical,
		Line:     7,
		Code:     "x",
		Rule:     "security",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	for _, key := range []string{`"type"`, `"severity"`, `"line":7`, `"description"`, `"code"`, `"suggestion"`, `"category"`} {
		if !strings.Contains(s, key) {
			t.Errorf("JSON missing %s: %s", key, s)
		}
	}
	if strings.Contains(s, `"Rule"`) || strings.Contains(s, `"rule"`) {
		t.Errorf("rule must not be serialized: %s", s)
	}
}
