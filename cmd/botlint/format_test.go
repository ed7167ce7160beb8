package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"botlint/internal/allowlist"
	"botlint/internal/engine"
	"botlint/internal/history"
	"botlint/internal/issue"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "testdata", "fixtures", "bot", "commands.py")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func analyzeFixture(t *testing.T) *engine.Result {
	t.Helper()
	res, err := engine.New(engine.Options{}).Analyze(context.Background(), engine.Request{
		Source: "bot/commands.py",
		Code:   loadFixture(t),
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return res
}

func TestFormatDocument(t *testing.T) {
	doc := map[string]int{"num": 42}

	out, err := formatDocument(doc, "json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"num": 42`) {
		t.Errorf("JSON output missing key: %s", out)
	}

	out, err = formatDocument(doc, "yml", nil)
	if err != nil || !strings.Contains(out, "num: 42") {
		t.Errorf("YAML output = %q, %v", out, err)
	}

	out, err = formatDocument(doc, "human", func() string { return "human!" })
	if err != nil || out != "human!" {
		t.Errorf("human output = %q, %v", out, err)
	}

	if _, err := formatDocument(doc, "xml", nil); err == nil || !strings.Contains(err.Error(), "UNSUPPORTED_FORMAT") {
		t.Errorf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
}

func TestFormatAnalysisHuman(t *testing.T) {
	out := formatAnalysisHuman(analyzeFixture(t))

	for _, want := range []string{
		"bot/commands.py (249 lines)",
		"Health: Regular   Issues: 50",
		"  high        2",
		"  info       23",
		"[HIGH] line 119",
		"Most common category: Rate Limiting",
		"Priority fixes:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "  critical") {
		t.Error("severities without issues should be omitted")
	}
	if strings.Index(out, "[HIGH]") > strings.Index(out, "[INFO]") {
		t.Error("issues should be listed most severe first")
	}
}

func TestFormatAnalysisHumanEmpty(t *testing.T) {
	res, _ := engine.New(engine.Options{}).Analyze(context.Background(), engine.Request{Source: "<stdin>"})
	out := formatAnalysisHuman(res)
	if !strings.Contains(out, "No issues found.") || !strings.Contains(out, "Health: Excellent") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderResultFormats(t *testing.T) {
	res := analyzeFixture(t)

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"total_issues": 50`},
		{"yaml", "total_issues: 50"},
		{"toml", "total_issues = 50"},
		{"html", "<!DOCTYPE html>"},
		{"sarif", `"version": "2.1.0"`},
		{"human", "Health: Regular"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := renderResult(res, tt.format)
			if err != nil {
				t.Fatalf("renderResult(%s): %v", tt.format, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q", tt.want)
			}
		})
	}

	if _, err := renderResult(res, "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatRunsHuman(t *testing.T) {
	if out := formatRunsHuman(nil); out != "No recorded runs.\n" {
		t.Errorf("empty list = %q", out)
	}

	out := formatRunsHuman([]history.Run{{
		ID:          "0123456789abcdef",
		CreatedAt:   time.Date(2026, 2, 3, 4, 5, 0, 0, time.UTC),
		Source:      "bot/commands.py",
		TotalIssues: 50,
		High:        2,
		Health:      "Regular",
	}})
	if !strings.Contains(out, "01234567 ") || strings.Contains(out, "0123456789") {
		t.Errorf("id should be shortened:\n%s", out)
	}
	if !strings.Contains(out, "bot/commands.py") || !strings.Contains(out, "Regular") {
		t.Errorf("missing columns:\n%s", out)
	}
}

func TestFormatAdviceHuman(t *testing.T) {
	out, err := formatDocument(adviceDocument{}, "human", func() string {
		return formatAdviceHuman(adviceDocument{})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Refactoring suggestions") || !strings.Contains(out, "Security fixes") {
		t.Errorf("missing headings:\n%s", out)
	}
}

func TestFormatAllowlistHuman(t *testing.T) {
	if out := formatAllowlistHuman(&allowlist.List{}); out != "Allowlist is empty.\n" {
		t.Errorf("empty = %q", out)
	}
	out := formatAllowlistHuman(&allowlist.List{Entries: []allowlist.Entry{
		{ID: "rl", Category: issue.CategoryRateLimiting, Line: 31, Reason: "gateway"},
	}})
	if !strings.Contains(out, `rl  category="Rate Limiting" line=31`) || !strings.Contains(out, "reason: gateway") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
