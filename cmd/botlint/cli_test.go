package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"botlint/internal/allowlist"
	lerrors "botlint/internal/errors"
)

// runCLI executes the root command with fresh flag state and captures stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	analyzeFormat, analyzeMinSeverity, analyzeAllowlist, analyzeOutput = "", "", "", ""
	analyzeNoAllowlist, analyzeSave, analyzeWatch = false, false, false
	allowEntry, allowFile = allowlist.Entry{}, ""
	historyFormat, historyLimit = "human", 20
	rewriteOutput = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"-q"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "commands.py")
	if err := os.WriteFile(path, []byte(loadFixture(t)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeCommandJSON(t *testing.T) {
	root := t.TempDir()
	file := writeFixture(t, root)

	out, err := runCLI(t, "", "--root", root, "analyze", "--format", "json", file)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var res struct {
		Source    string `json:"source"`
		LineCount int    `json:"line_count"`
		Report    struct {
			TotalIssues int `json:"total_issues"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if res.Source != "commands.py" || res.LineCount != 249 || res.Report.TotalIssues != 50 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAnalyzeCommandStdin(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, loadFixture(t), "--root", root, "analyze", "--min-severity", "high", "-f", "human")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "<stdin>") || !strings.Contains(out, "Issues: 2") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAnalyzeCommandCriticalExit(t *testing.T) {
	root := t.TempDir()
	code := "async def find(db, name):\n    await db.execute(\"SELECT * FROM users WHERE name = '\" + name + \"'\")\n"

	_, err := runCLI(t, code, "--root", root, "analyze", "-f", "json")
	var exit *exitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if exit.code != exitCritical {
		t.Errorf("exit code = %d, want %d", exit.code, exitCritical)
	}

	if _, err := runCLI(t, code, "--root", root, "analyze", "-f", "json", "--min-severity", "critical", "--no-allowlist"); !errors.As(err, &exit) {
		t.Errorf("critical issue should survive the severity filter, got %v", err)
	}
}

func TestAnalyzeCommandBadSeverity(t *testing.T) {
	_, err := runCLI(t, "x = 1\n", "--root", t.TempDir(), "analyze", "--min-severity", "urgent")
	if err == nil {
		t.Fatal("expected error for unknown severity")
	}
}

func TestAnalyzeWatchNeedsFile(t *testing.T) {
	_, err := runCLI(t, "x = 1\n", "--root", t.TempDir(), "analyze", "--watch")
	if err == nil || !strings.Contains(err.Error(), "INVALID_INPUT") {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestAllowlistSuppressesIssues(t *testing.T) {
	root := t.TempDir()
	file := writeFixture(t, root)

	if _, err := runCLI(t, "", "--root", root, "allowlist", "add",
		"--id", "rl", "--category", "Rate Limiting", "--reason", "handled by the gateway"); err != nil {
		t.Fatalf("allowlist add failed: %v", err)
	}

	out, err := runCLI(t, "", "--root", root, "allowlist", "list")
	if err != nil || !strings.Contains(out, "rl  category=") {
		t.Fatalf("allowlist list = %q, %v", out, err)
	}

	out, err = runCLI(t, "", "--root", root, "analyze", "-f", "human", file)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "Issues: 27   Suppressed: 23") {
		t.Errorf("allowlist not applied:\n%s", out)
	}

	if _, err := runCLI(t, "", "--root", root, "allowlist", "remove", "rl"); err != nil {
		t.Fatalf("allowlist remove failed: %v", err)
	}
	out, _ = runCLI(t, "", "--root", root, "analyze", "-f", "human", file)
	if !strings.Contains(out, "Issues: 50") {
		t.Errorf("removed entry still applied:\n%s", out)
	}
}

func TestHistoryCommands(t *testing.T) {
	root := t.TempDir()
	file := writeFixture(t, root)

	if _, err := runCLI(t, "", "--root", root, "analyze", "--save", "-f", "json", file); err != nil {
		t.Fatalf("analyze --save failed: %v", err)
	}

	out, err := runCLI(t, "", "--root", root, "history", "list", "-f", "json")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	var doc struct {
		Runs []struct {
			ID          string `json:"id"`
			TotalIssues int    `json:"total_issues"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(doc.Runs) != 1 || doc.Runs[0].TotalIssues != 50 {
		t.Fatalf("unexpected runs: %+v", doc.Runs)
	}

	id := doc.Runs[0].ID
	out, err = runCLI(t, "", "--root", root, "history", "show", id[:8])
	if err != nil || !strings.Contains(out, "Health: Regular") {
		t.Errorf("history show = %q, %v", out, err)
	}

	if _, err := runCLI(t, "", "--root", root, "history", "delete", id); err != nil {
		t.Fatalf("history delete failed: %v", err)
	}
	out, _ = runCLI(t, "", "--root", root, "history", "list")
	if !strings.Contains(out, "No recorded runs.") {
		t.Errorf("run not deleted:\n%s", out)
	}

	_, err = runCLI(t, "", "--root", root, "history", "show", id)
	if lerrors.CodeOf(err) != lerrors.RunNotFound {
		t.Errorf("show after delete: %v", err)
	}
}

func TestRewriteCommand(t *testing.T) {
	out, err := runCLI(t, loadFixture(t), "--root", t.TempDir(), "rewrite")
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if !strings.HasPrefix(out, "import discord") || !strings.Contains(out, "import logging") {
		t.Errorf("unexpected rewrite output:\n%.200s", out)
	}
}

func TestPrintErrorHints(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, fmt.Errorf("run abc: %w", lerrors.New(lerrors.RunNotFound, "no such run", nil)))
	out := buf.String()
	if !strings.HasPrefix(out, "Error: run abc: [RUN_NOT_FOUND] no such run") {
		t.Errorf("unexpected message: %q", out)
	}
	if !strings.Contains(out, "hint: List stored runs: botlint history list") {
		t.Errorf("missing hint: %q", out)
	}

	buf.Reset()
	printError(&buf, errors.New("plain"))
	if buf.String() != "Error: plain\n" {
		t.Errorf("plain error = %q", buf.String())
	}
}
