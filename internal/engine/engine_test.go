package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"botlint/internal/allowlist"
	lerrors "botlint/internal/errors"
	"botlint/internal/history"
	"botlint/internal/issue"
	"botlint/internal/report"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzeFixture(t *testing.T) {
	e := New(Options{Logger: testLogger()})
	res, err := e.Analyze(context.Background(), Request{Source: "commands.py", Code: loadFixture(t)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.LineCount != 249 {
		t.Errorf("LineCount = %d, want 249", res.LineCount)
	}
	if res.Report.TotalIssues != 50 {
		t.Errorf("TotalIssues = %d, want 50", res.Report.TotalIssues)
	}
	if res.Summary.OverallHealth != report.HealthRegular {
		t.Errorf("health = %q, want %q", res.Summary.OverallHealth, report.HealthRegular)
	}
	if res.RunID != "" {
		t.Errorf("run should not be saved without a store, got id %q", res.RunID)
	}
}

func TestAnalyzeMinSeverity(t *testing.T) {
	e := New(Options{})
	res, err := e.Analyze(context.Background(), Request{Code: loadFixture(t), MinSeverity: issue.SeverityMedium})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Report.TotalIssues != 5 {
		t.Errorf("TotalIssues = %d, want 5 (2 high + 3 medium)", res.Report.TotalIssues)
	}
	if res.Summary.TotalIssues != 5 {
		t.Errorf("summary should follow the filtered report, got %d", res.Summary.TotalIssues)
	}
}

func TestAnalyzeAllowlist(t *testing.T) {
	allow := &allowlist.List{Entries: []allowlist.Entry{{ID: "rl", Category: issue.CategoryRateLimiting}}}
	e := New(Options{Allowlist: allow})

	res, err := e.Analyze(context.Background(), Request{Code: loadFixture(t)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Suppressed != 23 {
		t.Errorf("Suppressed = %d, want 23", res.Suppressed)
	}
	if res.Report.TotalIssues != 27 {
		t.Errorf("TotalIssues = %d, want 27", res.Report.TotalIssues)
	}
}

func TestAnalyzeSave(t *testing.T) {
	db, err := history.Open(t.TempDir(), 0, testLogger())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	e := New(Options{History: db, Logger: testLogger()})
	defer e.Close()

	ctx := context.Background()
	res, err := e.Analyze(ctx, Request{Source: "commands.py", Code: loadFixture(t), Save: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}

	run, err := e.History().Get(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.TotalIssues != 50 || run.High != 2 || run.LineCount != 249 {
		t.Errorf("stored run mismatch: %+v", run)
	}
}

func TestAnalyzeSaveFailure(t *testing.T) {
	db, err := history.Open(t.TempDir(), 0, testLogger())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	db.Close()

	e := New(Options{History: db})
	_, err = e.Analyze(context.Background(), Request{Code: "x = 1", Save: true})
	if lerrors.CodeOf(err) != lerrors.StorageUnavailable {
		t.Errorf("error code = %v, want STORAGE_UNAVAILABLE (err=%v)", lerrors.CodeOf(err), err)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Analyze(ctx, Request{Code: "x"}); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	res, err := New(Options{}).Analyze(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Report.TotalIssues != 0 || res.LineCount != 0 {
		t.Errorf("empty input should yield nothing: %+v", res)
	}
	if res.Summary.OverallHealth != report.HealthExcellent {
		t.Errorf("health = %q", res.Summary.OverallHealth)
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := LineCount(tt.in); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
