package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"botlint/internal/aggregate"
	"botlint/internal/report"
)

// timeLayout is RFC 3339 with a fixed nine-digit fraction. Stored in UTC it
// sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ErrNotFound is returned when no run matches an ID.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

// Run is one stored analysis. Report is only populated by Get.
type Run struct {
	ID          string            `json:"id" yaml:"id" toml:"id"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at" toml:"created_at"`
	Source      string            `json:"source" yaml:"source" toml:"source"`
	LineCount   int               `json:"line_count" yaml:"line_count" toml:"line_count"`
	TotalIssues int               `json:"total_issues" yaml:"total_issues" toml:"total_issues"`
	Critical    int               `json:"critical" yaml:"critical" toml:"critical"`
	High        int               `json:"high" yaml:"high" toml:"high"`
	Health      string            `json:"health" yaml:"health" toml:"health"`
	Report      *aggregate.Report `json:"report,omitempty" yaml:"report,omitempty" toml:"report,omitempty"`
}

// NewRun builds a run record for a finished analysis.
func NewRun(source string, lineCount int, r *aggregate.Report, s report.Summary) Run {
	return Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Source:      source,
		LineCount:   lineCount,
		TotalIssues: r.TotalIssues,
		Critical:    s.CriticalCount,
		High:        s.HighCount,
		Health:      s.OverallHealth,
		Report:      r,
	}
}

// Save stores run and prunes runs beyond the configured maximum.
func (db *DB) Save(ctx context.Context, run Run) error {
	if run.Report == nil {
		return fmt.Errorf("run %s has no report", run.ID)
	}
	blob, err := encodeReport(run.Report)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, created_at, source, line_count, total_issues, critical, high, health, report)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, formatTime(run.CreatedAt), run.Source, run.LineCount,
			run.TotalIssues, run.Critical, run.High, run.Health, blob)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if db.maxRuns <= 0 {
			return nil
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM runs WHERE id NOT IN (
				SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
			)
		`, db.maxRuns)
		if err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			db.logger.Debug("Pruned history", "removed", n, "max_runs", db.maxRuns)
		}
		return nil
	})
}

// List returns up to limit runs, newest first, without their reports.
// A limit of zero or less returns every run.
func (db *DB) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, created_at, source, line_count, total_issues, critical, high, health
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &created, &run.Source, &run.LineCount,
			&run.TotalIssues, &run.Critical, &run.High, &run.Health); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get loads a run and its report by full ID or unique ID prefix.
func (db *DB) Get(ctx context.Context, id string) (*Run, error) {
	fullID, err := db.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var run Run
	var created string
	var blob []byte
	err = db.conn.QueryRowContext(ctx, `
		SELECT id, created_at, source, line_count, total_issues, critical, high, health, report
		FROM runs WHERE id = ?
	`, fullID).Scan(&run.ID, &created, &run.Source, &run.LineCount,
		&run.TotalIssues, &run.Critical, &run.High, &run.Health, &blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("run %s: bad timestamp: %w", run.ID, err)
	}
	if run.Report, err = decodeReport(blob); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return &run, nil
}

// Delete removes a run by full ID or unique ID prefix.
func (db *DB) Delete(ctx context.Context, id string) error {
	fullID, err := db.resolveID(ctx, id)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, fullID)
		if err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (db *DB) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "%_") {
		return "", ErrNotFound
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return "", fmt.Errorf("failed to look up run: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		for _, m := range matches {
			if m == id {
				return m, nil
			}
		}
		return "", ErrAmbiguousID
	}
}
