package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Version 2 added the line_count column. Version 3 stores created_at in the
// fixed-width timeLayout so that text order is time order.
const currentSchemaVersion = 3

func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRunsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("History schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("History schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("history schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running history migrations",
		"from_version", version,
		"to_version", currentSchemaVersion)

	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if version < 1 {
			if err := createSchemaVersionTable(tx); err != nil {
				return err
			}
			if err := createRunsTable(tx); err != nil {
				return err
			}
			return setSchemaVersion(tx, currentSchemaVersion)
		}
		if version < 2 {
			if _, err := tx.Exec(`ALTER TABLE runs ADD COLUMN line_count INTEGER NOT NULL DEFAULT 0`); err != nil {
				return fmt.Errorf("failed to add line_count: %w", err)
			}
		}
		if version < 3 {
			if err := normalizeTimestamps(tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// normalizeTimestamps rewrites created_at values written with RFC 3339
// trailing-zero trimming into timeLayout.
func normalizeTimestamps(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, created_at FROM runs`)
	if err != nil {
		return fmt.Errorf("failed to read timestamps: %w", err)
	}
	stamps := make(map[string]string)
	for rows.Next() {
		var id, created string
		if err := rows.Scan(&id, &created); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan timestamp: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			rows.Close()
			return fmt.Errorf("run %s: bad timestamp: %w", id, err)
		}
		stamps[id] = formatTime(t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, created := range stamps {
		if _, err := tx.Exec(`UPDATE runs SET created_at = ? WHERE id = ?`, created, id); err != nil {
			return fmt.Errorf("failed to rewrite timestamp of %s: %w", id, err)
		}
	}
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func createRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			line_count INTEGER NOT NULL DEFAULT 0,
			total_issues INTEGER NOT NULL,
			critical INTEGER NOT NULL,
			high INTEGER NOT NULL,
			health TEXT NOT NULL,
			report BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`)
	return err
}
