package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteScheme = "sqlite://"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS readme_runs (
	id           TEXT PRIMARY KEY,
	repo_name    TEXT NOT NULL,
	repo_path    TEXT NOT NULL,
	model        TEXT NOT NULL,
	status       TEXT NOT NULL,
	failed_steps TEXT NOT NULL DEFAULT '[]',
	started_at   TEXT NOT NULL,
	completed_at TEXT
);
CREATE TABLE IF NOT EXISTS readme_run_steps (
	run_id      TEXT NOT NULL REFERENCES readme_runs(id) ON DELETE CASCADE,
	step        INTEGER NOT NULL,
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	PRIMARY KEY (run_id, step)
);`

// timestamps are stored as sortable UTC text
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteDB records runs in a local SQLite file.
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer at a time
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteDB{db: conn, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteDB) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *SQLiteDB) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readme_runs (id, repo_name, repo_path, model, status, failed_steps, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.RepoName, run.RepoPath, run.Model, run.Status,
		encodeSteps(run.FailedSteps), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *SQLiteDB) RecordStep(ctx context.Context, step *RunStep) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readme_run_steps (run_id, step, name, status, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET name = excluded.name, status = excluded.status, duration_ms = excluded.duration_ms,
		     error = excluded.error, created_at = excluded.created_at`,
		step.RunID.String(), step.Step, step.Name, step.Status, step.DurationMs, step.Error, formatTime(step.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record step %d: %w", step.Step, err)
	}
	return nil
}

func (s *SQLiteDB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, failedSteps []int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE readme_runs SET status = ?, failed_steps = ?, completed_at = ? WHERE id = ?`,
		status, encodeSteps(failedSteps), formatTime(s.now()), runID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

func (s *SQLiteDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo_name, repo_path, model, status, failed_steps, started_at, completed_at
		 FROM readme_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run                   Run
			id, failed, startedAt string
			completedAt           sql.NullString
		)
		if err := rows.Scan(&id, &run.RepoName, &run.RepoPath, &run.Model, &run.Status,
			&failed, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.FailedSteps = decodeSteps(failed)
		run.StartedAt = parseTime(startedAt)
		if completedAt.Valid {
			t := parseTime(completedAt.String)
			run.CompletedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteDB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, name, status, duration_ms, error, created_at
		 FROM readme_run_steps WHERE run_id = ? ORDER BY step`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []RunStep
	for rows.Next() {
		step := RunStep{RunID: runID}
		var createdAt string
		if err := rows.Scan(&step.Step, &step.Name, &step.Status, &step.DurationMs, &step.Error, &createdAt); err != nil {
			return nil, err
		}
		step.CreatedAt = parseTime(createdAt)
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
