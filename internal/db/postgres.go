package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS readme_runs (
	id           UUID PRIMARY KEY,
	repo_name    TEXT NOT NULL,
	repo_path    TEXT NOT NULL,
	model        TEXT NOT NULL,
	status       TEXT NOT NULL,
	failed_steps TEXT NOT NULL DEFAULT '[]',
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS readme_run_steps (
	run_id      UUID NOT NULL REFERENCES readme_runs(id) ON DELETE CASCADE,
	step        INTEGER NOT NULL,
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, step)
);`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and ensures the schema exists
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun inserts a run, assigning an ID when run.ID is nil
func (db *DB) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO readme_runs (id, repo_name, repo_path, model, status, failed_steps, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.RepoName, run.RepoPath, run.Model, run.Status, encodeSteps(run.FailedSteps), run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// RecordStep stores a step outcome, replacing an earlier record for the same step
func (db *DB) RecordStep(ctx context.Context, step *RunStep) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO readme_run_steps (run_id, step, name, status, duration_ms, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET name = $3, status = $4, duration_ms = $5, error = $6, created_at = $7`,
		step.RunID, step.Step, step.Name, step.Status, step.DurationMs, step.Error, step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %d: %w", step.Step, err)
	}
	return nil
}

// CompleteRun sets the final status of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, failedSteps []int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE readme_runs SET status = $1, failed_steps = $2, completed_at = NOW() WHERE id = $3`,
		status, encodeSteps(failedSteps), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, repo_name, repo_path, model, status, failed_steps, started_at, completed_at
		 FROM readme_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var failed string
		if err := rows.Scan(&run.ID, &run.RepoName, &run.RepoPath, &run.Model, &run.Status,
			&failed, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.FailedSteps = decodeSteps(failed)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRunSteps returns the steps recorded for a run in step order
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, step, name, status, duration_ms, error, created_at
		 FROM readme_run_steps WHERE run_id = $1 ORDER BY step`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		if err := rows.Scan(&step.RunID, &step.Step, &step.Name, &step.Status,
			&step.DurationMs, &step.Error, &step.CreatedAt); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
