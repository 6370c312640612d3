// Package db records README generation runs in PostgreSQL or SQLite.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning         = "running"
	RunStatusCompleted       = "completed"
	RunStatusPartiallyFailed = "partially_failed"
	RunStatusSkipped         = "skipped"
	RunStatusFailed          = "failed"
)

// Step statuses.
const (
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
	StepStatusSkipped   = "skipped"
)

// Run is one invocation of the pipeline against a repository.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	RepoName    string     `json:"repo_name"`
	RepoPath    string     `json:"repo_path"`
	Model       string     `json:"model"`
	Status      string     `json:"status"`
	FailedSteps []int      `json:"failed_steps,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStep is the outcome of one step within a run.
type RunStep struct {
	RunID      uuid.UUID `json:"run_id"`
	Step       int       `json:"step"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Recorder persists run history.
type Recorder interface {
	CreateRun(ctx context.Context, run *Run) error
	RecordStep(ctx context.Context, step *RunStep) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, failedSteps []int) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error)
	Close()
}

// Open connects to the run history store named by databaseURL:
// postgres:// and postgresql:// use PostgreSQL; sqlite://<path> or a path
// ending in .db uses SQLite. The schema is created if missing.
func Open(ctx context.Context, databaseURL string) (Recorder, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pg, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.HasPrefix(databaseURL, sqliteScheme), strings.HasSuffix(databaseURL, ".db"):
		lite, err := OpenSQLite(ctx, strings.TrimPrefix(databaseURL, sqliteScheme))
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
	return nil, fmt.Errorf("unsupported database URL %q", databaseURL)
}

func encodeSteps(steps []int) string {
	if len(steps) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(steps)
	return string(data)
}

func decodeSteps(raw string) []int {
	var steps []int
	_ = json.Unmarshal([]byte(raw), &steps)
	if len(steps) == 0 {
		return nil
	}
	return steps
}
