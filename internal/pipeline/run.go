// Package pipeline provides the high-level orchestration for README
// generation: it decides which steps to run, executes them in order and
// merges the result into the repository's README.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/readme-generator/internal/db"
	"github.com/jonathan/readme-generator/internal/evaluation"
	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/output"
	"github.com/jonathan/readme-generator/internal/pipeline/steps"
	"github.com/jonathan/readme-generator/internal/rendering"
	"github.com/jonathan/readme-generator/internal/repository"
	"github.com/jonathan/readme-generator/internal/types"
)

// State is the controller's position in a run.
type State string

const (
	StateNotStarted      State = "NOT_STARTED"
	StateRunning         State = "RUNNING"
	StateCompleted       State = "COMPLETED"
	StatePartiallyFailed State = "PARTIALLY_FAILED"
	StateSkipped         State = "SKIPPED"
)

const (
	// DefaultOutputDirName is the working directory created inside the repository.
	DefaultOutputDirName = "output"
	// ReadmeFileName is the finalized artifact written at the repository root.
	ReadmeFileName = "README.md"
)

// ErrOnlyModeWithoutStep is returned when only mode is requested without a step.
var ErrOnlyModeWithoutStep = errors.New("only mode requires an explicit step")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     int    `json:"step"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RepositoryAnalyzer produces the repository context for a run.
type RepositoryAnalyzer interface {
	Analyze(ctx context.Context, repoPath string, update bool) (*types.RepositoryContext, error)
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	RepoPath string
	// OutputDir holds step outputs; defaults to <repo>/output.
	OutputDir string
	// StartStep runs every step from StartStep on; 0 resumes after the last completed step.
	StartStep int
	// OnlyMode runs StartStep alone and skips finalization.
	OnlyMode          bool
	KeepSteps         bool
	SaveIntermediates bool
	// Force runs even when the repository already has a README.
	Force          bool
	UpdateAnalysis bool
	Model          string

	Analyzer  RepositoryAnalyzer
	Generator TextGenerator
	// Classifier defaults to an evaluation.Classifier backed by Generator.
	Classifier Classifier
	// Recorder is optional run history.
	Recorder   db.Recorder
	Logger     zerolog.Logger
	Now        func() time.Time
	OnProgress ProgressCallback
}

// RunReport summarizes a run.
type RunReport struct {
	RunID         uuid.UUID      `json:"run_id"`
	State         State          `json:"state"`
	Window        []int          `json:"window,omitempty"`
	Executed      []int          `json:"executed,omitempty"`
	Failed        []int          `json:"failed,omitempty"`
	StepErrors    map[int]string `json:"step_errors,omitempty"`
	ReadmePath    string         `json:"readme_path,omitempty"`
	FinalizedFrom int            `json:"finalized_from,omitempty"`
	Removed       []string       `json:"removed,omitempty"`
	SkipReason    string         `json:"skip_reason,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
}

// Succeeded returns the executed steps that did not fail.
func (r *RunReport) Succeeded() []int {
	failed := make(map[int]bool, len(r.Failed))
	for _, s := range r.Failed {
		failed[s] = true
	}
	var ok []int
	for _, s := range r.Executed {
		if !failed[s] {
			ok = append(ok, s)
		}
	}
	return ok
}

// Run executes the pipeline. Step failures are reported in the RunReport and
// do not produce an error; a failed finalization, an analysis failure or an
// invalid step request does.
func Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	if opts.Analyzer == nil || opts.Generator == nil {
		return nil, errors.New("pipeline requires an analyzer and a generator")
	}
	if opts.OnlyMode && opts.StartStep == 0 {
		return nil, ErrOnlyModeWithoutStep
	}
	if opts.StartStep != 0 {
		if _, err := steps.Lookup(opts.StartStep); err != nil {
			return nil, err
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	repoPath, err := filepath.Abs(opts.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path: %w", err)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(repoPath, DefaultOutputDirName)
	}

	report := &RunReport{RunID: uuid.New(), State: StateNotStarted, StartedAt: now()}
	log := opts.Logger.With().Str("run_id", report.RunID.String()).Logger()
	history := &runHistory{recorder: opts.Recorder, logger: log, runID: report.RunID}
	history.start(ctx, filepath.Base(repoPath), repoPath, opts.Model, report.StartedAt)

	if !opts.Force {
		if found, path := repository.HasPopulatedReadme(repoPath); found {
			report.State = StateSkipped
			report.SkipReason = "README already exists at " + path
			report.CompletedAt = now()
			log.Info().Str("readme", path).Msg("README already exists, skipping generation")
			history.finish(ctx, db.RunStatusSkipped, nil)
			return report, nil
		}
	}

	store := output.NewStore(outputDir)
	window, err := computeWindow(store, opts)
	if err != nil {
		history.finish(ctx, db.RunStatusFailed, nil)
		return report, err
	}
	if len(window) == 0 {
		report.State = StateCompleted
		report.CompletedAt = now()
		log.Info().Msg("All steps already completed, nothing to do")
		history.finish(ctx, db.RunStatusCompleted, nil)
		return report, nil
	}
	report.Window = window
	report.State = StateRunning
	history.skipOutside(ctx, window, now())

	repo, err := opts.Analyzer.Analyze(ctx, repoPath, opts.UpdateAnalysis)
	if err != nil {
		report.CompletedAt = now()
		history.finish(ctx, db.RunStatusFailed, nil)
		return report, fmt.Errorf("repository analysis failed: %w", err)
	}

	intermediates := output.NewIntermediates(outputDir, opts.SaveIntermediates)
	if err := intermediates.SaveRepositoryContext(repo); err != nil {
		log.Warn().Err(err).Msg("Failed to save repository context")
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = evaluation.NewClassifier(opts.Generator, log)
	}
	executor := NewExecutor(store, NewBuilder(classifier, log), opts.Generator, intermediates, log)

	for i, step := range window {
		def, _ := steps.Lookup(step)
		if err := ctx.Err(); err != nil {
			report.CompletedAt = now()
			history.finish(ctx, db.RunStatusFailed, report.Failed)
			return report, err
		}

		emitProgress(&opts, report.RunID, def, fmt.Sprintf("Step %d/%d: %s", i+1, len(window), def.Name), false)
		started := now()
		stepErr := executor.Execute(ctx, step, repo)
		report.Executed = append(report.Executed, step)

		if stepErr != nil {
			report.Failed = append(report.Failed, step)
			if report.StepErrors == nil {
				report.StepErrors = make(map[int]string)
			}
			report.StepErrors[step] = stepErr.Error()
			log.Error().Err(stepErr).Int("step", step).Str("name", def.Name).Msg("Step failed")
			emitProgress(&opts, report.RunID, def, fmt.Sprintf("Step %d failed: %v", step, stepErr), true)
			history.step(ctx, def, db.StepStatusFailed, now().Sub(started), stepErr)
			continue
		}
		history.step(ctx, def, db.StepStatusCompleted, now().Sub(started), nil)
	}

	succeeded := len(report.Succeeded()) > 0
	if !opts.OnlyMode && succeeded {
		if err := finalize(store, repoPath, repo.Name, opts, now(), intermediates, report, log); err != nil {
			report.State = StatePartiallyFailed
			report.CompletedAt = now()
			history.finish(ctx, db.RunStatusFailed, report.Failed)
			return report, err
		}
	}

	report.CompletedAt = now()
	switch {
	case len(report.Failed) == 0:
		report.State = StateCompleted
		history.finish(ctx, db.RunStatusCompleted, nil)
	case succeeded:
		report.State = StatePartiallyFailed
		history.finish(ctx, db.RunStatusPartiallyFailed, report.Failed)
	default:
		report.State = StatePartiallyFailed
		history.finish(ctx, db.RunStatusFailed, report.Failed)
	}
	log.Info().
		Str("state", string(report.State)).
		Ints("executed", report.Executed).
		Ints("failed", report.Failed).
		Msg("Pipeline finished")
	return report, nil
}

// computeWindow returns the steps to execute. An empty window means every
// step already has output.
func computeWindow(store *output.Store, opts RunOptions) ([]int, error) {
	switch {
	case opts.OnlyMode:
		return []int{opts.StartStep}, nil
	case opts.StartStep != 0:
		return steps.Window(opts.StartStep)
	}

	last := store.LastCompleted(steps.Numbers())
	if last == steps.Last() {
		return nil, nil
	}
	if last == 0 {
		return steps.Numbers(), nil
	}
	return steps.Window(last + 1)
}

// finalize writes the watermarked README from the last step's output, or from
// the highest completed step when the last step has none, then removes step
// outputs unless KeepSteps is set.
func finalize(store *output.Store, repoPath, repoName string, opts RunOptions, date time.Time, intermediates *output.Intermediates, report *RunReport, log zerolog.Logger) error {
	target := filepath.Join(repoPath, ReadmeFileName)

	from := steps.Last()
	out, err := store.Read(from)
	content := out.Content
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FinalizationError{Path: target, Cause: err}
	}
	if err != nil || strings.TrimSpace(content) == "" {
		from = store.LastCompleted(steps.Numbers())
		if from == 0 {
			return &FinalizationError{Path: target, Cause: errors.New("no step output to finalize")}
		}
		out, err = store.Read(from)
		if err != nil {
			return &FinalizationError{Path: target, Cause: err}
		}
		content = llm.StripCodeFence(out.Content)
		log.Warn().Int("step", from).Msg("Final step has no output, finalizing from an earlier step")
	}

	doc := rendering.ApplyWatermark(content, date, opts.Model)
	if err := output.WriteAtomic(target, []byte(doc)); err != nil {
		return &FinalizationError{Path: target, Cause: err}
	}
	report.ReadmePath = target
	report.FinalizedFrom = from
	log.Info().Str("readme", target).Int("from_step", from).Msg("README written")

	if err := intermediates.SaveFinalReadme(repoName, doc); err != nil {
		log.Warn().Err(err).Msg("Failed to save final README copy")
	}

	if !opts.KeepSteps {
		removed, err := store.Cleanup()
		report.Removed = removed
		if err != nil {
			log.Warn().Err(err).Msg("Failed to remove some step outputs")
		}
	}
	return nil
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, def steps.StepDefinition, message string, failed bool) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     def.Number,
			Name:     def.Name,
			Category: def.Category,
			Message:  message,
			RunID:    runID.String(),
			Failed:   failed,
		})
	}
}

// runHistory forwards run events to an optional recorder. Recording errors
// are logged and never change the run outcome.
type runHistory struct {
	recorder db.Recorder
	logger   zerolog.Logger
	runID    uuid.UUID
	created  bool
}

func (h *runHistory) start(ctx context.Context, repoName, repoPath, model string, startedAt time.Time) {
	if h.recorder == nil {
		return
	}
	run := &db.Run{ID: h.runID, RepoName: repoName, RepoPath: repoPath, Model: model, Status: db.RunStatusRunning, StartedAt: startedAt}
	if err := h.recorder.CreateRun(ctx, run); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to record run")
		return
	}
	h.created = true
}

func (h *runHistory) step(ctx context.Context, def steps.StepDefinition, status string, duration time.Duration, stepErr error) {
	if !h.created {
		return
	}
	rec := &db.RunStep{
		RunID:      h.runID,
		Step:       def.Number,
		Name:       def.Name,
		Status:     status,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if stepErr != nil {
		rec.Error = stepErr.Error()
	}
	if err := h.recorder.RecordStep(ctx, rec); err != nil {
		h.logger.Warn().Err(err).Int("step", def.Number).Msg("Failed to record step")
	}
}

func (h *runHistory) skipOutside(ctx context.Context, window []int, at time.Time) {
	if !h.created {
		return
	}
	inWindow := make(map[int]bool, len(window))
	for _, s := range window {
		inWindow[s] = true
	}
	for _, s := range steps.Numbers() {
		if inWindow[s] {
			continue
		}
		def, _ := steps.Lookup(s)
		rec := &db.RunStep{RunID: h.runID, Step: s, Name: def.Name, Status: db.StepStatusSkipped, CreatedAt: at}
		if err := h.recorder.RecordStep(ctx, rec); err != nil {
			h.logger.Warn().Err(err).Int("step", s).Msg("Failed to record step")
		}
	}
}

func (h *runHistory) finish(ctx context.Context, status string, failed []int) {
	if !h.created {
		return
	}
	if err := h.recorder.CompleteRun(context.WithoutCancel(ctx), h.runID, status, failed); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to complete run record")
	}
}
