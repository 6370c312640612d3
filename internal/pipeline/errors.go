package pipeline

import "fmt"

// GenerationError records a step that could not produce output. It is
// collected by the controller and never aborts a run.
type GenerationError struct {
	Step  int
	Name  string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Name, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// FinalizationError means the README could not be assembled or written.
// Unlike step failures it ends the run with an error.
type FinalizationError struct {
	Path  string
	Cause error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("finalization failed for %s: %v", e.Path, e.Cause)
}

func (e *FinalizationError) Unwrap() error {
	return e.Cause
}
