package evaluation

import "fmt"

// EvaluationError describes why a README could not be evaluated. It never
// escapes Classify; its message becomes the assessment rationale.
type EvaluationError struct {
	Message string
	Cause   error
}

func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Error during evaluation: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("Error during evaluation: %s", e.Message)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
