package repository

import "fmt"

// AnalysisError represents a failure to analyze a repository
type AnalysisError struct {
	Path    string
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis error: %s: %s", e.Path, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
