// Package output manages the files a README run leaves in its working
// directory: one output per pipeline step, the final step's reasoning, and
// optional debug intermediates. The presence of a non-empty step output is the
// only record of progress; there is no separate checkpoint file.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonathan/readme-generator/internal/types"
)

// ReasoningFile is the name of the final step's reasoning artifact.
const ReasoningFile = "reasoning.md"

const stepFilePattern = "step_*_output.md"

// Store manages step outputs inside one output directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created lazily on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's output directory.
func (s *Store) Dir() string {
	return s.dir
}

// StepPath returns the output path for a step, e.g. step_01_output.md.
func (s *Store) StepPath(step int) string {
	return filepath.Join(s.dir, StepFileName(step))
}

// StepFileName returns the file name used for a step's output.
func StepFileName(step int) string {
	return fmt.Sprintf("step_%02d_output.md", step)
}

// ReasoningPath returns the path of the reasoning artifact.
func (s *Store) ReasoningPath() string {
	return filepath.Join(s.dir, ReasoningFile)
}

// Write replaces a step's output in one atomic operation.
func (s *Store) Write(step int, content string) error {
	if err := WriteAtomic(s.StepPath(step), []byte(content)); err != nil {
		return fmt.Errorf("failed to write output for step %d: %w", step, err)
	}
	return nil
}

// WriteReasoning replaces the reasoning artifact.
func (s *Store) WriteReasoning(content string) error {
	if err := WriteAtomic(s.ReasoningPath(), []byte(content)); err != nil {
		return fmt.Errorf("failed to write reasoning: %w", err)
	}
	return nil
}

// Read loads a step's output. A missing file yields an error matching fs.ErrNotExist.
func (s *Store) Read(step int) (types.StepOutput, error) {
	path := s.StepPath(step)
	info, err := os.Stat(path)
	if err != nil {
		return types.StepOutput{}, fmt.Errorf("failed to read output for step %d: %w", step, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.StepOutput{}, fmt.Errorf("failed to read output for step %d: %w", step, err)
	}
	return types.StepOutput{Step: step, Content: string(data), Timestamp: info.ModTime()}, nil
}

// IsCompleted reports whether a step's output exists and is non-empty.
func (s *Store) IsCompleted(step int) bool {
	info, err := os.Stat(s.StepPath(step))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// LastCompleted returns the highest step in steps whose output is completed, or 0.
func (s *Store) LastCompleted(steps []int) int {
	last := 0
	for _, step := range steps {
		if step > last && s.IsCompleted(step) {
			last = step
		}
	}
	return last
}

// PriorOutputs returns the content of every completed step numbered below step.
// Steps without output are absent from the map.
func (s *Store) PriorOutputs(step int) (map[int]string, error) {
	outputs := make(map[int]string)
	for prior := 1; prior < step; prior++ {
		if !s.IsCompleted(prior) {
			continue
		}
		out, err := s.Read(prior)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		outputs[prior] = out.Content
	}
	return outputs, nil
}

// Cleanup deletes every step output and the reasoning artifact, returning the
// removed paths in sorted order. Missing files are not an error.
func (s *Store) Cleanup() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, stepFilePattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list step outputs: %w", err)
	}
	matches = append(matches, s.ReasoningPath())
	sort.Strings(matches)

	var removed []string
	var errs []error
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}
