// Package steps provides the static step definitions and dependency
// validation for the README generation pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step numbers of the README pipeline.
const (
	StepPurpose  = 1
	StepUsage    = 2
	StepDraft    = 3
	StepOptimize = 4
)

// Step categories group steps for reporting.
const (
	CategoryAnalysis    = "analysis"
	CategoryComposition = "composition"
)

// StepDefinition defines metadata for a pipeline step. Name doubles as the
// prompt key in prompts.StepsFile.
type StepDefinition struct {
	Number                int
	Name                  string
	Category              string
	Dependencies          []int
	DependsOnPriorOutputs bool
}

// stepRegistry holds all step definitions. Step numbers are dense and start at 1.
var stepRegistry = map[int]StepDefinition{
	StepPurpose: {
		Number:   StepPurpose,
		Name:     "project-purpose",
		Category: CategoryAnalysis,
	},
	StepUsage: {
		Number:   StepUsage,
		Name:     "usage-instructions",
		Category: CategoryAnalysis,
	},
	StepDraft: {
		Number:                StepDraft,
		Name:                  "draft-readme",
		Category:              CategoryComposition,
		Dependencies:          []int{StepPurpose, StepUsage},
		DependsOnPriorOutputs: true,
	},
	StepOptimize: {
		Number:                StepOptimize,
		Name:                  "final-readme",
		Category:              CategoryComposition,
		Dependencies:          []int{StepDraft},
		DependsOnPriorOutputs: true,
	},
}

// InvalidStepError is returned for a step number outside the registry.
type InvalidStepError struct {
	Step int
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step %d: known steps are %v", e.Step, Numbers())
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                int
	MissingDependencies []int
}

func (e *DependencyError) Error() string {
	names := make([]string, 0, len(e.MissingDependencies))
	for _, n := range e.MissingDependencies {
		names = append(names, Name(n))
	}
	return fmt.Sprintf("step %d (%s) missing dependencies: %v", e.Step, Name(e.Step), names)
}

// CompletionChecker reports whether a step's output is available.
type CompletionChecker interface {
	IsCompleted(step int) bool
}

// Lookup returns the definition of a step.
func Lookup(step int) (StepDefinition, error) {
	def, ok := stepRegistry[step]
	if !ok {
		return StepDefinition{}, &InvalidStepError{Step: step}
	}
	def.Dependencies = append([]int(nil), def.Dependencies...)
	return def, nil
}

// Numbers returns all step numbers in ascending order.
func Numbers() []int {
	numbers := make([]int, 0, len(stepRegistry))
	for n := range stepRegistry {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Last returns the final step number.
func Last() int {
	numbers := Numbers()
	return numbers[len(numbers)-1]
}

// Name returns a step's name, or "step-<n>" for an unknown step.
func Name(step int) string {
	if def, ok := stepRegistry[step]; ok {
		return def.Name
	}
	return fmt.Sprintf("step-%d", step)
}

// ValidateDependencies checks whether every dependency of a step has output.
// A *DependencyError is informational: later steps substitute defaults for
// missing inputs rather than refusing to run.
func ValidateDependencies(checker CompletionChecker, step int) error {
	def, err := Lookup(step)
	if err != nil {
		return err
	}

	var missing []int
	for _, dep := range def.Dependencies {
		if !checker.IsCompleted(dep) {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                step,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Window returns the steps from start to the last step, inclusive.
func Window(start int) ([]int, error) {
	if _, err := Lookup(start); err != nil {
		return nil, err
	}
	var window []int
	for _, n := range Numbers() {
		if n >= start {
			window = append(window, n)
		}
	}
	return window, nil
}
