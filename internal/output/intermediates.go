package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/readme-generator/internal/types"
)

// IntermediatesDir is the subdirectory of the output directory holding debug copies.
const IntermediatesDir = "intermediates"

// Intermediates saves debug copies of everything a run produces. A nil
// *Intermediates is valid and saves nothing.
type Intermediates struct {
	dir string
}

// NewIntermediates returns a writer rooted at <outputDir>/intermediates, or nil when disabled.
func NewIntermediates(outputDir string, enabled bool) *Intermediates {
	if !enabled {
		return nil
	}
	return &Intermediates{dir: filepath.Join(outputDir, IntermediatesDir)}
}

// Dir returns the intermediates directory, or "" when disabled.
func (i *Intermediates) Dir() string {
	if i == nil {
		return ""
	}
	return i.dir
}

// SaveRepositoryContext writes the analyzed repository without file contents.
func (i *Intermediates) SaveRepositoryContext(repo *types.RepositoryContext) error {
	if i == nil {
		return nil
	}
	return WriteJSON(filepath.Join(i.dir, "repository_context.json"), repo.WithoutContents())
}

// SaveStepContext writes the typed context built for a step.
func (i *Intermediates) SaveStepContext(step int, name string, stepContext any) error {
	if i == nil {
		return nil
	}
	return WriteJSON(i.stepPath(step, name, "context.json"), stepContext)
}

// SavePrompt writes the rendered prompt for a step.
func (i *Intermediates) SavePrompt(step int, name, prompt string) error {
	if i == nil {
		return nil
	}
	return WriteAtomic(i.stepPath(step, name, "prompt.log"), []byte(prompt))
}

// SaveStepOutput writes the raw model response for a step.
func (i *Intermediates) SaveStepOutput(step int, name, content string) error {
	if i == nil {
		return nil
	}
	return WriteAtomic(i.stepPath(step, name, "output.md"), []byte(content))
}

// SaveReasoning writes the final step's reasoning.
func (i *Intermediates) SaveReasoning(content string) error {
	if i == nil {
		return nil
	}
	return WriteAtomic(filepath.Join(i.dir, ReasoningFile), []byte(content))
}

// SaveFinalReadme writes a copy of the finalized README as <repo>_ai.README.md.
func (i *Intermediates) SaveFinalReadme(repoName, content string) error {
	if i == nil {
		return nil
	}
	name := sanitize(repoName)
	if name == "" {
		name = "repository"
	}
	return WriteAtomic(filepath.Join(i.dir, name+"_ai.README.md"), []byte(content))
}

func (i *Intermediates) stepPath(step int, name, suffix string) string {
	return filepath.Join(i.dir, fmt.Sprintf("step_%02d_%s_%s", step, sanitize(name), suffix))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
}
