package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/readme-generator/internal/evaluation"
	"github.com/jonathan/readme-generator/internal/types"
)

// stubGenerator records prompts and answers through respond.
type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	respond func(kind int, prompt string) (string, error)
}

// promptEvaluation identifies the README quality prompt in stubGenerator.respond.
const promptEvaluation = 0

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	kind := promptKind(prompt)
	if g.respond != nil {
		return g.respond(kind, prompt)
	}
	return fmt.Sprintf("OUTPUT_%d", kind), nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *stubGenerator) promptFor(kind int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.prompts {
		if promptKind(p) == kind {
			return p
		}
	}
	return ""
}

// promptKind maps a rendered prompt to its step number, or promptEvaluation.
func promptKind(prompt string) int {
	switch {
	case strings.Contains(prompt, "# README Evaluation Task"):
		return promptEvaluation
	case strings.Contains(prompt, "# README Optimization Task"):
		return 4
	case strings.Contains(prompt, "# README Generation Task"):
		return 3
	case strings.Contains(prompt, "practical usage instructions"):
		return 2
	default:
		return 1
	}
}

type stubAnalyzer struct {
	repo  *types.RepositoryContext
	err   error
	calls int
}

func (a *stubAnalyzer) Analyze(_ context.Context, repoPath string, _ bool) (*types.RepositoryContext, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if a.repo.Path == "" {
		a.repo.Path = repoPath
	}
	return a.repo, nil
}

type stubClassifier struct {
	assessment evaluation.Assessment
	calls      int
	original   string
	generated  string
}

func (c *stubClassifier) Classify(_ context.Context, original, generated string) evaluation.Assessment {
	c.calls++
	c.original = original
	c.generated = generated
	return c.assessment
}

func demoRepo() *types.RepositoryContext {
	return &types.RepositoryContext{
		Name:            "demo",
		PrimaryLanguage: "Python",
		TotalFiles:      1,
		Files:           []types.FileInfo{{Path: "main.py", Language: "Python", IsEntryPoint: true, Score: 100}},
		EntryPoints:     []string{"main.py"},
		FileContents:    map[string]string{"main.py": "print('hello')\n"},
		BuildSystem:     types.BuildSystem{Type: types.BuildSystemUnknown},
	}
}
