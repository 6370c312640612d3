package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/readme-generator/internal/evaluation"
	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/pipeline/steps"
	"github.com/jonathan/readme-generator/internal/types"
)

// Context limits per step.
const (
	PurposeFileLimit    = 35
	DraftFileLimit      = 10
	DraftDependencyCap  = 20
	UsageConfigListCap  = 30
	controllerFileLimit = 10
)

// Defaults substituted when a prior step has no output.
const (
	DefaultProjectPurpose    = "No project purpose identified."
	DefaultUsageInstructions = "No usage instructions identified."
	DefaultGeneratedReadme   = "No generated README available."
)

// controllerMarkers identify files likely to expose API endpoints.
var controllerMarkers = []string{"controller", "handler", "router", "routes"}

// StepContext is the input of one step. The concrete type is one of
// *PurposeContext, *UsageContext, *DraftContext or *OptimizeContext; empty
// fields mean the corresponding prompt section is omitted.
type StepContext interface {
	Step() int
	isStepContext()
}

// FileContent is a file rendered into a prompt.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PurposeContext feeds the project-purpose step.
type PurposeContext struct {
	Name              string        `json:"name"`
	Language          string        `json:"language"`
	Framework         string        `json:"framework,omitempty"`
	FormattedAnalysis string        `json:"formatted_analysis,omitempty"`
	EntryPoints       []string      `json:"entry_points,omitempty"`
	KeyProjectFiles   []string      `json:"key_project_files,omitempty"`
	Files             []FileContent `json:"files,omitempty"`
}

// UsageContext feeds the usage-instructions step. Files holds the build
// file, entry points and controller-like files in that order.
type UsageContext struct {
	Name             string        `json:"name"`
	Language         string        `json:"language"`
	Framework        string        `json:"framework,omitempty"`
	BuildSystem      string        `json:"build_system,omitempty"`
	EntryPoints      []string      `json:"entry_points,omitempty"`
	Files            []FileContent `json:"files,omitempty"`
	ConfigFiles      []string      `json:"config_files,omitempty"`
	ExampleConfigs   []FileContent `json:"example_configs,omitempty"`
	ShellScripts     []FileContent `json:"shell_scripts,omitempty"`
	RootShellScripts []FileContent `json:"root_shell_scripts,omitempty"`
	RunCommands      []string      `json:"run_commands,omitempty"`
}

// DraftContext feeds the draft-readme step.
type DraftContext struct {
	ProjectPurpose    string        `json:"project_purpose"`
	UsageInstructions string        `json:"usage_instructions"`
	Name              string        `json:"name"`
	Language          string        `json:"language"`
	Framework         string        `json:"framework,omitempty"`
	BuildSystem       string        `json:"build_system,omitempty"`
	Dependencies      []string      `json:"dependencies,omitempty"`
	Files             []FileContent `json:"files,omitempty"`
}

// OptimizeContext feeds the final-readme step.
type OptimizeContext struct {
	Recommendation  evaluation.Recommendation `json:"recommendation"`
	Evaluation      string                    `json:"evaluation"`
	OriginalReadme  string                    `json:"original_readme"`
	GeneratedReadme string                    `json:"generated_readme"`
}

func (*PurposeContext) Step() int  { return steps.StepPurpose }
func (*UsageContext) Step() int    { return steps.StepUsage }
func (*DraftContext) Step() int    { return steps.StepDraft }
func (*OptimizeContext) Step() int { return steps.StepOptimize }

func (*PurposeContext) isStepContext()  {}
func (*UsageContext) isStepContext()    {}
func (*DraftContext) isStepContext()    {}
func (*OptimizeContext) isStepContext() {}

// Classifier decides whether an original README should be replaced.
type Classifier interface {
	Classify(ctx context.Context, original, generated string) evaluation.Assessment
}

// Builder assembles step contexts from repository facts and prior outputs.
type Builder struct {
	classifier Classifier
	logger     zerolog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(classifier Classifier, logger zerolog.Logger) *Builder {
	return &Builder{classifier: classifier, logger: logger}
}

// Build returns the context for step. repo may be nil and prior may omit any
// step; missing facts become empty fields and missing prior outputs become
// fixed defaults.
func (b *Builder) Build(ctx context.Context, step int, repo *types.RepositoryContext, prior map[int]string) (StepContext, error) {
	if _, err := steps.Lookup(step); err != nil {
		return nil, err
	}
	if repo == nil {
		repo = &types.RepositoryContext{}
	}

	switch step {
	case steps.StepPurpose:
		return buildPurpose(repo), nil
	case steps.StepUsage:
		return buildUsage(repo), nil
	case steps.StepDraft:
		return buildDraft(repo, prior), nil
	default:
		return b.buildOptimize(ctx, repo, prior), nil
	}
}

func buildPurpose(repo *types.RepositoryContext) *PurposeContext {
	pc := &PurposeContext{
		Name:              repo.Name,
		Language:          repo.PrimaryLanguage,
		Framework:         repo.FrameworkName,
		FormattedAnalysis: strings.TrimSpace(repo.FormattedAnalysis),
		EntryPoints:       nonEmpty(repo.EntryPoints),
	}
	for _, p := range repo.KeyProjectFiles {
		if repo.Content(p) != "" {
			pc.KeyProjectFiles = append(pc.KeyProjectFiles, p)
		}
	}
	paths := append(append([]string{}, repo.EntryPoints...), repo.KeyProjectFiles...)
	pc.Files = orderedFiles(repo, append(paths, repo.TopFiles(PurposeFileLimit)...))
	return pc
}

func buildUsage(repo *types.RepositoryContext) *UsageContext {
	uc := &UsageContext{
		Name:        repo.Name,
		Language:    repo.PrimaryLanguage,
		Framework:   repo.FrameworkName,
		EntryPoints: nonEmpty(repo.EntryPoints),
	}
	if repo.BuildSystem.Type != "" && repo.BuildSystem.Type != types.BuildSystemUnknown {
		uc.BuildSystem = repo.BuildSystem.Type
	}

	// The build file and entry points are always included.
	var paths []string
	if build := repo.PrimaryBuildFile(); build != "" {
		paths = append(paths, build)
	}
	paths = append(paths, repo.EntryPoints...)
	controllers := 0
	for _, f := range repo.Files {
		if controllers >= controllerFileLimit {
			break
		}
		if containsMarker(f.Path, controllerMarkers) && repo.Content(f.Path) != "" {
			paths = append(paths, f.Path)
			controllers++
		}
	}
	uc.Files = orderedFiles(repo, paths)

	configs := repo.ConfigFiles
	if len(configs) > UsageConfigListCap {
		configs = configs[:UsageConfigListCap]
	}
	uc.ConfigFiles = nonEmpty(configs)
	uc.ExampleConfigs = contents(repo, repo.ExampleConfigFiles)
	uc.ShellScripts = contents(repo, repo.ShellScripts)
	uc.RootShellScripts = contents(repo, repo.RootShellScripts)
	uc.RunCommands = runCommands(repo)
	return uc
}

func buildDraft(repo *types.RepositoryContext, prior map[int]string) *DraftContext {
	dc := &DraftContext{
		ProjectPurpose:    priorOrDefault(prior, steps.StepPurpose, DefaultProjectPurpose),
		UsageInstructions: priorOrDefault(prior, steps.StepUsage, DefaultUsageInstructions),
		Name:              repo.Name,
		Language:          repo.PrimaryLanguage,
		Framework:         repo.FrameworkName,
	}
	if repo.BuildSystem.Type != "" && repo.BuildSystem.Type != types.BuildSystemUnknown {
		dc.BuildSystem = repo.BuildSystem.Type
	}
	deps := repo.Dependencies
	if len(deps) > DraftDependencyCap {
		deps = deps[:DraftDependencyCap]
	}
	dc.Dependencies = nonEmpty(deps)
	dc.Files = orderedFiles(repo, repo.TopFiles(DraftFileLimit))
	return dc
}

func (b *Builder) buildOptimize(ctx context.Context, repo *types.RepositoryContext, prior map[int]string) *OptimizeContext {
	generated := DefaultGeneratedReadme
	if draft := strings.TrimSpace(prior[steps.StepDraft]); draft != "" {
		generated = llm.StripCodeFence(draft)
	}

	original := evaluation.NoOriginalReadme
	if content, ok := repo.OriginalReadme(); ok && strings.TrimSpace(content) != "" {
		original = content
	}

	assessment := b.classifier.Classify(ctx, original, generated)
	b.logger.Info().
		Bool("low_quality", assessment.LowQuality).
		Bool("evaluated", assessment.Evaluated).
		Str("recommendation", string(assessment.Recommendation())).
		Msg("README quality assessed")

	return &OptimizeContext{
		Recommendation:  assessment.Recommendation(),
		Evaluation:      assessment.Rationale,
		OriginalReadme:  original,
		GeneratedReadme: generated,
	}
}

// orderedFiles returns the files in paths that have content: the primary
// build file first, then entry points, then the rest in the given order.
func orderedFiles(repo *types.RepositoryContext, paths []string) []FileContent {
	seen := make(map[string]bool)
	var out []FileContent
	add := func(p string) {
		if seen[p] {
			return
		}
		content := repo.Content(p)
		if strings.TrimSpace(content) == "" {
			return
		}
		seen[p] = true
		out = append(out, FileContent{Path: p, Content: content})
	}

	build := repo.PrimaryBuildFile()
	for _, p := range paths {
		if p == build {
			add(p)
		}
	}
	entry := make(map[string]bool, len(repo.EntryPoints))
	for _, p := range repo.EntryPoints {
		entry[p] = true
	}
	for _, p := range paths {
		if entry[p] {
			add(p)
		}
	}
	for _, p := range paths {
		add(p)
	}
	return out
}

func contents(repo *types.RepositoryContext, paths []string) []FileContent {
	var out []FileContent
	for _, p := range paths {
		if content := repo.Content(p); strings.TrimSpace(content) != "" {
			out = append(out, FileContent{Path: p, Content: content})
		}
	}
	return out
}

// runCommands lists detected commands as "name: command", or the standard
// commands of the build system when none were detected.
func runCommands(repo *types.RepositoryContext) []string {
	commands := repo.BuildSystem.Commands
	if len(commands) == 0 {
		return fallbackCommands(repo)
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		for _, cmd := range commands[name] {
			if strings.TrimSpace(cmd) != "" {
				out = append(out, name+": "+cmd)
			}
		}
	}
	return out
}

func fallbackCommands(repo *types.RepositoryContext) []string {
	bs := repo.BuildSystem
	switch bs.Type {
	case types.BuildSystemGradle:
		gradle := "gradle"
		if bs.HasWrapper {
			gradle = "./gradlew"
		}
		out := []string{"build: " + gradle + " build"}
		if strings.Contains(repo.Content(repo.PrimaryBuildFile()), "mainClass") {
			out = append(out, "run: "+gradle+" run")
		}
		return out
	case types.BuildSystemMaven:
		return []string{"build: mvn package"}
	case types.BuildSystemNPM:
		return []string{"install: npm install", "run: npm start"}
	case types.BuildSystemPython:
		return []string{"install: pip install -r requirements.txt"}
	case types.BuildSystemGo:
		return []string{"build: go build ./..."}
	case types.BuildSystemMake:
		return []string{"build: make"}
	}
	return nil
}

func priorOrDefault(prior map[int]string, step int, fallback string) string {
	if text := prior[step]; strings.TrimSpace(text) != "" {
		return text
	}
	return fallback
}

func nonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func containsMarker(p string, markers []string) bool {
	lower := strings.ToLower(p)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
