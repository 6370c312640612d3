package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/readme-generator/internal/pipeline/steps"
	"github.com/jonathan/readme-generator/internal/prompts"
	"github.com/jonathan/readme-generator/internal/rendering"
)

// maxFileChars bounds a single file block in a prompt.
const maxFileChars = 15000

// Section headers. A section is rendered only when it has content.
const (
	headerEntryPoints     = "## Entry Points"
	headerKeyComponents   = "## Key Components"
	headerKeyProjectFiles = "## Key Project Files"
	headerKeyFiles        = "## Key Files"
	headerConfigFiles     = "## Configuration Files"
	headerExampleConfigs  = "## Example Configuration Files"
	headerNestedScripts   = "## Deployment Scripts"
	headerRootScripts     = "## Root Directory Scripts"
	headerRunCommands     = "## Build and Run Commands"
	headerDependencies    = "## Dependencies"
	headerCodeAnalysis    = "# Code Analysis"
	headerRunSection      = "# Run Commands and Scripts"
	frameworkLinePrefix   = "Framework: "
	buildSystemLinePrefix = "Build System: "
)

type purposePrompt struct {
	Name              string
	Language          string
	Framework     string
	CodeAnalysis  string
	EntryPoints   string
	KeyComponents string
	KeyFiles      string
}

type usagePrompt struct {
	Name             string
	Language         string
	Framework        string
	BuildSystem      string
	EntryPoints      string
	KeyFiles         string
	ConfigFiles      string
	ExampleConfigs   string
	RunSection       string
}

type draftPrompt struct {
	ProjectPurpose    string
	UsageInstructions string
	Name              string
	Language          string
	Framework         string
	BuildSystem       string
	Dependencies      string
	KeyFiles          string
}

type optimizePrompt struct {
	Recommendation  string
	Evaluation      string
	OriginalReadme  string
	GeneratedReadme string
}

// RenderPrompt renders a step context into the prompt sent to the generator.
func RenderPrompt(sc StepContext) (string, error) {
	var data any
	switch c := sc.(type) {
	case *PurposeContext:
		data = purposePrompt{
			Name:          c.Name,
			Language:      c.Language,
			Framework:     line(frameworkLinePrefix, c.Framework),
			CodeAnalysis:  section(headerCodeAnalysis, strings.TrimSpace(c.FormattedAnalysis)),
			EntryPoints:   bulletSection(headerEntryPoints, c.EntryPoints),
			KeyComponents: fileSection(headerKeyComponents, c.Files),
			KeyFiles:      bulletSection(headerKeyProjectFiles, c.KeyProjectFiles),
		}
	case *UsageContext:
		run := joinSections(
			fileSection(headerNestedScripts, c.ShellScripts),
			fileSection(headerRootScripts, c.RootShellScripts),
			bulletSection(headerRunCommands, c.RunCommands),
		)
		data = usagePrompt{
			Name:             c.Name,
			Language:         c.Language,
			Framework:        line(frameworkLinePrefix, c.Framework),
			BuildSystem:      line(buildSystemLinePrefix, c.BuildSystem),
			EntryPoints:      bulletSection(headerEntryPoints, c.EntryPoints),
			KeyFiles:         fileSection(headerKeyFiles, c.Files),
			ConfigFiles:      bulletSection(headerConfigFiles, c.ConfigFiles),
			ExampleConfigs:   fileSection(headerExampleConfigs, c.ExampleConfigs),
			RunSection:       section(headerRunSection, run),
		}
	case *DraftContext:
		data = draftPrompt{
			ProjectPurpose:    c.ProjectPurpose,
			UsageInstructions: c.UsageInstructions,
			Name:              c.Name,
			Language:          c.Language,
			Framework:         line(frameworkLinePrefix, c.Framework),
			BuildSystem:       line(buildSystemLinePrefix, c.BuildSystem),
			Dependencies:      bulletSection(headerDependencies, c.Dependencies),
			KeyFiles:          fileSection(headerKeyFiles, c.Files),
		}
	case *OptimizeContext:
		data = optimizePrompt{
			Recommendation:  string(c.Recommendation),
			Evaluation:      c.Evaluation,
			OriginalReadme:  c.OriginalReadme,
			GeneratedReadme: c.GeneratedReadme,
		}
	default:
		return "", fmt.Errorf("unsupported step context %T", sc)
	}

	prompt, err := prompts.Render(prompts.StepsFile, steps.Name(sc.Step()), data)
	if err != nil {
		return "", err
	}
	return rendering.CollapseBlankLines(prompt), nil
}

func line(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

// section puts header above body, or returns "" when body is empty.
func section(header, body string) string {
	if body == "" {
		return ""
	}
	return header + "\n" + body
}

func joinSections(parts ...string) string {
	return strings.Join(nonEmpty(parts), "\n\n")
}

// bulletSection renders items as a bulleted list under header, or "" when empty.
func bulletSection(header string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// fileSection renders files as fenced blocks labeled with their paths, or "" when empty.
func fileSection(header string, files []FileContent) string {
	if len(files) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(header)
	for _, f := range files {
		fmt.Fprintf(&sb, "\n\n### %s\n```\n%s\n```", f.Path, strings.TrimRight(rendering.Truncate(f.Content, maxFileChars), "\n"))
	}
	return sb.String()
}
