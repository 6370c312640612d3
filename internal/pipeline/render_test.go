package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/readme-generator/internal/evaluation"
)

func TestRenderPrompt_OmitsEmptySections(t *testing.T) {
	prompt, err := RenderPrompt(&PurposeContext{Name: "demo", Language: "Go"})
	require.NoError(t, err)

	assert.NotContains(t, prompt, headerEntryPoints)
	assert.NotContains(t, prompt, headerKeyComponents)
	assert.NotContains(t, prompt, headerKeyProjectFiles)
	assert.NotContains(t, prompt, frameworkLinePrefix)
	assert.NotContains(t, prompt, headerCodeAnalysis)
	assert.NotContains(t, prompt, "\n\n\n")
	assert.NotContains(t, prompt, "{{")
	assert.Contains(t, prompt, "Repository Name: demo")

	prompt, err = RenderPrompt(&UsageContext{Name: "demo", Language: "Go"})
	require.NoError(t, err)

	assert.NotContains(t, prompt, headerRunSection)
	assert.NotContains(t, prompt, headerRootScripts)
	assert.NotContains(t, prompt, headerRunCommands)
	assert.NotContains(t, prompt, "\n\n\n")
	assert.Contains(t, prompt, "## Script Analysis")
}

func TestRenderPrompt_CodeAnalysis(t *testing.T) {
	prompt, err := RenderPrompt(&PurposeContext{Name: "demo", Language: "Go", FormattedAnalysis: "12 files, 3 packages"})
	require.NoError(t, err)

	assert.Contains(t, prompt, headerCodeAnalysis+"\n12 files, 3 packages")
}

func TestRenderPrompt_RunSectionWithCommandsOnly(t *testing.T) {
	prompt, err := RenderPrompt(&UsageContext{Name: "demo", Language: "Go", RunCommands: []string{"run: go run ./cmd/demo"}})
	require.NoError(t, err)

	assert.Contains(t, prompt, headerRunSection+"\n"+headerRunCommands+"\n- run: go run ./cmd/demo")
	assert.NotContains(t, prompt, headerRootScripts)
	assert.NotContains(t, prompt, headerNestedScripts)
}

func TestRenderPrompt_UsageSections(t *testing.T) {
	uc := &UsageContext{
		Name:             "demo",
		Language:         "Java",
		Framework:        "Spring Boot",
		BuildSystem:      "gradle",
		EntryPoints:      []string{"src/Main.java"},
		Files:            []FileContent{{Path: "build.gradle", Content: "plugins {}\n"}, {Path: "src/Main.java", Content: "class Main {}"}},
		ConfigFiles:      []string{"application.yml"},
		RootShellScripts: []FileContent{{Path: "start.sh", Content: "./gradlew bootRun"}},
		RunCommands:      []string{"run: ./gradlew bootRun"},
	}

	prompt, err := RenderPrompt(uc)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Framework: Spring Boot")
	assert.Contains(t, prompt, "Build System: gradle")
	assert.Contains(t, prompt, headerEntryPoints+"\n- src/Main.java")
	assert.Contains(t, prompt, "### build.gradle\n```\nplugins {}\n```")
	assert.Less(t, strings.Index(prompt, "### build.gradle"), strings.Index(prompt, "### src/Main.java"))
	assert.Contains(t, prompt, headerRunSection+"\n"+headerRootScripts+"\n\n### start.sh")
	assert.Contains(t, prompt, headerRunCommands+"\n- run: ./gradlew bootRun")
	assert.NotContains(t, prompt, headerExampleConfigs)
	assert.NotContains(t, prompt, headerNestedScripts)
	assert.NotContains(t, prompt, "\n\n\n")
}

func TestRenderPrompt_Draft(t *testing.T) {
	prompt, err := RenderPrompt(&DraftContext{
		ProjectPurpose:    "It converts things.",
		UsageInstructions: "Run it.",
		Name:              "demo",
		Language:          "Go",
		Dependencies:      []string{"github.com/spf13/cobra@v1.8.0"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "### Repository Purpose\nIt converts things.")
	assert.Contains(t, prompt, "### Getting Started\nRun it.")
	assert.Contains(t, prompt, headerDependencies+"\n- github.com/spf13/cobra@v1.8.0")
	assert.NotContains(t, prompt, headerKeyFiles)
}

func TestRenderPrompt_Optimize(t *testing.T) {
	prompt, err := RenderPrompt(&OptimizeContext{
		Recommendation:  evaluation.RecommendOverwrite,
		Evaluation:      "README is empty or minimal",
		OriginalReadme:  evaluation.NoOriginalReadme,
		GeneratedReadme: "# Demo",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Recommendation: OVERWRITE")
	assert.Contains(t, prompt, "```markdown\n"+evaluation.NoOriginalReadme+"\n```")
	assert.Contains(t, prompt, "```markdown\n# Demo\n```")
}

func TestRenderPrompt_TruncatesLargeFiles(t *testing.T) {
	big := strings.Repeat("a", maxFileChars+500)
	prompt, err := RenderPrompt(&PurposeContext{Name: "demo", Files: []FileContent{{Path: "big.txt", Content: big}}})
	require.NoError(t, err)
	assert.NotContains(t, prompt, big)
	assert.Contains(t, prompt, "...\n```")
}

func TestBulletSection(t *testing.T) {
	assert.Equal(t, "", bulletSection("## X", nil))
	assert.Equal(t, "## X\n- a\n- b", bulletSection("## X", []string{"a", "b"}))
}

func TestFileSection(t *testing.T) {
	assert.Equal(t, "", fileSection("## Files", nil))
	got := fileSection("## Files", []FileContent{{Path: "a.go", Content: "package a\n\n"}})
	assert.Equal(t, "## Files\n\n### a.go\n```\npackage a\n```", got)
}
