package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/readme-generator/internal/config"
	"github.com/jonathan/readme-generator/internal/output"
	"github.com/jonathan/readme-generator/internal/pipeline"
	"github.com/jonathan/readme-generator/internal/types"
)

func TestApplyFlags_OnlyChangedFlags(t *testing.T) {
	cmd := newGenerateCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--repo", "/src/app",
		"--model", "gpt-4o",
		"--keep-steps",
		"--timeout", "45s",
		"--max-file-size", "4096",
	}))

	cfg := config.Default()
	cfg.Language = "java"
	require.NoError(t, applyFlags(cmd.Flags(), cfg))

	assert.Equal(t, "/src/app", cfg.Repo)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.True(t, cfg.KeepSteps)
	assert.False(t, cfg.Force)
	assert.Equal(t, 45*time.Second, cfg.Timeout.Std())
	assert.EqualValues(t, 4096, cfg.MaxFileSize)
	assert.Equal(t, "java", cfg.Language, "unset flags keep config values")
}

func TestApplyFlags_IgnoresUndefinedFlags(t *testing.T) {
	cmd := newCleanCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--repo", "x"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(cmd.Flags(), cfg))
	assert.Equal(t, "x", cfg.Repo)
	assert.Equal(t, config.DefaultModel, cfg.Model)
}

func TestExcludeDirs(t *testing.T) {
	repo := filepath.FromSlash("/work/repo")
	assert.Equal(t, []string{"output"}, excludeDirs(repo, filepath.Join(repo, "output")))
	assert.Equal(t, []string{"build/readme"}, excludeDirs(repo, filepath.Join(repo, "build", "readme")))
	assert.Nil(t, excludeDirs(repo, repo))
	assert.Nil(t, excludeDirs(repo, filepath.FromSlash("/tmp/out")))
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)

	stdout, _, err := execute(t, "analyze", "--repo", repo, "--json")
	require.NoError(t, err)

	var ctx types.RepositoryContext
	require.NoError(t, json.Unmarshal([]byte(stdout), &ctx))
	assert.Equal(t, "Go", ctx.PrimaryLanguage)
	assert.Equal(t, types.BuildSystemGo, ctx.BuildSystem.Type)
	assert.Contains(t, ctx.EntryPoints, "cmd/tool/main.go")
	assert.Empty(t, ctx.FileContents, "contents omitted without --contents")
	for _, f := range ctx.Files {
		assert.NotContains(t, f.Path, "output/", "output directory is excluded")
	}
}

func TestAnalyzeCommand_Summary(t *testing.T) {
	clearProviderEnv(t)
	stdout, _, err := execute(t, "analyze", "-r", goRepo(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "REPOSITORY ANALYSIS")
	assert.Contains(t, stdout, "cmd/tool/main.go")
}

func TestAnalyzeCommand_MissingRepo(t *testing.T) {
	clearProviderEnv(t)
	_, _, err := execute(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--repo is required")

	_, _, err = execute(t, "analyze", "--repo", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository not found")
}

func TestGenerateCommand_OnlyWithoutStep(t *testing.T) {
	clearProviderEnv(t)
	_, _, err := execute(t, "generate", "--repo", goRepo(t), "--only")
	assert.ErrorIs(t, err, pipeline.ErrOnlyModeWithoutStep)
}

func TestGenerateCommand_MissingAPIKey(t *testing.T) {
	clearProviderEnv(t)

	_, _, err := execute(t, "generate", "--repo", goRepo(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY environment variable or --api-key flag is required")

	_, _, err = execute(t, "generate", "--repo", goRepo(t), "--model", "gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestGenerateCommand_InvalidConfig(t *testing.T) {
	clearProviderEnv(t)
	_, _, err := execute(t, "generate", "--repo", goRepo(t), "--language", "cobol", "--api-key", "k")
	require.Error(t, err)

	var ve *config.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGenerateCommand_SkipsExistingReadme(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("# Tool\n"), 0644))

	stdout, _, err := execute(t, "generate", "--repo", repo, "--api-key", "test-key", "--json")
	require.NoError(t, err)

	var report pipeline.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, pipeline.StateSkipped, report.State)
	assert.Equal(t, "# Tool\n", readFile(t, filepath.Join(repo, "README.md")))
}

func TestGenerateCommand_SkipsExistingReadmeWithoutAPIKey(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("# Tool\n"), 0644))

	stdout, _, err := execute(t, "generate", "--repo", repo, "--json")
	require.NoError(t, err)

	var report pipeline.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, pipeline.StateSkipped, report.State)

	_, _, err = execute(t, "generate", "--repo", repo, "--force")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY environment variable or --api-key flag is required")
}

func TestUnavailableGenerator(t *testing.T) {
	boom := errors.New("no key")
	_, err := unavailableGenerator{err: boom}.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, boom)
}

func TestGenerateCommand_AlreadyCompleted(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)
	for step := 1; step <= 4; step++ {
		path := filepath.Join(repo, "output", output.StepFileName(step))
		require.NoError(t, os.WriteFile(path, []byte("done"), 0644))
	}

	stdout, _, err := execute(t, "generate", "-r", repo, "--api-key", "test-key")
	require.NoError(t, err)
	assert.Contains(t, stdout, "COMPLETED")
	assert.NoFileExists(t, filepath.Join(repo, "README.md"))
}

func TestGenerateCommand_ConfigFile(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("# Tool\n"), 0644))
	cfgPath := filepath.Join(t.TempDir(), "readme_agent.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("repo: "+repo+"\napi_key: from-file\nlog_format: json\n"), 0644))

	stdout, _, err := execute(t, "generate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SKIPPED")
}

func TestStepsCommand(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)

	stdout, _, err := execute(t, "steps", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ 1  project-purpose")
	assert.Contains(t, stdout, "○ 2  usage-instructions")
	assert.Contains(t, stdout, "○ 4  final-readme")
}

func TestStepsCommand_RunHistory(t *testing.T) {
	clearProviderEnv(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, "steps", "--db-url", "sqlite://"+dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "NO RECORDED RUNS")
}

func TestStepsCommand_NeedsRepoOrDatabase(t *testing.T) {
	clearProviderEnv(t)
	_, _, err := execute(t, "steps")
	assert.Error(t, err)
}

func TestCleanCommand(t *testing.T) {
	clearProviderEnv(t)
	repo := goRepo(t)

	stdout, _, err := execute(t, "clean", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed")
	assert.NoFileExists(t, filepath.Join(repo, "output", "step_01_output.md"))

	stdout, _, err = execute(t, "clean", "--repo", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "nothing to clean")
}

func TestEvaluateCommand_TrivialOriginal(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	generated := filepath.Join(dir, "generated.md")
	require.NoError(t, os.WriteFile(generated, []byte("# Tool\n\nA complete README."), 0644))

	stdout, _, err := execute(t, "evaluate", "--original", filepath.Join(dir, "missing.md"), "--generated", generated)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OVERWRITE")
	assert.Contains(t, stdout, "no model call")
}

func TestEvaluateCommand_RequiresKeyForRealOriginal(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	original := filepath.Join(dir, "README.md")
	generated := filepath.Join(dir, "generated.md")
	require.NoError(t, os.WriteFile(original, []byte("# Tool\n\nThis tool converts invoices into ledger entries."), 0644))
	require.NoError(t, os.WriteFile(generated, []byte("# Tool"), 0644))

	_, _, err := execute(t, "evaluate", "--original", original, "--generated", generated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestEvaluateCommand_GeneratedRequired(t *testing.T) {
	_, _, err := execute(t, "evaluate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "generated" not set`)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
