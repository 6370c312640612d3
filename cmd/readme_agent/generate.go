package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/readme-generator/internal/config"
	"github.com/jonathan/readme-generator/internal/db"
	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/observability"
	"github.com/jonathan/readme-generator/internal/pipeline"
	"github.com/jonathan/readme-generator/internal/repository"
)

type generateOptions struct {
	step           int
	only           bool
	updateAnalysis bool
	jsonOutput     bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate README.md for a repository",
		Long: `Runs the README pipeline: project-purpose -> usage-instructions -> draft-readme -> final-readme.

Without --step the run resumes after the last step with saved output. A repository that already
has a non-empty README is skipped unless --force is given; the existing README is then evaluated
and kept as the base unless it is judged low quality.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments
override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().IntVarP(&opts.step, "step", "s", 0, "Start from this step (1-4); with --only run just this step")
	cmd.Flags().BoolVarP(&opts.only, "only", "o", false, "Run only the step given by --step, without finalizing")
	cmd.Flags().BoolVar(&opts.updateAnalysis, "update-analysis", false, "Re-analyze the repository instead of reusing a cached analysis")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run report as JSON")
	cmd.Flags().StringP("model", "m", config.DefaultModel, "Model identifier; the provider is inferred unless --provider is set")
	cmd.Flags().String("provider", "", "LLM provider: anthropic, openai or gemini")
	cmd.Flags().String("base-url", "", "Override the provider API base URL")
	cmd.Flags().String("api-key", "", "API key (optional, defaults to the provider's *_API_KEY env var)")
	cmd.Flags().String("language", config.DefaultLanguage, "Repository language: auto, java, python, javascript or go")
	cmd.Flags().Bool("keep-steps", false, "Keep step outputs after the README is written")
	cmd.Flags().Bool("save-intermediates", false, "Save contexts, prompts and raw responses under <output>/intermediates")
	cmd.Flags().Bool("force", false, "Run even when the repository already has a README")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for each model call")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize, "Largest file, in bytes, whose content is analyzed")
	cmd.Flags().String("db-url", "", "Run history database: postgres://..., sqlite://<path> or <path>.db (optional, defaults to DATABASE_URL env var)")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.only && opts.step == 0 {
		return pipeline.ErrOnlyModeWithoutStep
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	repoPath, err := requireRepo(cfg)
	if err != nil {
		return err
	}
	missingKey := missingKeyError(cfg)
	if missingKey != nil {
		// Without a key only the README pre-check can succeed.
		if found, _ := repository.HasPopulatedReadme(repoPath); !found || cfg.Force {
			return missingKey
		}
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outputDir := outputDirFor(cfg, repoPath)
	analyzer, err := repository.NewAnalyzer(repository.Options{
		Language:    cfg.Language,
		MaxFileSize: cfg.MaxFileSize,
		ExcludeDirs: excludeDirs(repoPath, outputDir),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var generator pipeline.TextGenerator = unavailableGenerator{err: missingKey}
	model := cfg.Model
	if missingKey == nil {
		client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close LLM client")
			}
		}()
		g := llm.NewGenerator(client, cfg.Timeout.Std())
		generator = g
		model = client.GetModel(g.Tier)
	}

	var recorder db.Recorder
	if cfg.DatabaseURL != "" {
		rec, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Run history unavailable, continuing without it")
		} else {
			recorder = rec
			defer rec.Close()
		}
	}

	progress := cmd.ErrOrStderr()
	report, runErr := pipeline.Run(ctx, pipeline.RunOptions{
		RepoPath:          repoPath,
		OutputDir:         outputDir,
		StartStep:         opts.step,
		OnlyMode:          opts.only,
		KeepSteps:         cfg.KeepSteps,
		SaveIntermediates: cfg.SaveIntermediates,
		Force:             cfg.Force,
		UpdateAnalysis:    opts.updateAnalysis,
		Model:             model,
		Analyzer:          analyzer,
		Generator:         generator,
		Recorder:          recorder,
		Logger:            logger,
		OnProgress: func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintln(progress, event.Message)
		},
	})

	if report != nil {
		if opts.jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
		} else {
			observability.NewPrinter(cmd.OutOrStdout()).PrintRunReport(report)
		}
	}
	return runErr
}

func missingKeyError(cfg *config.Config) error {
	if cfg.APIKey != "" {
		return nil
	}
	return fmt.Errorf("%s environment variable or --api-key flag is required", config.APIKeyEnv(cfg.ResolvedProvider()))
}

// unavailableGenerator stands in when no API key is configured and fails
// every call with err.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", g.err
}
