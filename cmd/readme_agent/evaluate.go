package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/readme-generator/internal/config"
	"github.com/jonathan/readme-generator/internal/evaluation"
	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/observability"
)

func newEvaluateCmd() *cobra.Command {
	var originalPath, generatedPath string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Decide whether an existing README should be replaced",
		Long:  "Runs the README quality classifier on an original and a generated README and prints OVERWRITE or RESPECT_ORIGINAL. Missing or trivial originals are decided without a model call.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			original, err := readOptional(originalPath)
			if err != nil {
				return err
			}
			generated, err := os.ReadFile(generatedPath)
			if err != nil {
				return fmt.Errorf("failed to read generated README: %w", err)
			}

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			var generator evaluation.TextGenerator
			if !evaluation.IsTrivial(original) {
				if cfg.APIKey == "" {
					return fmt.Errorf("%s environment variable or --api-key flag is required", config.APIKeyEnv(cfg.ResolvedProvider()))
				}
				client, err := llm.NewClient(cmd.Context(), cfg.LLMConfig(), cfg.APIKey)
				if err != nil {
					return fmt.Errorf("failed to create LLM client: %w", err)
				}
				defer client.Close() //nolint:errcheck // best-effort cleanup
				gen := llm.NewGenerator(client, cfg.Timeout.Std())
				gen.Tier = llm.TierLite
				generator = gen
			}

			assessment := evaluation.NewClassifier(generator, logger).Classify(cmd.Context(), original, string(generated))
			observability.NewPrinter(cmd.OutOrStdout()).PrintAssessment(assessment)
			return nil
		},
	}

	cmd.Flags().StringVar(&originalPath, "original", "", "Path to the existing README (a missing file counts as no README)")
	cmd.Flags().StringVar(&generatedPath, "generated", "", "Path to the generated README (required)")
	cmd.Flags().StringP("model", "m", config.DefaultModel, "Model identifier")
	cmd.Flags().String("provider", "", "LLM provider: anthropic, openai or gemini")
	cmd.Flags().String("api-key", "", "API key (optional, defaults to the provider's *_API_KEY env var)")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for the model call")
	if err := cmd.MarkFlagRequired("generated"); err != nil {
		panic(fmt.Sprintf("failed to mark generated flag as required: %v", err))
	}
	return cmd
}

// readOptional returns the file content, or "" when path is empty or missing.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read original README: %w", err)
	}
	return string(data), nil
}
