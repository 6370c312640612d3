package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/readme-generator/internal/config"
	"github.com/jonathan/readme-generator/internal/observability"
	"github.com/jonathan/readme-generator/internal/repository"
)

func newAnalyzeCmd() *cobra.Command {
	var jsonOutput, withContents bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a repository without calling a model",
		Long:  "Walks the repository, scores its files, detects the build system and prints the facts the README prompts are built from.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			repoPath, err := requireRepo(cfg)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			analyzer, err := repository.NewAnalyzer(repository.Options{
				Language:    cfg.Language,
				MaxFileSize: cfg.MaxFileSize,
				ExcludeDirs: excludeDirs(repoPath, outputDirFor(cfg, repoPath)),
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			repo, err := analyzer.Analyze(cmd.Context(), repoPath, true)
			if err != nil {
				return err
			}

			if !jsonOutput {
				observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(repo)
				return nil
			}
			if !withContents {
				repo = repo.WithoutContents()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(repo); err != nil {
				return fmt.Errorf("failed to encode analysis: %w", err)
			}
			return nil
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().String("language", config.DefaultLanguage, "Repository language: auto, java, python, javascript or go")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize, "Largest file, in bytes, whose content is analyzed")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the repository context as JSON")
	cmd.Flags().BoolVar(&withContents, "contents", false, "Include file contents in JSON output")
	return cmd
}
