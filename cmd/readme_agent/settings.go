package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/readme-generator/internal/config"
	"github.com/jonathan/readme-generator/internal/observability"
	"github.com/jonathan/readme-generator/internal/pipeline"
)

// loadSettings resolves the configuration for cmd: defaults, then --config,
// then the environment, then every flag the user set explicitly.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	cfg.ResolveAPIKey(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags onto cfg. Flags a command does not
// define are ignored.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	stringFlags := map[string]*string{
		"repo":       &cfg.Repo,
		"output-dir": &cfg.OutputDir,
		"model":      &cfg.Model,
		"provider":   &cfg.Provider,
		"api-key":    &cfg.APIKey,
		"base-url":   &cfg.BaseURL,
		"language":   &cfg.Language,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
		"db-url":     &cfg.DatabaseURL,
	}
	for name, dst := range stringFlags {
		if !changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	boolFlags := map[string]*bool{
		"keep-steps":         &cfg.KeepSteps,
		"save-intermediates": &cfg.SaveIntermediates,
		"force":              &cfg.Force,
	}
	for name, dst := range boolFlags {
		if !changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = config.Duration(v)
	}
	if changed("max-file-size") {
		v, err := flags.GetInt64("max-file-size")
		if err != nil {
			return err
		}
		cfg.MaxFileSize = v
	}
	return nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	return observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}

// requireRepo checks that the configured repository is a directory.
func requireRepo(cfg *config.Config) (string, error) {
	if cfg.Repo == "" {
		return "", fmt.Errorf("--repo is required (via flag or config)")
	}
	abs, err := filepath.Abs(cfg.Repo)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository not found: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository path %s is not a directory", abs)
	}
	return abs, nil
}

// outputDirFor returns the step output directory for repo.
func outputDirFor(cfg *config.Config, repo string) string {
	if cfg.OutputDir != "" {
		if abs, err := filepath.Abs(cfg.OutputDir); err == nil {
			return abs
		}
		return cfg.OutputDir
	}
	return filepath.Join(repo, pipeline.DefaultOutputDirName)
}

// excludeDirs keeps the output directory out of the analysis when it lives
// inside the repository.
func excludeDirs(repo, outputDir string) []string {
	rel, err := filepath.Rel(repo, outputDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}

// addRepoFlags registers the flags every repository command shares.
func addRepoFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("repo", "r", "", "Path to the repository")
	cmd.Flags().String("output-dir", "", "Directory for step outputs (default <repo>/output)")
}
