// Package main implements the readme_agent CLI, which writes a README for a
// repository by analyzing its files and prompting an LLM in four steps.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readme_agent",
		Short: "AI README generator",
		Long: `readme_agent analyzes a repository and generates its README.md in four steps:
project purpose -> usage instructions -> draft README -> final README.

Step outputs are kept in <repo>/output until the README is finalized, so an
interrupted run resumes where it stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "console", "Log format: console or json")

	root.AddCommand(
		newGenerateCmd(),
		newAnalyzeCmd(),
		newEvaluateCmd(),
		newStepsCmd(),
		newCleanCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
