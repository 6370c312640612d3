package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/readme-generator/internal/db"
	"github.com/jonathan/readme-generator/internal/observability"
	"github.com/jonathan/readme-generator/internal/output"
	"github.com/jonathan/readme-generator/internal/pipeline/steps"
)

func newStepsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List pipeline steps and their completion status",
		Long:  "Shows which steps have saved output for a repository. With --db-url the most recent recorded runs are listed as well.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			printer := observability.NewPrinter(cmd.OutOrStdout())

			if cfg.Repo != "" {
				repoPath, err := requireRepo(cfg)
				if err != nil {
					return err
				}
				store := output.NewStore(outputDirFor(cfg, repoPath))
				rows := make([]observability.StepRow, 0, len(steps.Numbers()))
				for _, n := range steps.Numbers() {
					def, _ := steps.Lookup(n)
					rows = append(rows, observability.StepRow{
						Number:    n,
						Name:      def.Name,
						Category:  def.Category,
						Completed: store.IsCompleted(n),
					})
				}
				printer.PrintSteps(rows)
			}

			if cfg.DatabaseURL == "" {
				if cfg.Repo == "" {
					return fmt.Errorf("--repo or --db-url is required")
				}
				return nil
			}
			rec, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer rec.Close()

			runs, err := rec.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			printer.PrintRuns(runs)
			return nil
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().String("db-url", "", "Run history database (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent runs to list")
	return cmd
}
