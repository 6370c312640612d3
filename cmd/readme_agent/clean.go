package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/readme-generator/internal/output"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove saved step outputs",
		Long:  "Deletes the step output files and the reasoning file so the next run starts from step 1. Intermediates are left alone.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			repoPath, err := requireRepo(cfg)
			if err != nil {
				return err
			}

			removed, err := output.NewStore(outputDirFor(cfg, repoPath)).Cleanup()
			for _, path := range removed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
			}
			if err != nil {
				return fmt.Errorf("failed to remove step outputs: %w", err)
			}
			if len(removed) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to clean")
			}
			return nil
		},
	}
	addRepoFlags(cmd)
	return cmd
}
