package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/worktally/worktally/core"
)

// mergedCmd merges every signal of one or all projects.
var mergedCmd = &cobra.Command{
	Use:   "merged [project]",
	Short: "Merge Git, Pomodoro and tracker signals per day",
	Long: `Merge commit counts, work hours, Pomodoro minutes and tracker hours of a
project into one zero-filled daily table.

With --all, every configured project is merged into one long table sorted by
date. A source failing for one project is reported and skipped.

Runs are recorded when a history backend is configured.

Examples:
  worktally merged calipso
  worktally merged calipso --plot
  worktally merged --all --output csv --output-file history.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		plot, _ := cmd.Flags().GetBool("plot")
		if all {
			return core.ExecuteMergedAll(rootCtx, cfg, cacheManager)
		}
		if len(args) == 0 {
			return errors.New("a project name or --all is required")
		}
		return core.ExecuteMerged(rootCtx, cfg, cacheManager, args[0], plot)
	},
}
