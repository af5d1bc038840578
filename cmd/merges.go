package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worktally/worktally/core"
	"github.com/worktally/worktally/core/commits"
)

// mergesCmd extracts the merge history of a repository.
var mergesCmd = &cobra.Command{
	Use:   "merges [repo-path]",
	Short: "List merge commits with the time elapsed between them",
	Long: `List the merge commits of a Git repository, oldest first, with the time
elapsed since the previous record. The initial commit is prepended unless
--no-init is given.

Examples:
  # Merge history of the current repository
  worktally merges

  # Every commit, exported to CSV as well
  worktally merges ../calipso --all --csv calipso.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath := "."
		if len(args) == 1 {
			repoPath = args[0]
		}
		all, _ := cmd.Flags().GetBool("all")
		noInit, _ := cmd.Flags().GetBool("no-init")
		csvPath, _ := cmd.Flags().GetString("csv")

		opts := commits.Options{All: all, WithInit: !noInit}
		return core.ExecuteMerges(rootCtx, cfg, repoPath, opts, csvPath)
	},
}
