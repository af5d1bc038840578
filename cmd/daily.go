package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worktally/worktally/core"
)

// dailyCmd prints daily commit counts.
var dailyCmd = &cobra.Command{
	Use:   "daily <project>",
	Short: "Count the commits of a project per day",
	Long: `Count the commits of every repository of a project per calendar day.

Days between the first and last commit without activity are shown as "-".
Use --daily-cutoff to drop older days and --timezone to choose the day boundary.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteDaily(rootCtx, cfg, cacheManager, args[0])
	},
}

// hoursCmd prints the work hours estimate.
var hoursCmd = &cobra.Command{
	Use:   "hours <project>",
	Short: "Estimate the daily work hours of a project",
	Long: `Estimate the daily work hours of a project as the time between its first and
last commit of each day. git_days expresses the same span in 8-hour workdays.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteHours(rootCtx, cfg, cacheManager, args[0])
	},
}
