package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worktally/worktally/core"
)

// pomodoroCmd dumps the Pomodoro export.
var pomodoroCmd = &cobra.Command{
	Use:   "pomodoro [project]",
	Short: "Show the Pomodoro export or the daily minutes of a project",
	Long: `Without a project, list every entry of the Pomodoro export.
With a project, sum the minutes of its configured Pomodoro label per day.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecutePomodoro(cfg, firstArg(args))
	},
}

// trackerCmd dumps a tracker export.
var trackerCmd = &cobra.Command{
	Use:   "tracker [project]",
	Short: "Show the tracker export or the daily hours of a project",
	Long: `Without a project, list every (date, project) entry of the tracker export.
With a project, sum the hours of its configured tracker projects per day.
Missing start or stop times are shown as "undefined".`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		web, _ := cmd.Flags().GetBool("web")
		return core.ExecuteTracker(cfg, firstArg(args), web)
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
