// Package cmd defines the command-line interface for worktally.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(mergesCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(hoursCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(trackerCmd)
	rootCmd.AddCommand(mergedCmd)
	rootCmd.AddCommand(chantierCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	chantierCmd.AddCommand(chantierReportCmd)
	chantierCmd.AddCommand(chantierPlotCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Config file (default is .worktally.yaml in . or $HOME)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output: yes or no")
	rootCmd.PersistentFlags().String("since", "", "Only show days from this date (YYYY-MM-DD or time ago)")
	rootCmd.PersistentFlags().String("pomodoro-file", "", "Pomodoro timer CSV export")
	rootCmd.PersistentFlags().String("tracker-file", "", "Productivity tracker JSON export")
	rootCmd.PersistentFlags().String("web-tracker-file", "", "Second productivity tracker JSON export, reported as web_hours")
	rootCmd.PersistentFlags().String("chantier-file", "", "Chantier tracking workbook (.xlsx or .ods)")
	rootCmd.PersistentFlags().String("projects-file", "", "YAML file with a top-level projects mapping")
	rootCmd.PersistentFlags().String("timezone", "", "Time zone used to assign commits to days (default local)")
	rootCmd.PersistentFlags().String("daily-cutoff", "", "Drop daily commit counts before this date")
	rootCmd.PersistentFlags().String("git-backend", string(schema.ExecGitBackend), "Git backend: exec or go-git")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL, "Maximum age of cached commit timestamps")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Merge history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for merge history (must differ from cache-db-connect)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	mergesCmd.Flags().Bool("all", false, "Include every commit instead of merge commits only")
	mergesCmd.Flags().Bool("no-init", false, "Do not prepend the initial commit")
	mergesCmd.Flags().String("csv", "", "Also export the records to this CSV file")

	trackerCmd.Flags().Bool("web", false, "Read the web tracker export instead")

	mergedCmd.Flags().Bool("all", false, "Merge every configured project into one long table")
	mergedCmd.Flags().Bool("plot", false, "Draw bar charts instead of a table")

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
