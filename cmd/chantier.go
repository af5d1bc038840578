package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worktally/worktally/core"
)

// chantierCmd groups the chantier workbook reports.
var chantierCmd = &cobra.Command{
	Use:   "chantier",
	Short: "Report on a chantier tracking workbook",
	Long: `Read every sheet but the first of a chantier workbook (.xlsx or .ods) with
PROJET, SS-PROJET, DATE and JOURS columns.

Subcommands:
  report - Days spent per project and sub-project
  plot   - Daily bar chart per project`,
	RunE: invalidAction,
}

var chantierReportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Sum the days spent per project and sub-project",
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteChantierReport(cfg)
	},
}

var chantierPlotCmd = &cobra.Command{
	Use:     "plot",
	Short:   "Draw the days spent per day, one chart per project",
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteChantierPlot(cfg)
	},
}
