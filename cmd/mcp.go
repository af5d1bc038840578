package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worktally/worktally/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the worktally MCP server",
	Long:    `Launch an MCP server over stdio that lets AI agents query commits, merges and chantier reports as tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
