// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/worktally/worktally/internal/contract"
)

// NewMCPServer initializes and configures the worktally MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"worktally Productivity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	sinceOpt := mcp.WithString("since", mcp.Description("Drop days before this date (YYYY-MM-DD or e.g. '30 days ago')."))

	// --- 1. Tool: list_projects ---
	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the configured projects with their repositories and tracker identifiers."),
	), h.handleListProjects)

	// --- 2. Tool: get_commits ---
	s.AddTool(mcp.NewTool("get_commits",
		mcp.WithDescription("Extract merge commits (or all commits) of a Git repository with the time elapsed between them."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithBoolean("all", mcp.Description("Include every commit instead of merge commits only.")),
		mcp.WithBoolean("no_init", mcp.Description("Do not prepend the initial commit.")),
	), h.handleGetCommits)

	// --- 3. Tool: get_daily_commits ---
	s.AddTool(mcp.NewTool("get_daily_commits",
		mcp.WithDescription("Count the commits of a project per calendar day."),
		mcp.WithString("project", mcp.Description("Configured project name."), mcp.Required()),
		sinceOpt,
	), h.handleGetDailyCommits)

	// --- 4. Tool: get_work_hours ---
	s.AddTool(mcp.NewTool("get_work_hours",
		mcp.WithDescription("Estimate daily work hours of a project from its first and last commit of each day."),
		mcp.WithString("project", mcp.Description("Configured project name."), mcp.Required()),
		sinceOpt,
	), h.handleGetWorkHours)

	// --- 5. Tool: merge_project ---
	s.AddTool(mcp.NewTool("merge_project",
		mcp.WithDescription("Merge Git, Pomodoro and tracker signals of one project into a daily table."),
		mcp.WithString("project", mcp.Description("Configured project name."), mcp.Required()),
		sinceOpt,
	), h.handleMergeProject)

	// --- 6. Tool: merge_all_projects ---
	s.AddTool(mcp.NewTool("merge_all_projects",
		mcp.WithDescription("Merge every signal of every configured project into one long table sorted by date."),
		sinceOpt,
	), h.handleMergeAll)

	// --- 7. Tool: get_chantier_report ---
	s.AddTool(mcp.NewTool("get_chantier_report",
		mcp.WithDescription("Sum the days spent per project and sub-project of a chantier workbook."),
		mcp.WithString("file", mcp.Description("Path to the .xlsx or .ods workbook (defaults to the configured chantier file).")),
	), h.handleGetChantierReport)

	return s
}

// StartMCPServer starts the worktally MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
