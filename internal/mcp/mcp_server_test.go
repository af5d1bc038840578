package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
	mcp_internal "github.com/worktally/worktally/internal/mcp"
	"github.com/worktally/worktally/schema"
)

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func baseConfig(t *testing.T) *contract.Config {
	pomodoro := filepath.Join(t.TempDir(), "pomodoro.csv")
	require.NoError(t, os.WriteFile(pomodoro, []byte("date,project,minutes\n2024-01-02,gnome,25\n2024-01-05,gnome,50\n"), 0o644))
	return &contract.Config{
		Projects: contract.NewProjects(map[string]schema.ProjectConfig{
			"Gnome": {PomodoroProject: "gnome"},
		}),
		PomodoroFile: pomodoro,
		Location:     time.UTC,
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("merge_project missing project", func(t *testing.T) {
		res := callTool(t, cfg, "merge_project", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, text(res), "project is required")
	})

	t.Run("merge_project unknown project", func(t *testing.T) {
		res := callTool(t, cfg, "merge_project", map[string]any{"project": "Nope"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "wrong project name: Nope")
	})

	t.Run("get_daily_commits invalid since", func(t *testing.T) {
		res := callTool(t, cfg, "get_daily_commits", map[string]any{"project": "Gnome", "since": "whenever"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid since")
	})

	t.Run("get_chantier_report not configured", func(t *testing.T) {
		res := callTool(t, cfg, "get_chantier_report", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "chantier-file is not configured")
	})

	t.Run("get_commits missing repository", func(t *testing.T) {
		res := callTool(t, cfg, "get_commits", map[string]any{"repo_path": filepath.Join(t.TempDir(), "missing")})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "extraction failed")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("list_projects", func(t *testing.T) {
		res := callTool(t, cfg, "list_projects", nil)
		require.False(t, res.IsError)
		assert.Contains(t, text(res), `"name": "Gnome"`)
		assert.Contains(t, text(res), `"pomodoro": "gnome"`)
	})

	t.Run("merge_project", func(t *testing.T) {
		res := callTool(t, cfg, "merge_project", map[string]any{"project": "Gnome", "since": "2024-01-03"})
		require.False(t, res.IsError, text(res))

		var table schema.MergedTable
		require.NoError(t, json.Unmarshal([]byte(text(res)), &table))
		assert.Equal(t, []string{schema.ColPomoMinutes}, table.Columns)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, []float64{0}, table.Rows[0].Values)
		assert.Equal(t, []float64{50}, table.Rows[2].Values)
	})

	t.Run("merge_all_projects", func(t *testing.T) {
		res := callTool(t, cfg, "merge_all_projects", map[string]any{})
		require.False(t, res.IsError, text(res))

		var rows []schema.HistoryRow
		require.NoError(t, json.Unmarshal([]byte(text(res)), &rows))
		// Pomodoro is zero-filled between the two sessions.
		require.Len(t, rows, 4)
		assert.Equal(t, "Gnome", rows[0].Project)
		assert.Equal(t, 25.0, *rows[0].PomoMinutes)
		assert.Equal(t, 0.0, *rows[1].PomoMinutes)
	})
}
