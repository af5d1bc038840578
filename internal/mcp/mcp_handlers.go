package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/worktally/worktally/core"
	"github.com/worktally/worktally/core/commits"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// jsonResult encodes data as the text content of a tool result.
func jsonResult(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

// requestConfig applies the common request arguments to a copy of the base config.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("since", ""); s != "" {
		since, err := contract.ParseDayFlag(s, time.Now())
		if err != nil {
			return nil, fmt.Errorf("invalid since: %w", err)
		}
		cfg.Since = since
	}
	return cfg, nil
}

// requireProject returns the project argument or an error result.
func requireProject(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	project := request.GetString("project", "")
	if project == "" {
		return "", mcp.NewToolResultError("project is required")
	}
	return project, nil
}

type projectInfo struct {
	Name string `json:"name"`
	schema.ProjectConfig
}

func (h *toolHandler) handleListProjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var projects []projectInfo
	for _, name := range h.baseCfg.Projects.Names() {
		cfg, _ := h.baseCfg.Projects.Lookup(name)
		projects = append(projects, projectInfo{Name: name, ProjectConfig: cfg})
	}
	return jsonResult(projects), nil
}

func (h *toolHandler) handleGetCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoPath := request.GetString("repo_path", ".")
	opts := commits.Options{
		All:      request.GetBool("all", false),
		WithInit: !request.GetBool("no_init", false),
	}
	records, err := core.GetCommits(ctx, h.baseCfg, repoPath, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}
	return jsonResult(records), nil
}

func (h *toolHandler) handleGetDailyCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, errResult := requireProject(request)
	if errResult != nil {
		return errResult, nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	series, err := core.NewMerger(cfg, h.mgr).DailyCommits(ctx, project, schema.FillAbsent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("daily commits failed: %v", err)), nil
	}
	return jsonResult(series.Since(cfg.Since)), nil
}

func (h *toolHandler) handleGetWorkHours(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, errResult := requireProject(request)
	if errResult != nil {
		return errResult, nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hours, days, err := core.NewMerger(cfg, h.mgr).WorkHours(ctx, project, schema.FillAbsent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("work hours failed: %v", err)), nil
	}
	return jsonResult([]schema.DailySeries{hours.Since(cfg.Since), days.Since(cfg.Since)}), nil
}

func (h *toolHandler) handleMergeProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, errResult := requireProject(request)
	if errResult != nil {
		return errResult, nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := core.GetMergedProject(ctx, cfg, h.mgr, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("merge failed: %v", err)), nil
	}
	return jsonResult(table.Since(cfg.Since)), nil
}

func (h *toolHandler) handleMergeAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := core.GetMergedAll(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("merge failed: %v", err)), nil
	}
	return jsonResult(schema.FilterHistorySince(rows, cfg.Since)), nil
}

func (h *toolHandler) handleGetChantierReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if f := request.GetString("file", ""); f != "" {
		cfg.ChantierFile = f
	}
	totals, err := core.GetChantierReport(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chantier report failed: %v", err)), nil
	}
	return jsonResult(totals), nil
}
