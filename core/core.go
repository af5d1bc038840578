// Package core has the entry points that combine extraction, aggregation and output.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/worktally/worktally/core/chantier"
	"github.com/worktally/worktally/core/commits"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/gogit"
	"github.com/worktally/worktally/internal/outwriter"
	"github.com/worktally/worktally/schema"
)

// NewGitClient returns the GitClient for the configured backend.
func NewGitClient(backend schema.GitBackend) contract.GitClient {
	if backend == schema.GoGitBackend {
		return gogit.NewClient()
	}
	return contract.NewLocalGitClient()
}

// NewMerger builds a Merger from the configuration. mgr may be nil.
func NewMerger(cfg *contract.Config, mgr contract.CacheManager) *Merger {
	m := &Merger{
		Client:         NewGitClient(cfg.GitBackend),
		CacheTTL:       cfg.CacheTTL,
		Projects:       cfg.Projects,
		PomodoroFile:   cfg.PomodoroFile,
		TrackerFile:    cfg.TrackerFile,
		WebTrackerFile: cfg.WebTrackerFile,
		Location:       cfg.Location,
		Cutoff:         cfg.DailyCutoff,
	}
	if mgr != nil {
		m.Cache = mgr.GetActivityStore()
	}
	return m
}

// historyStore returns the configured history store, or nil.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// GetCommits extracts the commits of a repository with their elapsed times.
func GetCommits(ctx context.Context, cfg *contract.Config, repoPath string, opts commits.Options) ([]schema.CommitRecord, error) {
	return commits.Extract(ctx, NewGitClient(cfg.GitBackend), repoPath, opts)
}

// ExecuteMerges extracts and prints the commit history of a repository.
// When csvPath is set the records are also exported there as CSV.
func ExecuteMerges(ctx context.Context, cfg *contract.Config, repoPath string, opts commits.Options, csvPath string) error {
	start := time.Now()
	records, err := GetCommits(ctx, cfg, repoPath, opts)
	if err != nil {
		return err
	}
	if csvPath != "" {
		if err := outwriter.WriteCommitsCSV(csvPath, records); err != nil {
			return err
		}
	}
	return outwriter.PrintCommits(records, cfg, time.Since(start))
}

// ExecuteDaily prints the daily commit counts of a project.
func ExecuteDaily(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, project string) error {
	series, err := NewMerger(cfg, mgr).DailyCommits(ctx, project, schema.FillAbsent)
	if err != nil {
		return err
	}
	return outwriter.PrintSeries(cfg, series.Since(cfg.Since))
}

// ExecuteHours prints the estimated daily work hours of a project.
func ExecuteHours(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, project string) error {
	hours, days, err := NewMerger(cfg, mgr).WorkHours(ctx, project, schema.FillAbsent)
	if err != nil {
		return err
	}
	return outwriter.PrintSeries(cfg, hours.Since(cfg.Since), days.Since(cfg.Since))
}

// ExecutePomodoro prints the Pomodoro export, or the daily minutes of a
// project when one is named.
func ExecutePomodoro(cfg *contract.Config, project string) error {
	m := NewMerger(cfg, nil)
	if project == "" {
		entries, err := m.PomodoroEntries()
		if err != nil {
			return err
		}
		return outwriter.PrintPomodoroEntries(entries, cfg)
	}
	series, err := m.PomodoroMinutes(project, schema.FillZero)
	if err != nil {
		return err
	}
	return outwriter.PrintSeries(cfg, series.Since(cfg.Since))
}

// ExecuteTracker prints a tracker export, or the daily hours of a project
// when one is named.
func ExecuteTracker(cfg *contract.Config, project string, web bool) error {
	m := NewMerger(cfg, nil)
	if project == "" {
		entries, err := m.TrackerEntries(web)
		if err != nil {
			return err
		}
		return outwriter.PrintTrackerEntries(entries, cfg)
	}
	series, err := m.TrackerHours(project, web, schema.FillZero)
	if err != nil {
		return err
	}
	return outwriter.PrintSeries(cfg, series.Since(cfg.Since))
}

// GetMergedProject merges the signals of one project and records the run
// in the history store when one is configured.
func GetMergedProject(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, project string) (schema.MergedTable, error) {
	start := time.Now()
	table, err := NewMerger(cfg, mgr).MergeProject(ctx, project)
	if err != nil {
		return schema.MergedTable{}, err
	}
	recordRun(historyStore(mgr), project, runParams(cfg), table.HistoryRows(), start, contract.LogWarn)
	return table, nil
}

// ExecuteMerged prints the merged table of one project, or its bar charts.
func ExecuteMerged(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, project string, plot bool) error {
	table, err := GetMergedProject(ctx, cfg, mgr, project)
	if err != nil {
		return err
	}
	table = table.Since(cfg.Since)
	if plot {
		return outwriter.PrintMergedPlot(table, cfg)
	}
	return outwriter.PrintMerged(table, cfg)
}

// GetMergedAll merges every project and records the run in the history
// store when one is configured.
func GetMergedAll(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.HistoryRow, error) {
	start := time.Now()
	rows, err := NewMerger(cfg, mgr).MergeAll(ctx)
	if err != nil {
		return nil, err
	}
	recordRun(historyStore(mgr), schema.ScopeAll, runParams(cfg), rows, start, contract.LogWarn)
	return rows, nil
}

// ExecuteMergedAll prints the all-projects long table.
func ExecuteMergedAll(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	rows, err := GetMergedAll(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintHistory(schema.FilterHistorySince(rows, cfg.Since), cfg)
}

// loadChantier loads the configured chantier workbook.
func loadChantier(cfg *contract.Config) ([]schema.ChantierEntry, error) {
	if cfg.ChantierFile == "" {
		return nil, errNotConfigured("chantier-file")
	}
	entries, err := chantier.LoadWorkbook(cfg.ChantierFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load chantier workbook: %w", err)
	}
	return entries, nil
}

// GetChantierReport returns the days spent per project and sub-project.
func GetChantierReport(cfg *contract.Config) ([]schema.ChantierTotal, error) {
	entries, err := loadChantier(cfg)
	if err != nil {
		return nil, err
	}
	return chantier.Report(entries), nil
}

// ExecuteChantierReport prints the days spent per project and sub-project.
func ExecuteChantierReport(cfg *contract.Config) error {
	totals, err := GetChantierReport(cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintChantierReport(totals, cfg)
}

// ExecuteChantierPlot draws the days spent per day, one chart per project.
func ExecuteChantierPlot(cfg *contract.Config) error {
	entries, err := loadChantier(cfg)
	if err != nil {
		return err
	}
	series := chantier.DailyByProject(entries)
	for i := range series {
		series[i] = series[i].Since(cfg.Since)
	}
	return outwriter.PrintSeriesPlots(cfg, series...)
}
