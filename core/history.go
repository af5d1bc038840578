package core

import (
	"time"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// recordRun stores a merge result in the history store. Failures are reported
// through warn and never fail the merge itself.
func recordRun(store contract.HistoryStore, scope string, params map[string]any, rows []schema.HistoryRow, start time.Time, warn func(string, error)) {
	if store == nil {
		return
	}
	runID, err := store.BeginRun(start, scope, params)
	if err != nil {
		warn("failed to begin history run", err)
		return
	}
	if err := store.RecordRows(runID, rows); err != nil {
		warn("failed to record history rows", err)
	}
	if err := store.EndRun(runID, time.Now(), len(rows)); err != nil {
		warn("failed to end history run", err)
	}
}

// runParams captures the configuration a merge ran with.
func runParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"git_backend":      string(cfg.GitBackend),
		"pomodoro_file":    cfg.PomodoroFile,
		"tracker_file":     cfg.TrackerFile,
		"web_tracker_file": cfg.WebTrackerFile,
		"projects":         cfg.Projects.Names(),
	}
	if cfg.Location != nil {
		params["timezone"] = cfg.Location.String()
	}
	if !cfg.DailyCutoff.IsZero() {
		params["daily_cutoff"] = cfg.DailyCutoff.Format(schema.DayLayout)
	}
	return params
}
