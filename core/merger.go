package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/worktally/worktally/core/agg"
	"github.com/worktally/worktally/core/sources"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// Merger combines the work-time signals of configured projects. It loads each
// export file at most once.
type Merger struct {
	Client   contract.GitClient
	Cache    contract.CacheStore // optional commit timestamp cache
	CacheTTL time.Duration
	Projects contract.Projects

	PomodoroFile   string
	TrackerFile    string
	WebTrackerFile string

	Location *time.Location
	Cutoff   time.Time // daily commit counts start here when non-zero

	// Warn receives the per-source failures of MergeAll and the malformed
	// export rows that were skipped.
	Warn func(msg string, err error)

	pomodoro   lazy[schema.PomodoroEntry]
	tracker    lazy[schema.TrackerEntry]
	webTracker lazy[schema.TrackerEntry]
}

// lazy memoizes the result of a loader.
type lazy[T any] struct {
	once    sync.Once
	entries []T
	err     error
}

func (l *lazy[T]) get(load func() ([]T, error)) ([]T, error) {
	l.once.Do(func() { l.entries, l.err = load() })
	return l.entries, l.err
}

// errNotConfigured reports a source file key left empty.
func errNotConfigured(key string) error {
	return fmt.Errorf("%s is not configured", key)
}

// CommitTimestamps returns the commit times of every repository of the project.
func (m *Merger) CommitTimestamps(ctx context.Context, name string) ([]time.Time, error) {
	cfg, err := m.Projects.Lookup(name)
	if err != nil {
		return nil, err
	}
	var stamps []time.Time
	for _, dir := range cfg.GitDirs {
		ts, err := m.repoTimestamps(ctx, dir)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, ts...)
	}
	return stamps, nil
}

// DailyCommits counts the project's commits per day.
func (m *Merger) DailyCommits(ctx context.Context, name string, policy schema.FillPolicy) (schema.DailySeries, error) {
	stamps, err := m.CommitTimestamps(ctx, name)
	if err != nil {
		return schema.DailySeries{}, err
	}
	return agg.DailyCommits(stamps, m.Location, m.Cutoff, policy), nil
}

// WorkHours estimates the project's daily hours and workday fraction.
func (m *Merger) WorkHours(ctx context.Context, name string, policy schema.FillPolicy) (schema.DailySeries, schema.DailySeries, error) {
	stamps, err := m.CommitTimestamps(ctx, name)
	if err != nil {
		return schema.DailySeries{}, schema.DailySeries{}, err
	}
	hours, days := agg.WorkHours(stamps, m.Location, policy)
	return hours, days, nil
}

// gitSeries derives the commit count, hours and workday series of a project
// from a single read of its commit timestamps.
func (m *Merger) gitSeries(ctx context.Context, name string, policy schema.FillPolicy) ([]schema.DailySeries, error) {
	stamps, err := m.CommitTimestamps(ctx, name)
	if err != nil {
		return nil, err
	}
	hours, days := agg.WorkHours(stamps, m.Location, policy)
	return []schema.DailySeries{agg.DailyCommits(stamps, m.Location, m.Cutoff, policy), hours, days}, nil
}

// PomodoroEntries loads the Pomodoro export.
func (m *Merger) PomodoroEntries() ([]schema.PomodoroEntry, error) {
	return m.pomodoro.get(func() ([]schema.PomodoroEntry, error) {
		if m.PomodoroFile == "" {
			return nil, errNotConfigured("pomodoro-file")
		}
		return sources.LoadPomodoro(m.PomodoroFile, m.skipper(schema.PomodoroSource))
	})
}

// TrackerEntries loads the tracker export, or the web tracker export when web is set.
func (m *Merger) TrackerEntries(web bool) ([]schema.TrackerEntry, error) {
	if web {
		return m.webTracker.get(func() ([]schema.TrackerEntry, error) {
			if m.WebTrackerFile == "" {
				return nil, errNotConfigured("web-tracker-file")
			}
			return sources.LoadTracker(m.WebTrackerFile, m.Location, m.skipper(schema.WebTrackerSource))
		})
	}
	return m.tracker.get(func() ([]schema.TrackerEntry, error) {
		if m.TrackerFile == "" {
			return nil, errNotConfigured("tracker-file")
		}
		return sources.LoadTracker(m.TrackerFile, m.Location, m.skipper(schema.TrackerSource))
	})
}

// PomodoroMinutes returns the project's daily Pomodoro minutes.
func (m *Merger) PomodoroMinutes(name string, policy schema.FillPolicy) (schema.DailySeries, error) {
	if _, err := m.Projects.Lookup(name); err != nil {
		return schema.DailySeries{}, err
	}
	entries, err := m.PomodoroEntries()
	if err != nil {
		return schema.DailySeries{}, err
	}
	return sources.PomodoroMinutes(m.Projects, name, entries, policy)
}

// TrackerHours returns the project's daily tracker hours. The web tracker
// series is named web_hours.
func (m *Merger) TrackerHours(name string, web bool, policy schema.FillPolicy) (schema.DailySeries, error) {
	if _, err := m.Projects.Lookup(name); err != nil {
		return schema.DailySeries{}, err
	}
	entries, err := m.TrackerEntries(web)
	if err != nil {
		return schema.DailySeries{}, err
	}
	series, err := sources.TrackerHours(m.Projects, name, entries, policy)
	if web {
		series.Name = schema.ColWebHours
	}
	return series, err
}

// MergeProject joins every configured signal of one project into a contiguous,
// zero-filled daily table. Git columns appear only for projects with
// repositories, and export columns only when their file is configured.
func (m *Merger) MergeProject(ctx context.Context, name string) (schema.MergedTable, error) {
	cfg, err := m.Projects.Lookup(name)
	if err != nil {
		return schema.MergedTable{}, err
	}

	var series []schema.DailySeries
	if len(cfg.GitDirs) > 0 {
		git, err := m.gitSeries(ctx, name, schema.FillAbsent)
		if err != nil {
			return schema.MergedTable{}, err
		}
		series = append(series, git...)
	}
	if m.PomodoroFile != "" {
		pomo, err := m.PomodoroMinutes(name, schema.FillZero)
		if err != nil {
			return schema.MergedTable{}, err
		}
		series = append(series, pomo)
	}
	for _, web := range []bool{false, true} {
		if (web && m.WebTrackerFile == "") || (!web && m.TrackerFile == "") {
			continue
		}
		hours, err := m.TrackerHours(name, web, schema.FillZero)
		if err != nil {
			return schema.MergedTable{}, err
		}
		series = append(series, hours)
	}
	return agg.Merge(name, series...), nil
}

// sourceRows produces the long rows of one source of one project.
type sourceRows func(ctx context.Context, name string) ([]schema.HistoryRow, error)

// MergeAll builds the long table of every project and source, sorted by day.
// Failures are reported per project and source through Warn and skipped. It
// returns ErrNoData when nothing at all was collected.
func (m *Merger) MergeAll(ctx context.Context) ([]schema.HistoryRow, error) {
	steps := []struct {
		source schema.SourceName
		rows   sourceRows
		active bool
	}{
		{schema.GitSource, m.gitRows, true},
		{schema.PomodoroSource, m.pomodoroRows, m.PomodoroFile != ""},
		{schema.TrackerSource, m.trackerRows(false), m.TrackerFile != ""},
		{schema.WebTrackerSource, m.trackerRows(true), m.WebTrackerFile != ""},
	}

	var all []schema.HistoryRow
	for _, name := range m.Projects.Names() {
		for _, step := range steps {
			if !step.active {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows, err := step.rows(ctx, name)
			if err != nil {
				m.warn(fmt.Sprintf("[%s] %s", step.source, name), err)
				continue
			}
			all = append(all, rows...)
		}
	}
	if len(all) == 0 {
		return nil, contract.ErrNoData
	}
	slices.SortStableFunc(all, func(a, b schema.HistoryRow) int { return a.Day.Compare(b.Day) })
	return all, nil
}

func (m *Merger) gitRows(ctx context.Context, name string) ([]schema.HistoryRow, error) {
	cfg, err := m.Projects.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(cfg.GitDirs) == 0 {
		return nil, nil
	}
	git, err := m.gitSeries(ctx, name, schema.FillAbsent)
	if err != nil {
		return nil, err
	}
	return presentRows(name, git...), nil
}

func (m *Merger) pomodoroRows(_ context.Context, name string) ([]schema.HistoryRow, error) {
	s, err := m.PomodoroMinutes(name, schema.FillZero)
	if err != nil {
		return nil, err
	}
	return presentRows(name, s), nil
}

func (m *Merger) trackerRows(web bool) sourceRows {
	return func(_ context.Context, name string) ([]schema.HistoryRow, error) {
		s, err := m.TrackerHours(name, web, schema.FillZero)
		if err != nil {
			return nil, err
		}
		return presentRows(name, s), nil
	}
}

// presentRows turns series of one source into long rows, one per day with at
// least one present value. Only the present columns are set.
func presentRows(project string, series ...schema.DailySeries) []schema.HistoryRow {
	byDay := make(map[time.Time]*schema.HistoryRow)
	var days []time.Time
	for _, s := range series {
		for _, p := range s.Points {
			if !p.Present {
				continue
			}
			row, ok := byDay[p.Day]
			if !ok {
				row = &schema.HistoryRow{Day: p.Day, Project: project}
				byDay[p.Day] = row
				days = append(days, p.Day)
			}
			row.Set(s.Name, p.Value)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	rows := make([]schema.HistoryRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, *byDay[d])
	}
	return rows
}

// skipper reports the malformed rows of one export through Warn.
func (m *Merger) skipper(source schema.SourceName) sources.SkipFunc {
	return func(err error) {
		m.warn(fmt.Sprintf("[%s] skipped row", source), err)
	}
}

func (m *Merger) warn(msg string, err error) {
	if m.Warn != nil {
		m.Warn(msg, err)
		return
	}
	contract.LogWarn(msg, err)
}

// IsNoData reports whether err means a merge collected nothing.
func IsNoData(err error) bool {
	return errors.Is(err, contract.ErrNoData)
}
