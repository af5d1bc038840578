// Package sources loads the external work-time exports and turns them into daily series.
package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/worktally/worktally/core/agg"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// Pomodoro export column names, matched case-insensitively.
const (
	pomodoroProjectColumn = "project"
	pomodoroMinutesColumn = "minutes"
)

// pomodoroDateLayouts are the date index formats accepted in a Pomodoro export.
var pomodoroDateLayouts = []string{
	schema.DayLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// SkipFunc receives each malformed row skipped while loading an export.
// A nil SkipFunc drops them silently.
type SkipFunc func(err error)

func (skip SkipFunc) report(err error) {
	if skip != nil {
		skip(err)
	}
}

// LoadPomodoro reads a Pomodoro timer CSV export. The first column is the
// date index. Missing minutes count as zero. Malformed rows are passed to
// skip and left out.
func LoadPomodoro(path string, skip SkipFunc) ([]schema.PomodoroEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, contract.SourceUnreadable(path, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := ReadPomodoro(f, func(err error) { skip.report(contract.SourceUnreadable(path, err)) })
	if err != nil {
		return nil, contract.SourceUnreadable(path, err)
	}
	return entries, nil
}

// ReadPomodoro parses a Pomodoro CSV export from r. Only a missing or
// unusable header fails the whole export; bad rows go to skip.
func ReadPomodoro(r io.Reader, skip SkipFunc) ([]schema.PomodoroEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty pomodoro export")
	} else if err != nil {
		return nil, err
	}
	projectIdx, minutesIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case pomodoroProjectColumn:
			projectIdx = i
		case pomodoroMinutesColumn:
			minutesIdx = i
		}
	}
	if projectIdx <= 0 || minutesIdx <= 0 {
		return nil, fmt.Errorf("pomodoro export needs a date index and %q and %q columns", pomodoroProjectColumn, pomodoroMinutesColumn)
	}

	var entries []schema.PomodoroEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skip.report(err)
			continue
		} else if err != nil {
			return nil, err
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		entry, err := pomodoroEntry(header, record, projectIdx, minutesIdx)
		if err != nil {
			line, _ := reader.FieldPos(0)
			skip.report(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func pomodoroEntry(header, record []string, projectIdx, minutesIdx int) (schema.PomodoroEntry, error) {
	day, err := parsePomodoroDate(record[0])
	if err != nil {
		return schema.PomodoroEntry{}, err
	}
	entry := schema.PomodoroEntry{Day: day}
	if projectIdx < len(record) {
		entry.Project = strings.TrimSpace(record[projectIdx])
	}
	entry.MainProject = MainProject(entry.Project)
	if minutesIdx < len(record) {
		if raw := strings.TrimSpace(record[minutesIdx]); raw != "" {
			entry.Minutes, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return schema.PomodoroEntry{}, fmt.Errorf("invalid minutes %q: %w", raw, err)
			}
		}
	}
	for i, value := range record {
		if i == 0 || i == projectIdx || i == minutesIdx || i >= len(header) {
			continue
		}
		if entry.Extra == nil {
			entry.Extra = make(map[string]string)
		}
		entry.Extra[header[i]] = value
	}
	return entry, nil
}

func parsePomodoroDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pomodoroDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return schema.DayOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// MainProject returns the first whitespace-delimited token of a project label.
func MainProject(project string) string {
	fields := strings.Fields(project)
	if len(fields) == 0 || fields[0] == "0" {
		return ""
	}
	return fields[0]
}

// PomodoroMinutes sums the minutes of the project's Pomodoro identifier per day.
func PomodoroMinutes(projects contract.Projects, name string, entries []schema.PomodoroEntry, policy schema.FillPolicy) (schema.DailySeries, error) {
	cfg, err := projects.Lookup(name)
	if err != nil {
		return schema.DailySeries{}, err
	}
	var obs []agg.Observation
	if cfg.PomodoroProject != "" {
		for _, e := range entries {
			if e.MainProject == cfg.PomodoroProject {
				obs = append(obs, agg.Observation{Day: e.Day, Value: e.Minutes})
			}
		}
	}
	return agg.SumByDay(schema.ColPomoMinutes, obs, policy), nil
}
