// Package parquet provides data structures and functions for exporting worktally
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/worktally/worktally/schema"
)

// MergeRun represents a single recorded merge run.
// This struct maps to the worktally_merge_runs database table.
type MergeRun struct {
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the merge began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil for runs that never completed
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	// Scope is the merged project name, or "all"
	Scope     string `parquet:"scope,snappy,dict"`
	TotalRows int32  `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// HistoryRow is one day of one project. RunID is set only for rows read back
// from the history store.
type HistoryRow struct {
	RunID        *int64   `parquet:"run_id,optional,snappy"`
	Date         string   `parquet:"date,snappy"`
	Project      string   `parquet:"project,snappy,dict"`
	GitCommits   *float64 `parquet:"git_commits,optional,snappy"`
	GitHours     *float64 `parquet:"git_hours,optional,snappy"`
	GitDays      *float64 `parquet:"git_days,optional,snappy"`
	PomoMinutes  *float64 `parquet:"pomo_minutes,optional,snappy"`
	TrackerHours *float64 `parquet:"tracker_hours,optional,snappy"`
	WebHours     *float64 `parquet:"web_hours,optional,snappy"`
}

// Commit is one extracted commit record.
type Commit struct {
	Type    string `parquet:"type,snappy,dict"`
	Date    string `parquet:"date,snappy"`
	Message string `parquet:"message,snappy"`
	Hash    string `parquet:"hash,snappy"`
	Elapsed string `parquet:"elapsed,snappy"`

	// ElapsedSeconds is nil for the first record
	ElapsedSeconds *int64 `parquet:"elapsed_seconds,optional,snappy"`
}

// SeriesPoint is one day of a named daily series. Value is nil for absent days.
type SeriesPoint struct {
	Series string   `parquet:"series,snappy,dict"`
	Date   string   `parquet:"date,snappy"`
	Value  *float64 `parquet:"value,optional,snappy"`
}

// ChantierTotal is the number of days spent on a project/sub-project pair.
type ChantierTotal struct {
	Project    string  `parquet:"project,snappy,dict"`
	SubProject string  `parquet:"sub_project,snappy"`
	Days       float64 `parquet:"days,snappy"`
}

// PomodoroEntry is one row of a Pomodoro export.
type PomodoroEntry struct {
	Date        string  `parquet:"date,snappy"`
	Project     string  `parquet:"project,snappy,dict"`
	MainProject string  `parquet:"main_project,snappy,dict"`
	Minutes     float64 `parquet:"minutes,snappy"`
}

// TrackerEntry is one (date, project) row of a tracker export.
type TrackerEntry struct {
	Date      string   `parquet:"date,snappy"`
	ProjectID string   `parquet:"project_id,snappy,dict"`
	Project   string   `parquet:"project,snappy,dict"`
	Start     string   `parquet:"start,snappy"`
	Stop      string   `parquet:"stop,snappy"`
	Hours     *float64 `parquet:"hours,optional,snappy"`
}

// Write encodes rows to w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertMergeRunRecords converts store records for Parquet export.
func ConvertMergeRunRecords(records []schema.MergeRunRecord) []MergeRun {
	result := make([]MergeRun, len(records))
	for i, record := range records {
		result[i] = MergeRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Scope:         record.Scope,
			TotalRows:     record.TotalRows,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertHistoryRowRecords converts store records for Parquet export.
func ConvertHistoryRowRecords(records []schema.HistoryRowRecord) []HistoryRow {
	result := make([]HistoryRow, len(records))
	for i, record := range records {
		result[i] = historyRow(record.HistoryRow)
		runID := record.RunID
		result[i].RunID = &runID
	}
	return result
}

// ConvertHistoryRows converts freshly merged rows.
func ConvertHistoryRows(rows []schema.HistoryRow) []HistoryRow {
	result := make([]HistoryRow, len(rows))
	for i, row := range rows {
		result[i] = historyRow(row)
	}
	return result
}

func historyRow(row schema.HistoryRow) HistoryRow {
	return HistoryRow{
		Date:         row.Day.Format(schema.DayLayout),
		Project:      row.Project,
		GitCommits:   row.GitCommits,
		GitHours:     row.GitHours,
		GitDays:      row.GitDays,
		PomoMinutes:  row.PomoMinutes,
		TrackerHours: row.TrackerHours,
		WebHours:     row.WebHours,
	}
}

// ConvertCommitRecords converts extracted commits.
func ConvertCommitRecords(records []schema.CommitRecord) []Commit {
	result := make([]Commit, len(records))
	for i, record := range records {
		result[i] = Commit{
			Type:    string(record.Kind),
			Date:    record.Date,
			Message: record.Message,
			Hash:    record.Hash,
			Elapsed: record.ElapsedText,
		}
		if record.Elapsed != nil {
			secs := int64(record.Elapsed.Seconds())
			result[i].ElapsedSeconds = &secs
		}
	}
	return result
}

// ConvertSeries flattens daily series into long rows.
func ConvertSeries(series ...schema.DailySeries) []SeriesPoint {
	var result []SeriesPoint
	for _, s := range series {
		for _, p := range s.Points {
			point := SeriesPoint{Series: s.Name, Date: p.Day.Format(schema.DayLayout)}
			if p.Present {
				point.Value = schema.Float(p.Value)
			}
			result = append(result, point)
		}
	}
	return result
}

// ConvertMergedTable flattens a per-project table into history rows.
func ConvertMergedTable(table schema.MergedTable) []HistoryRow {
	return ConvertHistoryRows(table.HistoryRows())
}

// ConvertChantierTotals converts a chantier report.
func ConvertChantierTotals(totals []schema.ChantierTotal) []ChantierTotal {
	result := make([]ChantierTotal, len(totals))
	for i, t := range totals {
		result[i] = ChantierTotal{Project: t.Project, SubProject: t.SubProject, Days: t.Days}
	}
	return result
}

// ConvertPomodoroEntries converts a loaded Pomodoro export.
func ConvertPomodoroEntries(entries []schema.PomodoroEntry) []PomodoroEntry {
	result := make([]PomodoroEntry, len(entries))
	for i, e := range entries {
		result[i] = PomodoroEntry{
			Date:        e.Day.Format(schema.DayLayout),
			Project:     e.Project,
			MainProject: e.MainProject,
			Minutes:     e.Minutes,
		}
	}
	return result
}

// ConvertTrackerEntries converts a loaded tracker export.
func ConvertTrackerEntries(entries []schema.TrackerEntry) []TrackerEntry {
	result := make([]TrackerEntry, len(entries))
	for i, e := range entries {
		result[i] = TrackerEntry{
			Date:      e.Day.Format(schema.DayLayout),
			ProjectID: e.ProjectID,
			Project:   e.Project,
			Start:     e.Start,
			Stop:      e.Stop,
			Hours:     e.Hours,
		}
	}
	return result
}
