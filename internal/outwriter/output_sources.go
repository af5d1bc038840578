package outwriter

import (
	"fmt"
	"io"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
	"github.com/worktally/worktally/schema"
)

// PrintPomodoroEntries outputs a loaded Pomodoro export.
func PrintPomodoroEntries(entries []schema.PomodoroEntry, cfg *contract.Config) error {
	return printView(cfg, pomodoroView(entries, cfg))
}

// WritePomodoroEntries writes a loaded Pomodoro export to w.
func WritePomodoroEntries(w io.Writer, entries []schema.PomodoroEntry, cfg *contract.Config) error {
	return writeView(w, cfg, pomodoroView(entries, cfg))
}

func pomodoroView(entries []schema.PomodoroEntry, cfg *contract.Config) view {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Day.Format(schema.DayLayout),
			e.Project,
			e.MainProject,
			fmt.Sprintf("%.*f", cfg.Precision, e.Minutes),
		}
	}
	header := []string{"date", "project", "main_project", "minutes"}
	return view{
		name:   "pomodoro entries",
		json:   entries,
		header: header,
		rows:   rows,
		table: func(w io.Writer) error {
			return renderTable(w, header, rows)
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertPomodoroEntries(entries))
		},
	}
}

// PrintTrackerEntries outputs a loaded tracker export.
func PrintTrackerEntries(entries []schema.TrackerEntry, cfg *contract.Config) error {
	return printView(cfg, trackerView(entries, cfg))
}

// WriteTrackerEntries writes a loaded tracker export to w. Missing hours
// render as "-" in tables.
func WriteTrackerEntries(w io.Writer, entries []schema.TrackerEntry, cfg *contract.Config) error {
	return writeView(w, cfg, trackerView(entries, cfg))
}

func trackerView(entries []schema.TrackerEntry, cfg *contract.Config) view {
	cells := func(empty string) [][]string {
		rows := make([][]string, len(entries))
		for i, e := range entries {
			hours := empty
			if e.Hours != nil {
				hours = fmt.Sprintf("%.*f", cfg.Precision, *e.Hours)
			}
			rows[i] = []string{e.Day.Format(schema.DayLayout), e.ProjectID, e.Project, e.Start, e.Stop, hours}
		}
		return rows
	}
	header := []string{"date", "project_id", "project", "start", "stop", "hours"}
	return view{
		name:   "tracker entries",
		json:   entries,
		header: header,
		rows:   cells(""),
		table: func(w io.Writer) error {
			return renderTable(w, header, cells(painter(cfg, contract.MutedColor)(absent)))
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertTrackerEntries(entries))
		},
	}
}
