package outwriter

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
	"github.com/worktally/worktally/schema"
)

// PrintSeries outputs daily series side by side in the configured format.
func PrintSeries(cfg *contract.Config, series ...schema.DailySeries) error {
	return printView(cfg, seriesView(cfg, series))
}

// WriteSeries writes daily series side by side to w. Absent days render as
// "-" in tables and as empty CSV cells.
func WriteSeries(w io.Writer, cfg *contract.Config, series ...schema.DailySeries) error {
	return writeView(w, cfg, seriesView(cfg, series))
}

func seriesView(cfg *contract.Config, series []schema.DailySeries) view {
	fmtValue := createFormatters(cfg.Precision)
	days := seriesDays(series)

	header := []string{schema.ColDate}
	for _, s := range series {
		header = append(header, s.Name)
	}
	cells := func(empty string) [][]string {
		rows := make([][]string, len(days))
		for i, d := range days {
			row := []string{d.Format(schema.DayLayout)}
			for _, s := range series {
				if v, ok := s.Value(d); ok {
					row = append(row, fmtValue(s.Name, v))
				} else {
					row = append(row, empty)
				}
			}
			rows[i] = row
		}
		return rows
	}

	return view{
		name:   "daily series",
		json:   series,
		header: header,
		rows:   cells(""),
		table: func(w io.Writer) error {
			muted := painter(cfg, contract.MutedColor)
			if err := renderTable(w, header, cells(muted(absent))); err != nil {
				return err
			}
			for _, s := range series {
				if _, err := fmt.Fprintf(w, "Total %s: %s\n", s.Name, fmtValue(s.Name, s.Total())); err != nil {
					return err
				}
			}
			return nil
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSeries(series...))
		},
	}
}

// seriesDays returns the sorted union of the days of every series.
func seriesDays(series []schema.DailySeries) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.Day] {
				seen[p.Day] = true
				days = append(days, p.Day)
			}
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}
