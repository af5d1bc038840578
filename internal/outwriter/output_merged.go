package outwriter

import (
	"fmt"
	"io"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
	"github.com/worktally/worktally/schema"
)

// PrintMerged outputs a per-project merged table in the configured format.
func PrintMerged(table schema.MergedTable, cfg *contract.Config) error {
	return printView(cfg, mergedView(table, cfg))
}

// WriteMerged writes a per-project merged table to w, with a totals row in
// text output.
func WriteMerged(w io.Writer, table schema.MergedTable, cfg *contract.Config) error {
	return writeView(w, cfg, mergedView(table, cfg))
}

func mergedView(table schema.MergedTable, cfg *contract.Config) view {
	fmtValue := createFormatters(cfg.Precision)
	header := append([]string{schema.ColDate}, table.Columns...)
	rows := make([][]string, len(table.Rows))
	for i, r := range table.Rows {
		row := []string{r.Day.Format(schema.DayLayout)}
		for j, v := range r.Values {
			row = append(row, fmtValue(table.Columns[j], v))
		}
		rows[i] = row
	}

	return view{
		name:   "merged table",
		json:   table,
		header: header,
		rows:   rows,
		table: func(w io.Writer) error {
			title := painter(cfg, contract.HeaderColor)
			if _, err := fmt.Fprintln(w, title(table.Project)); err != nil {
				return err
			}
			total := []string{"Total"}
			for j, v := range table.ColumnTotals() {
				total = append(total, fmtValue(table.Columns[j], v))
			}
			return renderTable(w, append([]string{"Date"}, table.Columns...), append(rows, total))
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertMergedTable(table))
		},
	}
}

// PrintHistory outputs the all-projects long table in the configured format.
func PrintHistory(rows []schema.HistoryRow, cfg *contract.Config) error {
	return printView(cfg, historyView(rows, cfg))
}

// WriteHistory writes the all-projects long table to w. Text output ends with
// per-project totals.
func WriteHistory(w io.Writer, rows []schema.HistoryRow, cfg *contract.Config) error {
	return writeView(w, cfg, historyView(rows, cfg))
}

func historyView(rows []schema.HistoryRow, cfg *contract.Config) view {
	fmtValue := createFormatters(cfg.Precision)
	cells := func(empty string) [][]string {
		data := make([][]string, len(rows))
		for i, r := range rows {
			row := []string{r.Day.Format(schema.DayLayout), r.Project}
			for j, v := range r.Values() {
				if v == nil {
					row = append(row, empty)
					continue
				}
				row = append(row, fmtValue(schema.ValueColumns[j], *v))
			}
			data[i] = row
		}
		return data
	}

	return view{
		name:   "history rows",
		json:   rows,
		header: schema.HistoryColumns,
		rows:   cells(""),
		table: func(w io.Writer) error {
			muted := painter(cfg, contract.MutedColor)
			if err := renderTable(w, schema.HistoryColumns, cells(muted(absent))); err != nil {
				return err
			}
			order, totals := schema.HistoryTotals(rows)
			data := make([][]string, 0, len(order))
			for _, project := range order {
				row := []string{project}
				for j, v := range totals[project] {
					row = append(row, fmtValue(schema.ValueColumns[j], v))
				}
				data = append(data, row)
			}
			if _, err := fmt.Fprintln(w, painter(cfg, contract.HeaderColor)("Totals")); err != nil {
				return err
			}
			return renderTable(w, append([]string{"project"}, schema.ValueColumns...), data)
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertHistoryRows(rows))
		},
	}
}
