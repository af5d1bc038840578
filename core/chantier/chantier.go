// Package chantier reads construction-site time-tracking workbooks and
// summarizes the days spent per project.
package chantier

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/worktally/worktally/core/agg"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
	"github.com/xuri/excelize/v2"
)

// Workbook column names.
const (
	ColProject    = "PROJET"
	ColSubProject = "SS-PROJET"
	ColDate       = "DATE"
	ColDays       = "JOURS"
)

// dateLayouts are the textual DATE formats accepted besides spreadsheet serials.
var dateLayouts = []string{
	schema.DayLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/06",
}

// sheet is the raw text grid of one worksheet.
type sheet struct {
	name string
	rows [][]string
}

// LoadWorkbook reads every sheet but the first of an .xlsx or .ods workbook.
func LoadWorkbook(path string) ([]schema.ChantierEntry, error) {
	var (
		sheets []sheet
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ods":
		sheets, err = readODS(path)
	case ".xlsx", ".xlsm":
		sheets, err = readXLSX(path)
	default:
		err = fmt.Errorf("unsupported workbook format %q. must be .xlsx or .ods", filepath.Ext(path))
	}
	if err != nil {
		return nil, contract.SourceUnreadable(path, err)
	}
	if len(sheets) < 2 {
		return nil, contract.SourceUnreadable(path, fmt.Errorf("workbook has no data sheet after the first one"))
	}

	var entries []schema.ChantierEntry
	for _, s := range sheets[1:] {
		sheetEntries, err := parseSheet(s)
		if err != nil {
			return nil, contract.SourceUnreadable(path, err)
		}
		entries = append(entries, sheetEntries...)
	}
	return entries, nil
}

// readXLSX returns the sheets of an Office Open XML workbook in tab order.
func readXLSX(path string) ([]sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return sheets, nil
}

// parseSheet converts a grid into entries. The first non-empty row is the
// header. Rows without a project are skipped.
func parseSheet(s sheet) ([]schema.ChantierEntry, error) {
	headerIdx := slices.IndexFunc(s.rows, func(row []string) bool { return len(trimTrailingEmpty(row)) > 0 })
	if headerIdx < 0 {
		return nil, nil
	}
	cols := make(map[string]int)
	for i, name := range s.rows[headerIdx] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColProject, ColSubProject, ColDate, ColDays} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sheet %s: missing column %s", s.name, required)
		}
	}

	var entries []schema.ChantierEntry
	for i, row := range s.rows[headerIdx+1:] {
		line := headerIdx + i + 2
		project := cell(row, cols[ColProject])
		if project == "" {
			continue
		}
		date, err := parseDate(cell(row, cols[ColDate]))
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", s.name, line, err)
		}
		var days float64
		if raw := cell(row, cols[ColDays]); raw != "" {
			days, err = strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d: invalid %s %q", s.name, line, ColDays, raw)
			}
		}
		entries = append(entries, schema.ChantierEntry{
			Sheet:      s.name,
			Project:    project,
			SubProject: cell(row, cols[ColSubProject]),
			Date:       date,
			Days:       days,
		})
	}
	return entries, nil
}

// parseDate accepts spreadsheet serial numbers and the textual dateLayouts.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing %s", ColDate)
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s %q: %w", ColDate, raw, err)
		}
		return schema.DayOf(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return schema.DayOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", ColDate, raw)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Report sums the days per project and sub-project, sorted by both.
func Report(entries []schema.ChantierEntry) []schema.ChantierTotal {
	type key struct{ project, sub string }
	sums := make(map[key]float64)
	for _, e := range entries {
		sums[key{e.Project, e.SubProject}] += e.Days
	}
	totals := make([]schema.ChantierTotal, 0, len(sums))
	for k, days := range sums {
		totals = append(totals, schema.ChantierTotal{Project: k.project, SubProject: k.sub, Days: days})
	}
	slices.SortFunc(totals, func(a, b schema.ChantierTotal) int {
		return cmp.Or(cmp.Compare(a.Project, b.Project), cmp.Compare(a.SubProject, b.SubProject))
	})
	return totals
}

// DailyByProject sums the days per date for each project, in order of first
// appearance. Series are named after their project.
func DailyByProject(entries []schema.ChantierEntry) []schema.DailySeries {
	var order []string
	byProject := make(map[string][]agg.Observation)
	for _, e := range entries {
		if _, ok := byProject[e.Project]; !ok {
			order = append(order, e.Project)
		}
		byProject[e.Project] = append(byProject[e.Project], agg.Observation{Day: e.Date, Value: e.Days})
	}
	series := make([]schema.DailySeries, 0, len(order))
	for _, project := range order {
		series = append(series, agg.SumByDay(project, byProject[project], schema.FillAbsent))
	}
	return series
}
