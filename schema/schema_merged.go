package schema

import "time"

// MergedRow is one day of a merged table. Values follow the table's Columns.
type MergedRow struct {
	Day    time.Time `json:"day"`
	Values []float64 `json:"values"`
}

// MergedTable is a day-indexed table with one column per source. Rows are
// contiguous over the union span of all sources and zero-filled.
type MergedTable struct {
	Project string      `json:"project"`
	Columns []string    `json:"columns"`
	Rows    []MergedRow `json:"rows"`
}

// Column returns the values of the named column, or nil when absent.
func (t MergedTable) Column(name string) []float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out
}

// Since returns a copy without the rows before day.
func (t MergedTable) Since(day time.Time) MergedTable {
	if day.IsZero() {
		return t
	}
	day = DayOf(day)
	out := MergedTable{Project: t.Project, Columns: t.Columns}
	for _, r := range t.Rows {
		if !r.Day.Before(day) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// HistoryRows flattens the table into long rows tagged with its project.
func (t MergedTable) HistoryRows() []HistoryRow {
	rows := make([]HistoryRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		h := HistoryRow{Day: r.Day, Project: t.Project}
		for i, c := range t.Columns {
			h.Set(c, r.Values[i])
		}
		rows = append(rows, h)
	}
	return rows
}

// HistoryRow is one row of the all-projects long table. Only the columns
// the producing source filled are non-nil.
type HistoryRow struct {
	Day          time.Time `json:"date"`
	Project      string    `json:"project"`
	GitCommits   *float64  `json:"git_commits"`
	GitHours     *float64  `json:"git_hours"`
	GitDays      *float64  `json:"git_days"`
	PomoMinutes  *float64  `json:"pomo_minutes"`
	TrackerHours *float64  `json:"tracker_hours"`
	WebHours     *float64  `json:"web_hours"`
}

// Set assigns the named column. Unknown names are ignored.
func (h *HistoryRow) Set(column string, v float64) {
	switch column {
	case ColGitCommits:
		h.GitCommits = Float(v)
	case ColGitHours:
		h.GitHours = Float(v)
	case ColGitDays:
		h.GitDays = Float(v)
	case ColPomoMinutes:
		h.PomoMinutes = Float(v)
	case ColTrackerHours:
		h.TrackerHours = Float(v)
	case ColWebHours:
		h.WebHours = Float(v)
	}
}

// Values returns the numeric columns in HistoryColumns order.
func (h HistoryRow) Values() []*float64 {
	return []*float64{h.GitCommits, h.GitHours, h.GitDays, h.PomoMinutes, h.TrackerHours, h.WebHours}
}

// FilterHistorySince drops rows before day. A zero day keeps everything.
func FilterHistorySince(rows []HistoryRow, day time.Time) []HistoryRow {
	if day.IsZero() {
		return rows
	}
	day = DayOf(day)
	var out []HistoryRow
	for _, r := range rows {
		if !r.Day.Before(day) {
			out = append(out, r)
		}
	}
	return out
}
