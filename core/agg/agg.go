// Package agg has the day-level aggregation logic for work-time signals.
package agg

import (
	"maps"
	"slices"
	"time"

	"github.com/worktally/worktally/schema"
)

// Observation is one dated value before aggregation.
type Observation struct {
	Day   time.Time
	Value float64
}

// workdaySeconds is the length of the workday used by the days-equivalent column.
const workdaySeconds = 3600 * 8

// DailyCommits counts commit timestamps per calendar day of loc, reindexes the
// counts between the first and last observed day and drops the days before
// cutoff when it is non-zero.
func DailyCommits(stamps []time.Time, loc *time.Location, cutoff time.Time, policy schema.FillPolicy) schema.DailySeries {
	counts := make(map[time.Time]float64)
	for _, ts := range stamps {
		counts[dayIn(ts, loc)]++
	}
	return Truncate(Reindex(schema.ColGitCommits, counts, policy), cutoff)
}

// WorkHours estimates the hours worked each day as the time between the first
// and the last commit of the day. It returns the hours and the 8-hour
// workday fraction, rounded to 2 and 3 decimals.
func WorkHours(stamps []time.Time, loc *time.Location, policy schema.FillPolicy) (schema.DailySeries, schema.DailySeries) {
	first := make(map[time.Time]time.Time)
	last := make(map[time.Time]time.Time)
	for _, ts := range stamps {
		day := dayIn(ts, loc)
		if f, ok := first[day]; !ok || ts.Before(f) {
			first[day] = ts
		}
		if l, ok := last[day]; !ok || ts.After(l) {
			last[day] = ts
		}
	}

	hours := make(map[time.Time]float64, len(first))
	days := make(map[time.Time]float64, len(first))
	for day, f := range first {
		seconds := last[day].Sub(f).Seconds()
		hours[day] = schema.Round(seconds/3600, 2)
		days[day] = schema.Round(seconds/workdaySeconds, 3)
	}
	return Reindex(schema.ColGitHours, hours, policy), Reindex(schema.ColGitDays, days, policy)
}

// SumByDay sums observations per day and reindexes the result.
func SumByDay(name string, observations []Observation, policy schema.FillPolicy) schema.DailySeries {
	sums := make(map[time.Time]float64)
	for _, o := range observations {
		sums[schema.DayOf(o.Day)] += o.Value
	}
	return Reindex(name, sums, policy)
}

// Reindex expands day values to every calendar day between the first and last
// key. Gap days follow policy. An empty map yields an empty series.
func Reindex(name string, values map[time.Time]float64, policy schema.FillPolicy) schema.DailySeries {
	series := schema.DailySeries{Name: name}
	if len(values) == 0 {
		return series
	}
	keys := slices.SortedFunc(maps.Keys(values), func(a, b time.Time) int { return a.Compare(b) })
	for _, day := range schema.DaysBetween(keys[0], keys[len(keys)-1]) {
		v, ok := values[day]
		switch {
		case ok:
			series.Points = append(series.Points, schema.DailyPoint{Day: day, Value: v, Present: true})
		case policy == schema.FillZero:
			series.Points = append(series.Points, schema.DailyPoint{Day: day, Present: true})
		default:
			series.Points = append(series.Points, schema.DailyPoint{Day: day})
		}
	}
	return series
}

// Truncate drops the days before cutoff. A zero cutoff keeps everything.
func Truncate(s schema.DailySeries, cutoff time.Time) schema.DailySeries {
	return s.Since(cutoff)
}

// Merge outer-joins series on the day axis. Columns follow the argument order,
// rows cover every day of the union span and missing values become 0.0.
func Merge(project string, series ...schema.DailySeries) schema.MergedTable {
	table := schema.MergedTable{Project: project}
	var start, end time.Time
	for _, s := range series {
		table.Columns = append(table.Columns, s.Name)
		if s.Empty() {
			continue
		}
		if start.IsZero() || s.Start().Before(start) {
			start = s.Start()
		}
		if end.IsZero() || s.End().After(end) {
			end = s.End()
		}
	}
	if start.IsZero() {
		return table
	}

	lookup := make([]map[time.Time]float64, len(series))
	for i, s := range series {
		lookup[i] = make(map[time.Time]float64, s.Len())
		for _, p := range s.Points {
			if p.Present {
				lookup[i][p.Day] = p.Value
			}
		}
	}
	for _, day := range schema.DaysBetween(start, end) {
		row := schema.MergedRow{Day: day, Values: make([]float64, len(series))}
		for i := range series {
			row.Values[i] = lookup[i][day]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// dayIn returns the calendar day of ts in loc. A nil loc means time.Local.
func dayIn(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return schema.DayOf(ts.In(loc))
}
