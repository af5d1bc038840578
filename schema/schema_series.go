package schema

import "time"

// DailyPoint is the value of a series on one calendar day.
type DailyPoint struct {
	Day     time.Time `json:"day"`
	Value   float64   `json:"value"`
	Present bool      `json:"present"`
}

// DailySeries maps calendar days to a numeric value. Once reindexed, the
// points cover every day from the first to the last, ascending, with no
// duplicates.
type DailySeries struct {
	Name   string       `json:"name"`
	Points []DailyPoint `json:"points"`
}

// Len returns the number of points.
func (s DailySeries) Len() int {
	return len(s.Points)
}

// Empty reports whether the series has no points at all.
func (s DailySeries) Empty() bool {
	return len(s.Points) == 0
}

// Start returns the first day of the series.
func (s DailySeries) Start() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Day
}

// End returns the last day of the series.
func (s DailySeries) End() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Day
}

// Value returns the value for day and whether it is present.
func (s DailySeries) Value(day time.Time) (float64, bool) {
	day = DayOf(day)
	for _, p := range s.Points {
		if p.Day.Equal(day) {
			return p.Value, p.Present
		}
	}
	return 0, false
}

// Total sums every present value.
func (s DailySeries) Total() float64 {
	var total float64
	for _, p := range s.Points {
		if p.Present {
			total += p.Value
		}
	}
	return total
}

// Since returns a copy without the days before day. A zero day keeps everything.
func (s DailySeries) Since(day time.Time) DailySeries {
	if day.IsZero() {
		return s
	}
	day = DayOf(day)
	out := DailySeries{Name: s.Name}
	for _, p := range s.Points {
		if !p.Day.Before(day) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
