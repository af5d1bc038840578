package schema

import (
	"math"
	"time"
)

// DayOf returns the calendar day of t, read in t's own location, as
// midnight UTC. Two instants on the same local day map to the same key.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a day key.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// NextDay returns the day following d.
func NextDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

// DaysBetween returns every day from start to end inclusive.
// It returns nil when end is before start.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = DayOf(start), DayOf(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = NextDay(d) {
		days = append(days, d)
	}
	return days
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
