package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommitFirstLine(t *testing.T) {
	c := Commit{Message: "Merge branch 'x'\nbody line"}
	assert.Equal(t, "Merge branch 'x'", c.FirstLine())
	assert.Equal(t, "single", Commit{Message: "single"}.FirstLine())
}

func TestCountKind(t *testing.T) {
	records := []CommitRecord{
		{Commit: Commit{Kind: InitCommit}},
		{Commit: Commit{Kind: MergeCommit}},
		{Commit: Commit{Kind: MergeCommit}},
	}
	assert.Equal(t, 2, CountKind(records, MergeCommit))
	assert.Equal(t, 1, CountKind(records, InitCommit))
	assert.Equal(t, 0, CountKind(records, PlainCommit))
}

func TestFillPolicyString(t *testing.T) {
	assert.Equal(t, "absent", FillAbsent.String())
	assert.Equal(t, "zero", FillZero.String())
}

func TestDailySeries(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := DailySeries{Name: ColGitCommits, Points: []DailyPoint{
		{Day: d1, Value: 2, Present: true},
		{Day: NextDay(d1)},
		{Day: d1.AddDate(0, 0, 2), Value: 3, Present: true},
	}}

	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Empty())
	assert.Equal(t, d1, s.Start())
	assert.Equal(t, d1.AddDate(0, 0, 2), s.End())
	assert.Equal(t, 5.0, s.Total())

	v, ok := s.Value(NextDay(d1))
	assert.False(t, ok)
	assert.Zero(t, v)

	since := s.Since(NextDay(d1))
	assert.Equal(t, 2, since.Len())
	assert.Equal(t, s, s.Since(time.Time{}))

	assert.True(t, DailySeries{}.Empty())
	assert.True(t, DailySeries{}.Start().IsZero())
}

func TestMergedTable(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	table := MergedTable{
		Project: "alpha",
		Columns: []string{ColGitCommits, ColPomoMinutes},
		Rows: []MergedRow{
			{Day: d1, Values: []float64{1, 25}},
			{Day: NextDay(d1), Values: []float64{0, 50}},
		},
	}

	assert.Equal(t, []float64{25, 50}, table.Column(ColPomoMinutes))
	assert.Nil(t, table.Column(ColWebHours))
	assert.Equal(t, []float64{1, 75}, table.ColumnTotals())
	assert.Len(t, table.Since(NextDay(d1)).Rows, 1)

	rows := table.HistoryRows()
	assert.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].Project)
	assert.Equal(t, 1.0, *rows[0].GitCommits)
	assert.Equal(t, 25.0, *rows[0].PomoMinutes)
	assert.Nil(t, rows[0].TrackerHours)
}

func TestHistoryTotals(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []HistoryRow{
		{Day: d, Project: "b", GitCommits: Float(2)},
		{Day: d, Project: "a", PomoMinutes: Float(25)},
		{Day: NextDay(d), Project: "b", GitCommits: Float(1), WebHours: Float(1.5)},
	}

	order, totals := HistoryTotals(rows)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, []float64{3, 0, 0, 0, 0, 1.5}, totals["b"])
	assert.Equal(t, 25.0, totals["a"][3])
	assert.Len(t, FilterHistorySince(rows, NextDay(d)), 1)
}
