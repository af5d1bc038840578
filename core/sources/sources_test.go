package sources

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

func day(s string) time.Time {
	d, err := schema.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testProjects() contract.Projects {
	return contract.NewProjects(map[string]schema.ProjectConfig{
		"calipso": {PomodoroProject: "calipso", TrackerProjects: []string{"Calipso", "Calipso web"}},
		"perso":   {PomodoroProject: "perso"},
		"silent":  {},
	})
}

func TestLoadPomodoro(t *testing.T) {
	entries, err := LoadPomodoro("testdata/pomodoro.csv", nil)
	require.NoError(t, err)
	require.Len(t, entries, 6)

	assert.Equal(t, day("2024-01-02"), entries[0].Day)
	assert.Equal(t, "calipso backend", entries[0].Project)
	assert.Equal(t, "calipso", entries[0].MainProject)
	assert.Equal(t, 25.0, entries[0].Minutes)
	assert.Equal(t, map[string]string{"task": "API"}, entries[0].Extra)

	assert.Zero(t, entries[3].Minutes, "missing minutes count as zero")
	assert.Empty(t, entries[4].MainProject, "empty project has an empty label")
	assert.Equal(t, day("2024-01-05"), entries[5].Day)
}

func TestLoadPomodoro_Errors(t *testing.T) {
	_, err := LoadPomodoro("testdata/missing.csv", nil)
	assert.ErrorIs(t, err, contract.ErrSourceUnreadable)

	tests := map[string]string{
		"empty":         "",
		"no minutes":    "date,project\n2024-01-01,a\n",
		"project first": "project,minutes\na,25\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPomodoro(strings.NewReader(content), nil)
			assert.Error(t, err)
		})
	}
}

func TestReadPomodoro_SkipsMalformedRows(t *testing.T) {
	content := strings.Join([]string{
		"date,project,minutes",
		"2024-01-01,calipso x,25",
		"yesterday,calipso,25",
		"2024-01-02,gnome y,abc",
		`2024-01-02,gno"me,10`,
		"2024-01-03,calipso,15",
		"",
	}, "\n")

	var skipped []error
	entries, err := ReadPomodoro(strings.NewReader(content), func(err error) { skipped = append(skipped, err) })
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, day("2024-01-01"), entries[0].Day)
	assert.Equal(t, day("2024-01-03"), entries[1].Day)

	require.Len(t, skipped, 3)
	assert.Contains(t, skipped[0].Error(), "line 3")
	assert.Contains(t, skipped[0].Error(), `invalid date "yesterday"`)
	assert.Contains(t, skipped[1].Error(), "line 4")
	assert.Contains(t, skipped[1].Error(), `invalid minutes "abc"`)
	assert.ErrorIs(t, skipped[2], csv.ErrBareQuote)
}

func TestLoadPomodoro_SkippedRowsNameTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomodoro.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,project,minutes\n2024-01-01,a,lots\n2024-01-02,a,5\n"), 0o644))

	var skipped []error
	entries, err := LoadPomodoro(path, func(err error) { skipped = append(skipped, err) })
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], contract.ErrSourceUnreadable)
	assert.Contains(t, skipped[0].Error(), path)
}

func TestMainProject(t *testing.T) {
	assert.Equal(t, "calipso", MainProject("calipso backend"))
	assert.Equal(t, "calipso", MainProject("  calipso  "))
	assert.Equal(t, "", MainProject(""))
	assert.Equal(t, "", MainProject("0"))
}

func TestPomodoroMinutes(t *testing.T) {
	entries, err := LoadPomodoro("testdata/pomodoro.csv", nil)
	require.NoError(t, err)
	projects := testProjects()

	series, err := PomodoroMinutes(projects, "calipso", entries, schema.FillZero)
	require.NoError(t, err)
	assert.Equal(t, schema.ColPomoMinutes, series.Name)
	require.Equal(t, 4, series.Len(), "01-02 to 01-05")

	v, _ := series.Value(day("2024-01-02"))
	assert.Equal(t, 75.0, v)
	v, ok := series.Value(day("2024-01-03"))
	assert.True(t, ok, "gap days are zero-filled")
	assert.Zero(t, v)
	v, _ = series.Value(day("2024-01-05"))
	assert.Equal(t, 30.0, v)

	silent, err := PomodoroMinutes(projects, "silent", entries, schema.FillZero)
	require.NoError(t, err)
	assert.True(t, silent.Empty())

	_, err = PomodoroMinutes(projects, "ghost", entries, schema.FillZero)
	assert.ErrorIs(t, err, contract.ErrUnknownProject)
}

func TestLoadTracker(t *testing.T) {
	entries, err := LoadTracker("testdata/tracker.json", time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	first := entries[0]
	assert.Equal(t, "p1", first.ProjectID)
	assert.Equal(t, "Calipso", first.Project)
	assert.Equal(t, day("2024-01-02"), first.Day)
	assert.Equal(t, "2024-01-02 09:00:00", first.Start)
	assert.Equal(t, "2024-01-02 12:15:00", first.Stop)
	require.NotNil(t, first.Hours)
	assert.Equal(t, 3.25, *first.Hours)

	missingEnd := entries[1]
	assert.Equal(t, day("2024-01-05"), missingEnd.Day)
	assert.Equal(t, schema.TrackerUndefined, missingEnd.Stop)
	assert.Nil(t, missingEnd.Hours)

	assert.Equal(t, "p2", entries[2].ProjectID)
	assert.Equal(t, day("2024-01-02"), entries[2].Day, "dates are sorted")

	untitled := entries[4]
	assert.Equal(t, "unknown", untitled.Project)
	assert.Equal(t, schema.TrackerUndefined, untitled.Start)
	assert.Nil(t, untitled.Hours)
}

func TestLoadTracker_Errors(t *testing.T) {
	_, err := LoadTracker("testdata/missing.json", time.UTC, nil)
	assert.ErrorIs(t, err, contract.ErrSourceUnreadable)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"project": [`), 0o644))
	_, err = LoadTracker(bad, time.UTC, nil)
	assert.ErrorIs(t, err, contract.ErrSourceUnreadable)

	_, err = ParseTracker([]byte(`{"task": {}}`), time.UTC, nil)
	assert.Error(t, err)
}

func TestParseTracker_SkipsMalformedDates(t *testing.T) {
	data := []byte(`{"project": {"entities": {
		"a": {"title": "A", "workStart": {"02/01/2024": 1, "2024-01-03": 1704272400000}, "workEnd": {"2024-01-03": 1704279600000}},
		"b": {"title": "B", "workStart": {"someday": 1}}
	}}}`)

	var skipped []error
	entries, err := ParseTracker(data, time.UTC, func(err error) { skipped = append(skipped, err) })
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].Project)
	assert.Equal(t, day("2024-01-03"), entries[0].Day)
	require.NotNil(t, entries[0].Hours)
	assert.Equal(t, 2.0, *entries[0].Hours)

	require.Len(t, skipped, 2)
	assert.Contains(t, skipped[0].Error(), `invalid date "02/01/2024" in project a`)
	assert.Contains(t, skipped[1].Error(), `invalid date "someday" in project b`)
}

func TestParseTracker_ZeroTimestampIsUnset(t *testing.T) {
	data := []byte(`{"project": {"entities": {
		"a": {"title": "A", "workStart": {"2024-01-03": 0}, "workEnd": {"2024-01-03": 1704279600000}}
	}}}`)

	entries, err := ParseTracker(data, time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, schema.TrackerUndefined, entries[0].Start)
	assert.Equal(t, "2024-01-03 11:00:00", entries[0].Stop)
	assert.Nil(t, entries[0].Hours)
}

func TestTrackerHours(t *testing.T) {
	entries, err := LoadTracker("testdata/tracker.json", time.UTC, nil)
	require.NoError(t, err)
	projects := testProjects()

	series, err := TrackerHours(projects, "calipso", entries, schema.FillZero)
	require.NoError(t, err)
	assert.Equal(t, schema.ColTrackerHours, series.Name)
	require.Equal(t, 4, series.Len(), "01-02 to 01-05")

	v, _ := series.Value(day("2024-01-02"))
	assert.Equal(t, 4.25, v, "sub-projects are rolled up")
	v, _ = series.Value(day("2024-01-03"))
	assert.Equal(t, 1.5, v)
	v, ok := series.Value(day("2024-01-05"))
	assert.True(t, ok)
	assert.Zero(t, v)

	byID := contract.NewProjects(map[string]schema.ProjectConfig{"x": {TrackerProjects: []string{"p3"}}})
	s, err := TrackerHours(byID, "x", entries, schema.FillZero)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = TrackerHours(projects, "ghost", entries, schema.FillZero)
	assert.ErrorIs(t, err, contract.ErrUnknownProject)
}
