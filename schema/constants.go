package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// CommitKind tags an extracted commit record.
	CommitKind string

	// GitBackend selects how commit history is read.
	GitBackend string

	// SourceName identifies one work-time signal in a merge.
	SourceName string
)

// FillPolicy decides what a day without observations becomes when a
// series is reindexed to a contiguous range.
type FillPolicy int

// Fill policies.
const (
	FillAbsent FillPolicy = iota // gap days stay absent
	FillZero                     // gap days become 0.0
)

// String returns the policy name.
func (p FillPolicy) String() string {
	if p == FillZero {
		return "zero"
	}
	return "absent"
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Commit kinds.
const (
	InitCommit  CommitKind = "init"
	MergeCommit CommitKind = "merge"
	PlainCommit CommitKind = "commit"
)

// ElapsedNotApplicable is the elapsed text of the first record.
const ElapsedNotApplicable = "N/A"

// Git backends.
const (
	ExecGitBackend GitBackend = "exec" // default
	GoGitBackend   GitBackend = "go-git"
)

// Sources feeding a merge. The label is what appears in warnings.
const (
	GitSource        SourceName = "Git"
	PomodoroSource   SourceName = "Pomodoro"
	TrackerSource    SourceName = "Tracker"
	WebTrackerSource SourceName = "WebTracker"
)

// Column names of daily series and merged tables.
const (
	ColDate         = "date"
	ColProject      = "project"
	ColGitCommits   = "git_commits"
	ColGitHours     = "git_hours"
	ColGitDays      = "git_days"
	ColPomoMinutes  = "pomo_minutes"
	ColTrackerHours = "tracker_hours"
	ColWebHours     = "web_hours"
)

// HistoryColumns is the fixed column order of the all-projects table.
var HistoryColumns = []string{
	ColDate,
	ColProject,
	ColGitCommits,
	ColGitHours,
	ColGitDays,
	ColPomoMinutes,
	ColTrackerHours,
	ColWebHours,
}

// ValueColumns are the numeric columns of HistoryColumns, in order.
var ValueColumns = HistoryColumns[2:]

// DayLayout is the calendar day representation used everywhere.
const DayLayout = "2006-01-02"

// GitDateLayout matches the author date printed by git's %ai placeholder.
const GitDateLayout = "2006-01-02 15:04:05 -0700"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGitBackends lists all valid git backends.
var ValidGitBackends = map[GitBackend]struct{}{
	ExecGitBackend: {},
	GoGitBackend:   {},
}
