package schema

import "time"

// MergeRunRecord represents a row from the merge runs table.
type MergeRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Scope         string // project name, or "all"
	TotalRows     int32
	ConfigParams  *string
}

// HistoryRowRecord represents a row from the history rows table.
type HistoryRowRecord struct {
	RunID int64
	HistoryRow
}

// ScopeAll is the scope of an all-projects merge run.
const ScopeAll = "all"
