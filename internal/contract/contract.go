// Package contract provides interfaces and shared utilities for worktally's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/worktally/worktally/schema"
)

// GitClient defines the Git operations needed to extract commit history.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRefState describes HEAD and every ref with the commit it points to,
	// one "<hash> <ref>" line each, sorted. It changes whenever any ref moves.
	GetRefState(ctx context.Context, repoPath string) (string, error)

	// --- Commit history ---

	// GetCommitLog returns merge commits, or every commit when mergesOnly is false,
	// ordered from oldest to newest.
	GetCommitLog(ctx context.Context, repoPath string, mergesOnly bool) ([]schema.Commit, error)

	// GetInitialCommit returns the oldest root commit, or nil for an empty repository.
	GetInitialCommit(ctx context.Context, repoPath string) (*schema.Commit, error)

	// GetCommitTimestamps returns the commit time of every commit reachable from any ref.
	GetCommitTimestamps(ctx context.Context, repoPath string) ([]time.Time, error)
}

// CacheManager defines the interface for managing stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking merge runs and the rows they produced.
type HistoryStore interface {
	// BeginRun creates a new merge run and returns its unique ID
	BeginRun(startTime time.Time, scope string, configParams map[string]any) (int64, error)

	// RecordRows stores the rows produced by a run
	RecordRows(runID int64, rows []schema.HistoryRow) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.MergeRunRecord, error)

	// GetAllRows returns every recorded row
	GetAllRows() ([]schema.HistoryRowRecord, error)

	// Close closes the underlying connection
	Close() error
}
