package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// Table names for merge history.
const (
	mergeRunsTable   = "worktally_merge_runs"
	historyRowsTable = "worktally_history_rows"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{mergeRunsTable, historyRowsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		mergeRunsTable:   getCreateMergeRunsQuery(backend),
		historyRowsTable: getCreateHistoryRowsQuery(backend),
	}
	for _, table := range historyTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateMergeRunsQuery returns the CREATE TABLE query for worktally_merge_runs.
func getCreateMergeRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(mergeRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				scope VARCHAR(255) NOT NULL,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				scope TEXT NOT NULL,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				scope TEXT NOT NULL,
				total_rows INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateHistoryRowsQuery returns the CREATE TABLE query for worktally_history_rows.
// Days are stored as YYYY-MM-DD text so no backend shifts them across zones.
func getCreateHistoryRowsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(historyRowsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day CHAR(10) NOT NULL,
				project VARCHAR(255) NOT NULL,
				git_commits DOUBLE,
				git_hours DOUBLE,
				git_days DOUBLE,
				pomo_minutes DOUBLE,
				tracker_hours DOUBLE,
				web_hours DOUBLE,
				PRIMARY KEY (run_id, project, day)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day CHAR(10) NOT NULL,
				project TEXT NOT NULL,
				git_commits DOUBLE PRECISION,
				git_hours DOUBLE PRECISION,
				git_days DOUBLE PRECISION,
				pomo_minutes DOUBLE PRECISION,
				tracker_hours DOUBLE PRECISION,
				web_hours DOUBLE PRECISION,
				PRIMARY KEY (run_id, project, day)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				day TEXT NOT NULL,
				project TEXT NOT NULL,
				git_commits REAL,
				git_hours REAL,
				git_days REAL,
				pomo_minutes REAL,
				tracker_hours REAL,
				web_hours REAL,
				PRIMARY KEY (run_id, project, day)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new merge run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, scope string, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(mergeRunsTable, hs.backend)
	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, scope, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, startTime, scope, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, scope, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), scope, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert merge run: %w", err)
	}
	return runID, nil
}

// RecordRows stores the rows produced by a run in a single transaction.
func (hs *HistoryStoreImpl) RecordRows(runID int64, rows []schema.HistoryRow) error {
	if hs.db == nil || len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, day, project, git_commits, git_hours, git_days,
		pomo_minutes, tracker_hours, web_hours) VALUES (%s)`,
		quoteTableName(historyRowsTable, hs.backend), placeholders(hs.backend, 1, 9))

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		args := []any{runID, r.Day.Format(schema.DayLayout), r.Project}
		for _, v := range r.Values() {
			args = append(args, nullFloat(v))
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert history row %s/%s: %w", r.Project, r.Day.Format(schema.DayLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history rows: %w", err)
	}
	return nil
}

// EndRun updates the merge run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	if hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(mergeRunsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(hs.backend, 1, 1))
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	var update string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		update = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_rows = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		update = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE run_id = ?`, quotedTableName)
	}
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update merge run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(mergeRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		var startRaw any
		if err := row.Scan(&status.LastRunID, &startRaw); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		last, err := hs.toTime(startRaw)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = last

		oldest, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRows = int(status.TableSizes[historyRowsTable])

	return status, nil
}

// GetAllRuns retrieves every merge run ordered by id.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.MergeRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, scope, total_rows, config_params FROM %s ORDER BY run_id",
		quoteTableName(mergeRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query merge runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MergeRunRecord
	for rows.Next() {
		var record schema.MergeRunRecord
		var startRaw, endRaw any
		if err := rows.Scan(&record.RunID, &startRaw, &endRaw, &record.RunDurationMs, &record.Scope, &record.TotalRows, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan merge run: %w", err)
		}
		if record.StartTime, err = hs.toTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endRaw != nil {
			end, err := hs.toTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &end
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merge runs: %w", err)
	}
	return results, nil
}

// GetAllRows retrieves every recorded history row ordered by run, project and day.
func (hs *HistoryStoreImpl) GetAllRows() ([]schema.HistoryRowRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, day, project, git_commits, git_hours, git_days,
		pomo_minutes, tracker_hours, web_hours FROM %s ORDER BY run_id, project, day`,
		quoteTableName(historyRowsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryRowRecord
	for rows.Next() {
		var record schema.HistoryRowRecord
		var day string
		values := make([]sql.NullFloat64, len(schema.ValueColumns))
		if err := rows.Scan(&record.RunID, &day, &record.Project,
			&values[0], &values[1], &values[2], &values[3], &values[4], &values[5]); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if record.Day, err = schema.ParseDay(day); err != nil {
			return nil, fmt.Errorf("failed to parse day: %w", err)
		}
		for i, col := range schema.ValueColumns {
			if values[i].Valid {
				record.Set(col, values[i].Float64)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var raw any
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return hs.toTime(raw)
}

// toTime converts a scanned timestamp. SQLite stores RFC 3339 text, the
// others return native times.
func (hs *HistoryStoreImpl) toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", raw)
	}
}

// nullFloat maps a nil pointer to SQL NULL.
func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
