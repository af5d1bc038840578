//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestWorktallyWithMySQL tests the worktally CLI with a MySQL backend.
func TestWorktallyWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "worktally",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/worktally?parseTime=true", host, port.Port())
	runStoreScenario(t, "mysql", connStr)
}

// TestWorktallyWithPostgres tests the worktally CLI with a PostgreSQL backend.
func TestWorktallyWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runStoreScenario(t, "postgresql", connStr)
}

// runStoreScenario exercises the cache and history stores through the CLI.
// Cache and history share one database; their tables do not overlap.
func runStoreScenario(t *testing.T, backend, connStr string) {
	t.Setenv("WORKTALLY_CACHE_BACKEND", backend)
	t.Setenv("WORKTALLY_CACHE_DB_CONNECT", connStr)
	t.Setenv("WORKTALLY_HISTORY_BACKEND", backend)
	t.Setenv("WORKTALLY_HISTORY_DB_CONNECT", connStr)
	t.Setenv("WORKTALLY_COLOR", "no")
	t.Setenv("WORKTALLY_TIMEZONE", "UTC")

	repo, projects := newWorkspace(t)
	dir := repo.Dir

	_, err := runWorktally(t, dir, "cache", "clear")
	require.NoError(t, err)

	_, err = runWorktally(t, dir, "history", "clear")
	require.NoError(t, err)

	out, err := runWorktally(t, dir, "merges")
	require.NoError(t, err)
	assert.Contains(t, out, "Merge branch 'feature'")

	// First call fills the cache, the second one reads it back.
	for range 2 {
		out, err = runWorktally(t, dir, "daily", "demo", "--projects-file", projects, "--output", "csv")
		require.NoError(t, err)
		assert.Contains(t, out, "2024-03-04")
	}

	_, err = runWorktally(t, dir, "merged", "demo", "--projects-file", projects)
	require.NoError(t, err)

	out, err = runWorktally(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Entries: 1")

	out, err = runWorktally(t, dir, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")

	exportBase := filepath.Join(t.TempDir(), "worktally-data")
	_, err = runWorktally(t, dir, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".merge_runs.parquet")
	assert.FileExists(t, exportBase+".history_rows.parquet")
}
