package core

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/gittest"
	"github.com/worktally/worktally/internal/iocache"
	"github.com/worktally/worktally/schema"
)

func cachedMerger(client *contract.MockGitClient, store *iocache.MockCacheStore) *Merger {
	return &Merger{Client: client, Cache: store, CacheTTL: 24 * time.Hour}
}

func TestRepoTimestamps_NoCache(t *testing.T) {
	client := &contract.MockGitClient{}
	stamps := []time.Time{time.Unix(1700000000, 0)}
	client.On("GetCommitTimestamps", mock.Anything, "/repo").Return(stamps, nil)

	m := &Merger{Client: client}
	got, err := m.repoTimestamps(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, stamps, got)
	client.AssertNotCalled(t, "GetRefState", mock.Anything, mock.Anything)
}

func TestRepoTimestamps_Hit(t *testing.T) {
	client := &contract.MockGitClient{}
	store := &iocache.MockCacheStore{}
	client.On("GetRefState", mock.Anything, "/repo").Return("abc123 HEAD", nil)

	data, err := json.Marshal([]int64{1700000000, 1700003600})
	require.NoError(t, err)
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, time.Now().Unix(), nil)

	got, err := cachedMerger(client, store).repoTimestamps(context.Background(), "/repo")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1700003600), got[1].Unix())
	client.AssertNotCalled(t, "GetCommitTimestamps", mock.Anything, mock.Anything)
}

func TestRepoTimestamps_MissStores(t *testing.T) {
	client := &contract.MockGitClient{}
	store := &iocache.MockCacheStore{}
	client.On("GetRefState", mock.Anything, "/repo").Return("abc123 HEAD", nil)
	client.On("GetCommitTimestamps", mock.Anything, "/repo").Return([]time.Time{time.Unix(1700000000, 0)}, nil)
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("not found"))
	store.On("Set", mock.Anything, []byte("[1700000000]"), currentCacheVersion, mock.Anything).Return(nil)

	got, err := cachedMerger(client, store).repoTimestamps(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	store.AssertExpectations(t)
}

func TestRepoTimestamps_StaleOrOldVersion(t *testing.T) {
	data := []byte("[1700000000]")
	tests := []struct {
		name    string
		version int
		ts      int64
	}{
		{"expired", currentCacheVersion, time.Now().Add(-48 * time.Hour).Unix()},
		{"old version", currentCacheVersion + 1, time.Now().Unix()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &contract.MockGitClient{}
			store := &iocache.MockCacheStore{}
			client.On("GetRefState", mock.Anything, "/repo").Return("abc123 HEAD", nil)
			client.On("GetCommitTimestamps", mock.Anything, "/repo").Return([]time.Time{time.Unix(1, 0)}, nil)
			store.On("Get", mock.Anything).Return(data, tt.version, tt.ts, nil)
			store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

			got, err := cachedMerger(client, store).repoTimestamps(context.Background(), "/repo")
			require.NoError(t, err)
			assert.Equal(t, int64(1), got[0].Unix())
			client.AssertCalled(t, "GetCommitTimestamps", mock.Anything, "/repo")
		})
	}
}

func TestRepoTimestamps_RefsUnresolved(t *testing.T) {
	client := &contract.MockGitClient{}
	store := &iocache.MockCacheStore{}
	client.On("GetRefState", mock.Anything, "/repo").Return("", errors.New("no HEAD"))
	client.On("GetCommitTimestamps", mock.Anything, "/repo").Return(nil, contract.ExtractionFailure("/repo", "bad", errors.New("exit status 128")))

	_, err := cachedMerger(client, store).repoTimestamps(context.Background(), "/repo")
	assert.ErrorIs(t, err, contract.ErrExtraction)
	store.AssertNotCalled(t, "Get", mock.Anything)
}

func TestGenerateCacheKey(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRefState", mock.Anything, "/repo/a").Return("abc", nil)
	client.On("GetRefState", mock.Anything, "/repo/b").Return("abc", nil)
	m := &Merger{Client: client}

	a := m.generateCacheKey(context.Background(), "/repo/a")
	b := m.generateCacheKey(context.Background(), "/repo/b")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, m.generateCacheKey(context.Background(), "/repo/a"))
}

func TestRepoTimestamps_SideBranchCommitInvalidates(t *testing.T) {
	for _, backend := range []schema.GitBackend{schema.ExecGitBackend, schema.GoGitBackend} {
		t.Run(string(backend), func(t *testing.T) {
			repo := gittest.NewRepo(t)
			base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
			repo.Commit("first", base)

			store, err := iocache.NewCacheStore("commit_cache", schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			m := &Merger{Client: NewGitClient(backend), Cache: store, CacheTTL: 24 * time.Hour}
			ctx := context.Background()

			got, err := m.repoTimestamps(ctx, repo.Dir)
			require.NoError(t, err)
			require.Len(t, got, 1)

			// HEAD stays on main while feature moves
			head := repo.Head()
			repo.Branch("feature")
			repo.Commit("second", base.Add(time.Hour))
			repo.Checkout("main")
			require.Equal(t, head, repo.Head())

			got, err = m.repoTimestamps(ctx, repo.Dir)
			require.NoError(t, err)
			assert.Len(t, got, 2)

			status, err := store.GetStatus()
			require.NoError(t, err)
			assert.Equal(t, 2, status.TotalEntries)
		})
	}
}

func TestGenerateCacheKey_RefMoves(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRefState", mock.Anything, "/repo").Return("abc HEAD\nabc refs/heads/main\nabc refs/heads/feature", nil).Once()
	client.On("GetRefState", mock.Anything, "/repo").Return("abc HEAD\nabc refs/heads/main\ndef refs/heads/feature", nil).Once()
	m := &Merger{Client: client}

	before := m.generateCacheKey(context.Background(), "/repo")
	after := m.generateCacheKey(context.Background(), "/repo")
	assert.NotEqual(t, before, after)
}
