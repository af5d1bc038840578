package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/gittest"
	"github.com/worktally/worktally/schema"
)

// TestMockGitClient_Run ensures the mock records and returns programmed values.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedErr := errors.New("mocked git error")

	mockClient.
		On("Run", ctx, "/path/to/repo", "log", "-1").
		Return([]byte("a1b2c3d"), expectedErr).
		Once()

	out, err := mockClient.Run(ctx, "/path/to/repo", "log", "-1")
	assert.Equal(t, []byte("a1b2c3d"), out)
	assert.Equal(t, expectedErr, err)
	mockClient.AssertExpectations(t)
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client)
	assert.IsType(t, &LocalGitClient{}, client)
}

func TestLocalGitClient_RunErrors(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()

	t.Run("invalid repo path", func(t *testing.T) {
		_, err := client.Run(ctx, "/nonexistent/path", "status")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExtraction)

		var tagged *Error
		require.ErrorAs(t, err, &tagged)
		assert.Equal(t, KindExtraction, tagged.Kind)
		assert.NotEmpty(t, tagged.Stderr, "stderr of the failed command should be kept")
	})

	t.Run("invalid git command", func(t *testing.T) {
		repo := gittest.NewRepo(t)
		_, err := client.Run(ctx, repo.Dir, "invalid-command")
		assert.ErrorIs(t, err, ErrExtraction)
	})
}

func TestLocalGitClient_History(t *testing.T) {
	repo := gittest.NewRepo(t)
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	initHash := repo.Commit("init", base)
	repo.Branch("feature")
	repo.Commit("feature work", base.Add(time.Hour))
	repo.Checkout("main")
	repo.Commit("main work", base.Add(2*time.Hour))
	mergeHash := repo.Merge("feature", "Merge feature\n\nLong body\nwith | pipes", base.Add(3*time.Hour))

	client := NewLocalGitClient()
	ctx := context.Background()

	merges, err := client.GetCommitLog(ctx, repo.Dir, true)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, mergeHash, merges[0].Hash)
	assert.Equal(t, schema.MergeCommit, merges[0].Kind)
	assert.Equal(t, "Merge feature\nLong body\nwith | pipes", merges[0].Message)
	assert.True(t, merges[0].Time.Equal(base.Add(3*time.Hour)))

	all, err := client.GetCommitLog(ctx, repo.Dir, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, initHash, all[0].Hash, "oldest commit comes first")

	root, err := client.GetInitialCommit(ctx, repo.Dir)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, initHash, root.Hash)
	assert.Equal(t, schema.InitCommit, root.Kind)

	stamps, err := client.GetCommitTimestamps(ctx, repo.Dir)
	require.NoError(t, err)
	assert.Len(t, stamps, 4)

	head, err := client.GetRepoHash(ctx, repo.Dir)
	require.NoError(t, err)
	assert.Equal(t, mergeHash, head)
}
