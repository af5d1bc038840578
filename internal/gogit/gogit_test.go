package gogit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/gittest"
	"github.com/worktally/worktally/schema"
)

func buildRepo(t *testing.T) *gittest.Repo {
	t.Helper()
	repo := gittest.NewRepo(t)
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	repo.Commit("init", base)
	repo.Branch("feature")
	repo.Commit("feature work", base.Add(time.Hour))
	repo.Checkout("main")
	repo.Commit("main work", base.Add(2*time.Hour))
	repo.Merge("feature", "Merge feature\n\nbody text", base.Add(3*time.Hour))
	repo.Branch("other")
	repo.Commit("other work", base.Add(4*time.Hour))
	repo.Checkout("main")
	repo.Merge("other", "Merge other", base.Add(5*time.Hour))
	return repo
}

// TestClientMatchesGitBinary checks both backends extract the same records.
func TestClientMatchesGitBinary(t *testing.T) {
	repo := buildRepo(t)
	ctx := context.Background()
	local := contract.NewLocalGitClient()
	client := NewClient()

	for _, mergesOnly := range []bool{true, false} {
		want, err := local.GetCommitLog(ctx, repo.Dir, mergesOnly)
		require.NoError(t, err)
		got, err := client.GetCommitLog(ctx, repo.Dir, mergesOnly)
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Hash, got[i].Hash)
			assert.Equal(t, want[i].Message, got[i].Message)
			assert.Equal(t, want[i].Date, got[i].Date)
			assert.Equal(t, want[i].Kind, got[i].Kind)
			assert.True(t, want[i].Time.Equal(got[i].Time))
		}
	}

	wantRoot, err := local.GetInitialCommit(ctx, repo.Dir)
	require.NoError(t, err)
	gotRoot, err := client.GetInitialCommit(ctx, repo.Dir)
	require.NoError(t, err)
	require.NotNil(t, gotRoot)
	assert.Equal(t, wantRoot.Hash, gotRoot.Hash)
	assert.Equal(t, schema.InitCommit, gotRoot.Kind)

	wantStamps, err := local.GetCommitTimestamps(ctx, repo.Dir)
	require.NoError(t, err)
	gotStamps, err := client.GetCommitTimestamps(ctx, repo.Dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, wantStamps, gotStamps)

	head, err := client.GetRepoHash(ctx, repo.Dir)
	require.NoError(t, err)
	assert.Equal(t, repo.Head(), head)

	wantState, err := local.GetRefState(ctx, repo.Dir)
	require.NoError(t, err)
	gotState, err := client.GetRefState(ctx, repo.Dir)
	require.NoError(t, err)
	assert.Equal(t, wantState, gotState)
	assert.Contains(t, gotState, head+" refs/heads/main")
}

func TestClientErrors(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	_, err := client.GetCommitLog(ctx, t.TempDir(), true)
	assert.ErrorIs(t, err, contract.ErrExtraction)

	_, err = client.Run(ctx, ".", "status")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, err, contract.ErrExtraction)
}

func TestClientDotGitPath(t *testing.T) {
	repo := buildRepo(t)
	commits, err := NewClient().GetCommitLog(context.Background(), repo.Dir+"/.git", true)
	require.NoError(t, err)
	assert.Len(t, commits, 2)
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		message, subject, body string
	}{
		{"subject\n", "subject", ""},
		{"subject\n\nbody\nmore\n", "subject", "body\nmore"},
		{"wrapped\nsubject\n\nbody", "wrapped subject", "body"},
		{"", "", ""},
	}
	for _, tt := range tests {
		subject, body := splitMessage(tt.message)
		assert.Equal(t, tt.subject, subject)
		assert.Equal(t, tt.body, body)
	}
}
