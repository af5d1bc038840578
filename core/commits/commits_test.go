package commits

import (
	"context"
	_ "embed"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/gittest"
	"github.com/worktally/worktally/schema"
)

//go:embed testdata/git_log_merges.txt
var gitLogMergesFixture []byte

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "zero seconds"},
		{"sub-second", 400 * time.Millisecond, "zero seconds"},
		{"one second", time.Second, "1 second"},
		{"seconds", 45 * time.Second, "45 seconds"},
		{"seconds dropped once minutes present", 90 * time.Second, "1 minute"},
		{"hour and minute", 3661 * time.Second, "1 hour, 1 minute"},
		{"days hours minutes", 2*24*time.Hour + 3*time.Hour + 45*time.Minute, "2 days, 3 hours, 45 minutes"},
		{"exact day", 24 * time.Hour, "1 day"},
		{"day and minutes", 24*time.Hour + 2*time.Minute + 5*time.Second, "1 day, 2 minutes"},
		{"negative", -90 * time.Second, "-1 minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}

func TestWithElapsed(t *testing.T) {
	commits, err := contract.ParseCommitLog(gitLogMergesFixture, schema.MergeCommit)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	records := WithElapsed(commits)
	require.Len(t, records, 3)

	assert.Nil(t, records[0].Elapsed)
	assert.Equal(t, schema.ElapsedNotApplicable, records[0].ElapsedText)

	require.NotNil(t, records[1].Elapsed)
	assert.Equal(t, 26*time.Hour+30*time.Minute, *records[1].Elapsed)
	assert.Equal(t, "1 day, 2 hours, 30 minutes", records[1].ElapsedText)
	assert.Equal(t, "45 seconds", records[2].ElapsedText)

	assert.Empty(t, WithElapsed(nil))
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	root := &schema.Commit{Hash: "root", Time: base, Kind: schema.InitCommit, Message: "init"}
	merges := []schema.Commit{
		{Hash: "m1", Time: base.Add(time.Hour), Kind: schema.MergeCommit},
		{Hash: "m2", Time: base.Add(3 * time.Hour), Kind: schema.MergeCommit},
	}

	t.Run("merges with init", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCommitLog", ctx, "/repo", true).Return(merges, nil)
		client.On("GetInitialCommit", ctx, "/repo").Return(root, nil)

		records, err := Extract(ctx, client, "/repo", Options{WithInit: true})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, schema.InitCommit, records[0].Kind)
		assert.Equal(t, "1 hour", records[1].ElapsedText)
		assert.Equal(t, "2 hours", records[2].ElapsedText)
		assert.Equal(t, 2, schema.CountKind(records, schema.MergeCommit))
		client.AssertExpectations(t)
	})

	t.Run("all commits without duplicate root", func(t *testing.T) {
		all := append([]schema.Commit{{Hash: "root", Time: base, Kind: schema.PlainCommit}}, merges...)
		client := &contract.MockGitClient{}
		client.On("GetCommitLog", ctx, "/repo", false).Return(all, nil)
		client.On("GetInitialCommit", ctx, "/repo").Return(root, nil)

		records, err := Extract(ctx, client, "/repo", Options{All: true, WithInit: true})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, schema.InitCommit, records[0].Kind)
	})

	t.Run("without init", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCommitLog", ctx, "/repo", true).Return(merges, nil)

		records, err := Extract(ctx, client, "/repo", Options{})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, schema.ElapsedNotApplicable, records[0].ElapsedText)
		client.AssertNotCalled(t, "GetInitialCommit", ctx, "/repo")
	})

	t.Run("extraction error", func(t *testing.T) {
		failure := contract.ExtractionFailure("/repo", "fatal: not a git repository", errors.New("exit status 128"))
		client := &contract.MockGitClient{}
		client.On("GetCommitLog", ctx, "/repo", true).Return(nil, failure)

		_, err := Extract(ctx, client, "/repo", Options{WithInit: true})
		assert.ErrorIs(t, err, contract.ErrExtraction)
	})
}

// TestExtractCountMatchesGit checks the record count equals git's own count.
func TestExtractCountMatchesGit(t *testing.T) {
	repo := gittest.NewRepo(t)
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	repo.Commit("init", base)
	for i, name := range []string{"a", "b", "c"} {
		repo.Branch(name)
		repo.Commit("work "+name, base.Add(time.Duration(2*i+1)*time.Hour))
		repo.Checkout("main")
		repo.Merge(name, "Merge "+name, base.Add(time.Duration(2*i+2)*time.Hour))
	}

	ctx := context.Background()
	client := contract.NewLocalGitClient()

	records, err := Extract(ctx, client, repo.Dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, repo.Git(time.Time{}, "rev-list", "--count", "--merges", "HEAD"), "3")
	assert.Len(t, records, 3)

	all, err := Extract(ctx, client, repo.Dir, Options{All: true})
	require.NoError(t, err)
	assert.Equal(t, repo.Git(time.Time{}, "rev-list", "--count", "HEAD"), "7")
	assert.Len(t, all, 7)

	withInit, err := Extract(ctx, client, repo.Dir, Options{WithInit: true})
	require.NoError(t, err)
	require.Len(t, withInit, 4)
	assert.Equal(t, "init", withInit[0].Message)
	assert.Equal(t, "2 hours", withInit[1].ElapsedText)
}
