package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/core/commits"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/gittest"
	"github.com/worktally/worktally/internal/gogit"
	"github.com/worktally/worktally/internal/iocache"
	"github.com/worktally/worktally/schema"
)

func TestNewGitClient(t *testing.T) {
	assert.IsType(t, &contract.LocalGitClient{}, NewGitClient(schema.ExecGitBackend))
	assert.IsType(t, &gogit.Client{}, NewGitClient(schema.GoGitBackend))
}

func TestNewMerger(t *testing.T) {
	store := &iocache.MockCacheStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(store)

	cfg := &contract.Config{
		Projects:     testProjects(),
		PomodoroFile: "pomodoro.csv",
		Location:     time.UTC,
		CacheTTL:     time.Hour,
	}
	m := NewMerger(cfg, mgr)
	assert.Equal(t, store, m.Cache)
	assert.Equal(t, "pomodoro.csv", m.PomodoroFile)
	assert.Equal(t, time.Hour, m.CacheTTL)

	assert.Nil(t, NewMerger(cfg, nil).Cache)
}

func TestRecordRun(t *testing.T) {
	rows := []schema.HistoryRow{{Day: at("2024-01-02", 0), Project: "Calipso", GitCommits: schema.Float(2)}}
	start := time.Now()

	t.Run("success", func(t *testing.T) {
		store := &iocache.MockHistoryStore{}
		store.On("BeginRun", start, schema.ScopeAll, mock.Anything).Return(int64(7), nil)
		store.On("RecordRows", int64(7), rows).Return(nil)
		store.On("EndRun", int64(7), mock.Anything, 1).Return(nil)

		recordRun(store, schema.ScopeAll, nil, rows, start, func(string, error) { t.Fatal("unexpected warning") })
		store.AssertExpectations(t)
	})

	t.Run("failures only warn", func(t *testing.T) {
		store := &iocache.MockHistoryStore{}
		store.On("BeginRun", start, "Calipso", mock.Anything).Return(int64(1), nil)
		store.On("RecordRows", int64(1), rows).Return(errors.New("duplicate"))
		store.On("EndRun", int64(1), mock.Anything, 1).Return(nil)

		var warnings []string
		recordRun(store, "Calipso", nil, rows, start, func(msg string, _ error) { warnings = append(warnings, msg) })
		assert.Equal(t, []string{"failed to record history rows"}, warnings)
	})

	t.Run("begin failure stops", func(t *testing.T) {
		store := &iocache.MockHistoryStore{}
		store.On("BeginRun", start, "Calipso", mock.Anything).Return(int64(0), errors.New("down"))

		var warnings []string
		recordRun(store, "Calipso", nil, rows, start, func(msg string, _ error) { warnings = append(warnings, msg) })
		assert.Equal(t, []string{"failed to begin history run"}, warnings)
		store.AssertNotCalled(t, "RecordRows", mock.Anything, mock.Anything)
	})

	t.Run("nil store", func(_ *testing.T) {
		recordRun(nil, "Calipso", nil, rows, start, nil)
	})
}

func TestRunParams(t *testing.T) {
	cfg := &contract.Config{
		GitBackend:  schema.GoGitBackend,
		Projects:    testProjects(),
		Location:    time.UTC,
		DailyCutoff: at("2024-01-01", 0),
	}
	params := runParams(cfg)
	assert.Equal(t, "go-git", params["git_backend"])
	assert.Equal(t, "UTC", params["timezone"])
	assert.Equal(t, "2024-01-01", params["daily_cutoff"])
	assert.Equal(t, []string{"Broken", "Calipso", "Gnome"}, params["projects"])
}

func TestGetMergedProject_RecordsHistory(t *testing.T) {
	store := &iocache.MockHistoryStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(nil)
	mgr.On("GetHistoryStore").Return(store)
	store.On("BeginRun", mock.Anything, "Gnome", mock.Anything).Return(int64(3), nil)
	store.On("RecordRows", int64(3), mock.Anything).Return(nil)
	store.On("EndRun", int64(3), mock.Anything, 1).Return(nil)

	cfg := &contract.Config{
		Projects:     testProjects(),
		PomodoroFile: writeFile(t, "pomodoro.csv", pomodoroCSV),
		Location:     time.UTC,
	}
	table, err := GetMergedProject(context.Background(), cfg, mgr, "Gnome")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	store.AssertExpectations(t)
}

func TestGetMergedAll_NoData(t *testing.T) {
	cfg := &contract.Config{Projects: contract.NewProjects(nil), Location: time.UTC}
	_, err := GetMergedAll(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, contract.ErrNoData)
}

func TestGetCommits(t *testing.T) {
	repo := gittest.NewRepo(t)
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	repo.Commit("first", base)
	repo.Branch("feature")
	repo.Commit("feature work", base.Add(time.Hour))
	repo.Checkout("main")
	repo.Merge("feature", "Merge branch 'feature'", base.Add(2*time.Hour))

	for _, backend := range []schema.GitBackend{schema.ExecGitBackend, schema.GoGitBackend} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := &contract.Config{GitBackend: backend}
			records, err := GetCommits(context.Background(), cfg, repo.Dir, commits.Options{WithInit: true})
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, schema.InitCommit, records[0].Kind)
			assert.Equal(t, schema.MergeCommit, records[1].Kind)
			assert.Equal(t, schema.ElapsedNotApplicable, records[0].ElapsedText)
			assert.Equal(t, "2 hours", records[1].ElapsedText)
		})
	}
}

func TestChantierNotConfigured(t *testing.T) {
	_, err := GetChantierReport(&contract.Config{})
	assert.EqualError(t, err, "chantier-file is not configured")
}
