package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/worktally/worktally/schema"
)

// MockGitClient is a mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRefState implements the GitClient interface.
func (m *MockGitClient) GetRefState(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitLog implements the GitClient interface.
func (m *MockGitClient) GetCommitLog(ctx context.Context, repoPath string, mergesOnly bool) ([]schema.Commit, error) {
	ret := m.Called(ctx, repoPath, mergesOnly)
	commits, _ := ret.Get(0).([]schema.Commit)
	return commits, ret.Error(1)
}

// GetInitialCommit implements the GitClient interface.
func (m *MockGitClient) GetInitialCommit(ctx context.Context, repoPath string) (*schema.Commit, error) {
	ret := m.Called(ctx, repoPath)
	commit, _ := ret.Get(0).(*schema.Commit)
	return commit, ret.Error(1)
}

// GetCommitTimestamps implements the GitClient interface.
func (m *MockGitClient) GetCommitTimestamps(ctx context.Context, repoPath string) ([]time.Time, error) {
	ret := m.Called(ctx, repoPath)
	stamps, _ := ret.Get(0).([]time.Time)
	return stamps, ret.Error(1)
}
