package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/worktally/worktally/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its standard output.
// A missing binary or a non-zero exit status is reported as an extraction error.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, ExtractionFailure(repoPath, stderr, err)
	} else if err != nil {
		return nil, ExtractionFailure(repoPath, "", fmt.Errorf("%w. Ensure Git is installed and available on your PATH", err))
	}
	return out, nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRefState implements the GitClient interface.
func (c *LocalGitClient) GetRefState(ctx context.Context, repoPath string) (string, error) {
	head, err := c.GetRepoHash(ctx, repoPath)
	if err != nil {
		return "", err
	}
	out, err := c.Run(ctx, repoPath, "for-each-ref", "--format=%(objectname) %(refname)")
	if err != nil {
		return "", err
	}
	return RefState(head, strings.Split(string(out), "\n")), nil
}

// GetCommitLog implements the GitClient interface.
func (c *LocalGitClient) GetCommitLog(ctx context.Context, repoPath string, mergesOnly bool) ([]schema.Commit, error) {
	args := []string{"log"}
	kind := schema.PlainCommit
	if mergesOnly {
		args = append(args, "--merges")
		kind = schema.MergeCommit
	}
	args = append(args, CommitLogFormat, "--date=iso", "--reverse")
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return ParseCommitLog(out, kind)
}

// GetInitialCommit implements the GitClient interface.
// git lists root commits newest first, so the last record is the oldest.
func (c *LocalGitClient) GetInitialCommit(ctx context.Context, repoPath string) (*schema.Commit, error) {
	out, err := c.Run(ctx, repoPath, "log", "--max-parents=0", CommitLogFormat, "--date=iso")
	if err != nil {
		return nil, err
	}
	roots, err := ParseCommitLog(out, schema.InitCommit)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, nil
	}
	root := roots[len(roots)-1]
	return &root, nil
}

// GetCommitTimestamps implements the GitClient interface.
func (c *LocalGitClient) GetCommitTimestamps(ctx context.Context, repoPath string) ([]time.Time, error) {
	out, err := c.Run(ctx, repoPath, "log", "--all", "--pretty=format:%at")
	if err != nil {
		return nil, err
	}
	return ParseTimestamps(out)
}
