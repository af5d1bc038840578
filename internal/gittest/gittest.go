// Package gittest builds throwaway Git repositories with controlled commit dates for tests.
package gittest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Repo is a temporary repository driven through the git binary.
type Repo struct {
	t     testing.TB
	Dir   string
	files int
}

// SkipIfGitNotAvailable skips the test if git binary is not found in PATH.
func SkipIfGitNotAvailable(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// NewRepo initializes an empty repository on branch main in a temp dir.
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	SkipIfGitNotAvailable(t)
	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git(time.Time{}, "init", "-q")
	r.Git(time.Time{}, "symbolic-ref", "HEAD", "refs/heads/main")
	return r
}

// Git runs a git command in the repository and returns its trimmed output.
// A non-zero when sets both author and committer dates.
func (r *Repo) Git(when time.Time, args ...string) string {
	r.t.Helper()
	full := append([]string{"-c", "commit.gpgsign=false", "-c", "core.hooksPath=/dev/null"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_NOSYSTEM=1",
	)
	if !when.IsZero() {
		stamp := when.Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// Commit writes a new file and commits it at the given time. It returns the commit hash.
func (r *Repo) Commit(message string, when time.Time) string {
	r.t.Helper()
	r.files++
	name := filepath.Join(r.Dir, fmt.Sprintf("file%03d.txt", r.files))
	if err := os.WriteFile(name, []byte(message+"\n"), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	r.Git(when, "add", ".")
	r.Git(when, "commit", "-q", "-m", message)
	return r.Head()
}

// Branch creates and checks out a new branch.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	r.Git(time.Time{}, "checkout", "-q", "-b", name)
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	r.Git(time.Time{}, "checkout", "-q", name)
}

// Merge merges branch into the current one with a merge commit. It returns the commit hash.
func (r *Repo) Merge(branch, message string, when time.Time) string {
	r.t.Helper()
	r.Git(when, "merge", "-q", "--no-ff", "-m", message, branch)
	return r.Head()
}

// Head returns the current HEAD hash.
func (r *Repo) Head() string {
	r.t.Helper()
	return r.Git(time.Time{}, "rev-parse", "HEAD")
}
