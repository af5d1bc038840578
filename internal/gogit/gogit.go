// Package gogit reads commit history in-process with go-git instead of the git binary.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// ErrUnsupported is returned by Run, which needs a git binary.
var ErrUnsupported = errors.New("raw git commands are not supported by the go-git backend")

// Client implements contract.GitClient on top of go-git.
type Client struct{}

var _ contract.GitClient = &Client{} // Compile-time check

// NewClient creates a go-git backed client.
func NewClient() *Client {
	return &Client{}
}

// open opens the repository containing path. Paths pointing at a .git
// directory are accepted as well.
func open(repoPath string) (*git.Repository, error) {
	path := strings.TrimSuffix(strings.TrimRight(repoPath, "/"), "/.git")
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, contract.ExtractionFailure(repoPath, "", err)
	}
	return repo, nil
}

// Run implements the contract.GitClient interface.
func (c *Client) Run(_ context.Context, repoPath string, _ ...string) ([]byte, error) {
	return nil, contract.ExtractionFailure(repoPath, "", ErrUnsupported)
}

// GetRepoHash implements the contract.GitClient interface.
func (c *Client) GetRepoHash(_ context.Context, repoPath string) (string, error) {
	repo, err := open(repoPath)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", contract.ExtractionFailure(repoPath, "", err)
	}
	return head.Hash().String(), nil
}

// GetRefState implements the contract.GitClient interface.
func (c *Client) GetRefState(ctx context.Context, repoPath string) (string, error) {
	head, err := c.GetRepoHash(ctx, repoPath)
	if err != nil {
		return "", err
	}
	repo, err := open(repoPath)
	if err != nil {
		return "", err
	}
	iter, err := repo.References()
	if err != nil {
		return "", contract.ExtractionFailure(repoPath, "", err)
	}
	defer iter.Close()

	var refs []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		// HEAD and other symbolic refs are covered by their targets
		if ref.Type() == plumbing.HashReference {
			refs = append(refs, ref.Hash().String()+" "+ref.Name().String())
		}
		return nil
	})
	if err != nil {
		return "", contract.ExtractionFailure(repoPath, "", err)
	}
	return contract.RefState(head, refs), nil
}

// GetCommitLog implements the contract.GitClient interface.
func (c *Client) GetCommitLog(ctx context.Context, repoPath string, mergesOnly bool) ([]schema.Commit, error) {
	kind := schema.PlainCommit
	if mergesOnly {
		kind = schema.MergeCommit
	}
	var commits []schema.Commit
	err := walkHead(ctx, repoPath, func(commit *object.Commit) {
		if mergesOnly && commit.NumParents() < 2 {
			return
		}
		commits = append(commits, toCommit(commit, kind))
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(commits)
	return commits, nil
}

// GetInitialCommit implements the contract.GitClient interface.
func (c *Client) GetInitialCommit(ctx context.Context, repoPath string) (*schema.Commit, error) {
	var root *schema.Commit
	err := walkHead(ctx, repoPath, func(commit *object.Commit) {
		if commit.NumParents() == 0 {
			// newest first, so the last root seen is the oldest
			rc := toCommit(commit, schema.InitCommit)
			root = &rc
		}
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// GetCommitTimestamps implements the contract.GitClient interface.
func (c *Client) GetCommitTimestamps(ctx context.Context, repoPath string) ([]time.Time, error) {
	repo, err := open(repoPath)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{All: true})
	if err != nil {
		return nil, contract.ExtractionFailure(repoPath, "", fmt.Errorf("unable to collect the commit history: %w", err))
	}
	defer iter.Close()

	var stamps []time.Time
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stamps = append(stamps, time.Unix(commit.Author.When.Unix(), 0))
		return nil
	})
	if err != nil {
		return nil, contract.ExtractionFailure(repoPath, "", err)
	}
	return stamps, nil
}

// walkHead visits the commits reachable from HEAD, newest first.
func walkHead(ctx context.Context, repoPath string, visit func(*object.Commit)) error {
	repo, err := open(repoPath)
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return contract.ExtractionFailure(repoPath, "", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return contract.ExtractionFailure(repoPath, "", fmt.Errorf("unable to collect the commit history: %w", err))
	}
	defer iter.Close()

	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(commit)
		return nil
	})
	if err != nil {
		return contract.ExtractionFailure(repoPath, "", err)
	}
	return nil
}

// toCommit converts a go-git commit the way the git binary prints it with
// contract.CommitLogFormat.
func toCommit(commit *object.Commit, kind schema.CommitKind) schema.Commit {
	subject, body := splitMessage(commit.Message)
	return schema.Commit{
		Hash:    commit.Hash.String(),
		Time:    commit.Author.When,
		Date:    commit.Author.When.Format(schema.GitDateLayout),
		Subject: subject,
		Body:    body,
		Message: contract.JoinMessage(subject, body),
		Kind:    kind,
	}
}

// splitMessage separates the subject paragraph from the body. Like git's %s,
// the lines of the first paragraph are joined with spaces.
func splitMessage(message string) (string, string) {
	message = strings.TrimLeft(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	subject, body, _ := strings.Cut(message, "\n\n")
	subject = strings.Join(strings.Fields(strings.ReplaceAll(subject, "\n", " ")), " ")
	return subject, strings.TrimSpace(body)
}
