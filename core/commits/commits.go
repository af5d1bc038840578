// Package commits extracts commit records and the time elapsed between them.
package commits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// Options selects which commits Extract returns.
type Options struct {
	All      bool // every commit instead of merge commits only
	WithInit bool // prepend the repository's initial commit
}

// Extract lists the commits of a repository, oldest first, and computes the
// elapsed time between consecutive records.
func Extract(ctx context.Context, client contract.GitClient, repoPath string, opts Options) ([]schema.CommitRecord, error) {
	log, err := client.GetCommitLog(ctx, repoPath, !opts.All)
	if err != nil {
		return nil, err
	}

	var all []schema.Commit
	if opts.WithInit {
		root, err := client.GetInitialCommit(ctx, repoPath)
		if err != nil {
			return nil, err
		}
		if root != nil {
			all = append(all, *root)
			if len(log) > 0 && log[0].Hash == root.Hash {
				log = log[1:]
			}
		}
	}
	all = append(all, log...)
	return WithElapsed(all), nil
}

// WithElapsed pairs each commit with the time since the previous one in the
// given order. The first record has no elapsed time.
func WithElapsed(commits []schema.Commit) []schema.CommitRecord {
	records := make([]schema.CommitRecord, len(commits))
	for i, c := range commits {
		records[i].Commit = c
		if i == 0 {
			records[i].ElapsedText = schema.ElapsedNotApplicable
			continue
		}
		d := c.Time.Sub(commits[i-1].Time)
		records[i].Elapsed = &d
		records[i].ElapsedText = FormatElapsed(d)
	}
	return records
}

// FormatElapsed renders a duration as whole days, hours and minutes. Seconds
// only appear when the whole duration is under a minute.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		return "-" + FormatElapsed(-d)
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 && len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	if len(parts) == 0 {
		return "zero seconds"
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
