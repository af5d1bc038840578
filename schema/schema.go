// Package schema has configs, models and constants shared by all parts of worktally.
package schema

import "time"

// Commit is one record returned by a commit extractor.
type Commit struct {
	Hash    string     `json:"hash"`
	Time    time.Time  `json:"time"`
	Date    string     `json:"date"` // author date exactly as git prints it
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	Message string     `json:"message"` // subject and trimmed body joined by a newline
	Kind    CommitKind `json:"type"`
}

// CommitRecord is a commit enriched with the time elapsed since the
// previous record of the same result.
type CommitRecord struct {
	Commit
	Elapsed     *time.Duration `json:"elapsed_ns,omitempty"` // nil for the first record
	ElapsedText string         `json:"elapsed"`
}

// FirstLine returns the subject line of the message.
func (c Commit) FirstLine() string {
	for i, r := range c.Message {
		if r == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// CountKind returns how many records have the given kind.
func CountKind(records []CommitRecord, kind CommitKind) int {
	n := 0
	for _, r := range records {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
