package contract

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the failures a worktally operation can report.
type ErrorKind int

// Error kinds.
const (
	KindUnknownProject ErrorKind = iota + 1
	KindExtraction
	KindSourceUnreadable
)

// Sentinel errors to match with errors.Is.
var (
	ErrUnknownProject   = errors.New("unknown project")
	ErrExtraction       = errors.New("extraction failed")
	ErrSourceUnreadable = errors.New("source file unreadable")
	ErrNoData           = errors.New("no data collected")
)

// Error is the tagged error returned by project lookups, commit
// extraction and source loading.
type Error struct {
	Kind    ErrorKind
	Project string // set for KindUnknownProject
	Path    string // repository or file path
	Stderr  string // tool output for KindExtraction
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknownProject:
		return fmt.Sprintf("wrong project name: %s", e.Project)
	case KindExtraction:
		if e.Stderr != "" {
			return fmt.Sprintf("git command failed in %q: %s", e.Path, e.Stderr)
		}
		return fmt.Sprintf("git command failed in %q: %v", e.Path, e.Err)
	case KindSourceUnreadable:
		return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("worktally error: %v", e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindUnknownProject:
		return target == ErrUnknownProject
	case KindExtraction:
		return target == ErrExtraction
	case KindSourceUnreadable:
		return target == ErrSourceUnreadable
	}
	return false
}

// UnknownProject returns the error for a project missing from configuration.
func UnknownProject(name string) error {
	return &Error{Kind: KindUnknownProject, Project: name}
}

// ExtractionFailure returns the error for a failed git invocation.
func ExtractionFailure(repoPath, stderr string, err error) error {
	return &Error{Kind: KindExtraction, Path: repoPath, Stderr: stderr, Err: err}
}

// SourceUnreadable returns the error for a source file that cannot be loaded.
func SourceUnreadable(path string, err error) error {
	return &Error{Kind: KindSourceUnreadable, Path: path, Err: err}
}
