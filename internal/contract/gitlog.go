package contract

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/worktally/worktally/schema"
)

// Field and record separators of CommitLogFormat.
const (
	fieldSeparator  = "|"
	recordSeparator = "\x1e"
)

// CommitLogFormat is the pretty format parsed by ParseCommitLog.
// Records end with an ASCII record separator so multi-line bodies stay whole.
const CommitLogFormat = "--pretty=format:%H|%ai|%s|%b%x1e"

// ParseCommitLog parses git log output produced with CommitLogFormat.
// Empty records, including the trailing one, are skipped.
func ParseCommitLog(out []byte, kind schema.CommitKind) ([]schema.Commit, error) {
	var commits []schema.Commit
	for record := range strings.SplitSeq(string(out), recordSeparator) {
		record = strings.Trim(record, "\r\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		c, err := parseCommitRecord(record)
		if err != nil {
			return nil, err
		}
		c.Kind = kind
		commits = append(commits, c)
	}
	return commits, nil
}

// parseCommitRecord splits one record into at most four fields, so a body
// containing the field separator stays whole.
func parseCommitRecord(record string) (schema.Commit, error) {
	parts := strings.SplitN(record, fieldSeparator, 4)
	if len(parts) < 3 {
		return schema.Commit{}, fmt.Errorf("malformed commit record %q", record)
	}
	c := schema.Commit{
		Hash:    strings.TrimSpace(parts[0]),
		Date:    strings.TrimSpace(parts[1]),
		Subject: parts[2],
	}
	if len(parts) == 4 {
		c.Body = parts[3]
	}
	t, err := time.Parse(schema.GitDateLayout, c.Date)
	if err != nil {
		return schema.Commit{}, fmt.Errorf("invalid commit date %q: %w", c.Date, err)
	}
	c.Time = t
	c.Message = JoinMessage(c.Subject, c.Body)
	return c, nil
}

// JoinMessage joins subject and body the way commit records expose them.
func JoinMessage(subject, body string) string {
	msg := subject
	if b := strings.TrimSpace(body); b != "" {
		msg += "\n" + b
	}
	return strings.TrimSpace(msg)
}

// RefState joins HEAD and "<hash> <ref>" lines into a sorted, newline
// separated description. Blank lines are dropped.
func RefState(head string, refs []string) string {
	lines := []string{head + " HEAD"}
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			lines = append(lines, ref)
		}
	}
	slices.Sort(lines[1:])
	return strings.Join(lines, "\n")
}

// ParseTimestamps parses one unix timestamp per line. Quotes and blank lines are ignored.
func ParseTimestamps(out []byte) ([]time.Time, error) {
	var stamps []time.Time
	for line := range strings.SplitSeq(string(out), "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line == "" {
			continue
		}
		sec, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid commit timestamp %q: %w", line, err)
		}
		stamps = append(stamps, time.Unix(sec, 0))
	}
	return stamps, nil
}
