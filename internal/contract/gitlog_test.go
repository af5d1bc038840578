package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/schema"
)

func TestParseCommitLog(t *testing.T) {
	out := "aaa|2024-01-02 10:00:00 +0100|Merge branch 'a'|\x1e\n" +
		"bbb|2024-01-03 11:30:00 +0100|Merge branch 'b'|first line\nsecond | line\n\x1e\n"

	commits, err := ParseCommitLog([]byte(out), schema.MergeCommit)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "aaa", commits[0].Hash)
	assert.Equal(t, "2024-01-02 10:00:00 +0100", commits[0].Date)
	assert.Equal(t, "Merge branch 'a'", commits[0].Message)
	assert.Empty(t, commits[0].Body)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), commits[0].Time.UTC())

	assert.Equal(t, "Merge branch 'b'\nfirst line\nsecond | line", commits[1].Message)
	assert.Equal(t, schema.MergeCommit, commits[1].Kind)
}

func TestParseCommitLog_EmptyAndMalformed(t *testing.T) {
	commits, err := ParseCommitLog([]byte(""), schema.PlainCommit)
	require.NoError(t, err)
	assert.Empty(t, commits)

	commits, err = ParseCommitLog([]byte("\n\x1e\n"), schema.PlainCommit)
	require.NoError(t, err)
	assert.Empty(t, commits)

	_, err = ParseCommitLog([]byte("onlyhash\x1e"), schema.PlainCommit)
	assert.Error(t, err)

	_, err = ParseCommitLog([]byte("h|yesterday|s|\x1e"), schema.PlainCommit)
	assert.Error(t, err)
}

func TestParseCommitLog_NoBodyField(t *testing.T) {
	commits, err := ParseCommitLog([]byte("abc|2024-01-02 10:00:00 +0000|subject only"), schema.PlainCommit)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "subject only", commits[0].Message)
}

func TestJoinMessage(t *testing.T) {
	assert.Equal(t, "subject", JoinMessage("subject", "  \n"))
	assert.Equal(t, "subject\nbody", JoinMessage("subject ", "\nbody\n"))
	assert.Equal(t, "", JoinMessage("", ""))
}

func TestParseTimestamps(t *testing.T) {
	stamps, err := ParseTimestamps([]byte("\"1700000000\"\n1700003600\n\n"))
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.Equal(t, int64(1700003600), stamps[1].Unix())

	_, err = ParseTimestamps([]byte("12ab"))
	assert.Error(t, err)
}

func TestRefState(t *testing.T) {
	state := RefState("abc", []string{"def refs/heads/main", "", "abc refs/heads/feature\r"})
	assert.Equal(t, "abc HEAD\nabc refs/heads/feature\ndef refs/heads/main", state)
}
