package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/worktally/internal/contract"
)

func TestInvalidAction(t *testing.T) {
	err := invalidAction(chantierCmd, nil)
	assert.EqualError(t, err, "missing action for chantier. Must be one of: plot, report")

	err = invalidAction(cacheCmd, []string{"purge"})
	assert.EqualError(t, err, `invalid action "purge" for cache. Must be one of: clear, status`)
}

func TestRootWithoutActionFails(t *testing.T) {
	require.NotNil(t, rootCmd.RunE)
	err := rootCmd.RunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action for worktally")
	assert.Contains(t, err.Error(), "merged")
}

func TestProfilingWritesBothProfiles(t *testing.T) {
	saved := profile
	t.Cleanup(func() { profile = saved })

	prefix := filepath.Join(t.TempDir(), "run")
	profile = &contract.ProfileConfig{}
	require.NoError(t, contract.ProcessProfilingConfig(profile, prefix))

	require.NoError(t, startProfiling())
	require.NoError(t, startProfiling(), "second start is a no-op")
	require.NoError(t, StopProfiling())
	require.NoError(t, StopProfiling(), "second stop is a no-op")

	for _, suffix := range []string{".cpu.prof", ".mem.prof"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size(), suffix)
	}
}

func TestProfilingDisabledWritesNothing(t *testing.T) {
	saved := profile
	t.Cleanup(func() { profile = saved })

	profile = &contract.ProfileConfig{}
	require.NoError(t, startProfiling())
	require.NoError(t, stopProfiling())
	assert.False(t, profile.Started)
}

func TestCommandTree(t *testing.T) {
	names := func(cmd *cobra.Command) []string {
		var out []string
		for _, c := range cmd.Commands() {
			out = append(out, c.Name())
		}
		return out
	}
	assert.Subset(t, names(rootCmd), []string{
		"merges", "daily", "hours", "pomodoro", "tracker", "merged", "chantier", "cache", "history", "mcp", "version",
	})
	assert.ElementsMatch(t, []string{"clear", "status", "export", "migrate"}, names(historyCmd))
}

func TestFirstArg(t *testing.T) {
	assert.Equal(t, "", firstArg(nil))
	assert.Equal(t, "calipso", firstArg([]string{"calipso"}))
}

func TestPersistentFlagsDefaults(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for name, want := range map[string]string{
		"output":        "text",
		"precision":     "2",
		"git-backend":   "exec",
		"cache-ttl":     "7 days",
		"cache-backend": "sqlite",
		"color":         "yes",
		"profile":       "",
	} {
		f := flags.Lookup(name)
		if assert.NotNil(t, f, name) {
			assert.Equal(t, want, f.DefValue, name)
		}
	}
}
