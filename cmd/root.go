package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/iocache"
	"github.com/worktally/worktally/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// startProfiling starts CPU profiling; the heap profile is written by stopProfiling.
func startProfiling() error {
	if !profile.Enabled || profile.Started {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		_ = cpuFile.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	profile.Started = true
	profile.CPUFile = cpuFile

	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops CPU profiling and writes the memory profile.
func stopProfiling() error {
	if !profile.Started {
		return nil
	}

	pprof.StopCPUProfile()
	profile.Started = false
	if err := profile.CPUFile.Close(); err != nil {
		return fmt.Errorf("could not close CPU profile: %w", err)
	}

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "worktally",
	Short:              "Tally work time from Git history, Pomodoro and tracker exports.",
	Long:               `worktally turns commit timestamps, Pomodoro sessions and tracker exports into daily per-project work summaries.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	RunE:               invalidAction,
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	// Set environment variable prefix
	viper.SetEnvPrefix("WORKTALLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("git-backend", schema.ExecGitBackend)
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".worktally") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// configSetup unmarshals config and runs validation without opening any store.
func configSetup() error {
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetup validates the configuration and opens the cache and history stores.
func sharedSetup() error {
	if err := configSetup(); err != nil {
		return err
	}

	historyBackend := cfg.HistoryBackend
	if historyBackend == schema.NoneBackend {
		historyBackend = ""
	}
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, historyBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper adapts sharedSetup to Cobra's PreRunE.
func sharedSetupWrapper(_ *cobra.Command, _ []string) error {
	return sharedSetup()
}

// configSetupWrapper adapts configSetup to Cobra's PreRunE.
func configSetupWrapper(_ *cobra.Command, _ []string) error {
	return configSetup()
}

// invalidAction reports a missing or unknown subcommand of a command group.
func invalidAction(cmd *cobra.Command, args []string) error {
	var allowed []string
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() {
			allowed = append(allowed, c.Name())
		}
	}
	if len(args) == 0 {
		return fmt.Errorf("missing action for %s. Must be one of: %s", cmd.Name(), strings.Join(allowed, ", "))
	}
	return fmt.Errorf("invalid action %q for %s. Must be one of: %s", args[0], cmd.Name(), strings.Join(allowed, ", "))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// StopProfiling stops profiling if it was started.
func StopProfiling() error {
	return stopProfiling()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}
