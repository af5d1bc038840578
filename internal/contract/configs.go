package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/worktally/worktally/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 3
	DefaultCacheTTL  = "7 days"
)

// Config holds the final, validated runtime configuration.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	// Sources
	PomodoroFile   string
	TrackerFile    string
	WebTrackerFile string
	ChantierFile   string
	Projects       Projects

	// Day handling
	Location    *time.Location
	DailyCutoff time.Time // zero keeps every day
	Since       time.Time // display filter, zero keeps every day

	GitBackend schema.GitBackend
	CacheTTL   time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string

	Started bool
	CPUFile *os.File // open while the CPU profile is running
}

// Clone returns a copy of the configuration for per-request overrides.
// Projects is shared since it is read-only.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Since            string `mapstructure:"since"`
	GitBackend       string `mapstructure:"git-backend"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Source files ---
	PomodoroFile   string `mapstructure:"pomodoro-file"`
	TrackerFile    string `mapstructure:"tracker-file"`
	WebTrackerFile string `mapstructure:"web-tracker-file"`
	ChantierFile   string `mapstructure:"chantier-file"`
	ProjectsFile   string `mapstructure:"projects-file"`

	// --- Day handling ---
	Timezone    string `mapstructure:"timezone"`
	DailyCutoff string `mapstructure:"daily-cutoff"`

	// --- Projects from config file ---
	Projects map[string]schema.ProjectConfig `mapstructure:"projects"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDays(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processProjects(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' followed by host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and source fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.PomodoroFile = input.PomodoroFile
	cfg.TrackerFile = input.TrackerFile
	cfg.WebTrackerFile = input.WebTrackerFile
	cfg.ChantierFile = input.ChantierFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.GitBackend = schema.GitBackend(strings.ToLower(input.GitBackend))
	if cfg.GitBackend == "" {
		cfg.GitBackend = schema.ExecGitBackend
	}
	if _, ok := schema.ValidGitBackends[cfg.GitBackend]; !ok {
		return fmt.Errorf("invalid git backend '%s'. must be exec, go-git", input.GitBackend)
	}

	ttl := input.CacheTTL
	if ttl == "" {
		ttl = DefaultCacheTTL
	}
	cfg.CacheTTL, err = ParseLookbackDuration(ttl)
	if err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}
	return nil
}

// processDays resolves the time zone and the day filters.
func processDays(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.Location = time.Local
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	var err error
	if cfg.DailyCutoff, err = ParseDayFlag(input.DailyCutoff, now.In(cfg.Location)); err != nil {
		return fmt.Errorf("invalid daily cutoff: %w", err)
	}
	if cfg.Since, err = ParseDayFlag(input.Since, now.In(cfg.Location)); err != nil {
		return fmt.Errorf("invalid --since value: %w", err)
	}
	return nil
}

// processProjects loads the projects file when given, else uses the config file mapping.
func processProjects(cfg *Config, input *ConfigRawInput) error {
	if input.ProjectsFile == "" {
		cfg.Projects = NewProjects(input.Projects)
		return nil
	}
	projects, err := LoadProjectsFile(input.ProjectsFile)
	if err != nil {
		return err
	}
	cfg.Projects = projects
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix == "" {
		return nil
	}
	if strings.HasSuffix(profilePrefix, "/") {
		return fmt.Errorf("profile prefix %q must name a file, not a directory", profilePrefix)
	}
	profile.Enabled = true
	profile.Prefix = profilePrefix
	return nil
}
