package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "CONGRESSMAP"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Files read and written by a run
	DataDir       string
	SourcesPath   string
	LedgerPath    string
	FeedPath      string
	OverridesPath string
	DebugPath     string

	// Run behavior
	CollectorTimeout time.Duration
	Concurrency      int
	IncludeMissing   bool
	MetricsTextfile  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Paths are the resolved file locations of a run.
type Paths struct {
	Sources   string
	Ledger    string
	Feed      string
	Overrides string
	Debug     string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (CONGRESSMAP_*)
// 3. .env files
// 4. Config file (~/.congressmap.yaml or ./.congressmap.yaml)
// 5. Defaults
//
// An explicit configFile must exist; the default locations are optional.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Logging keeps honoring the unprefixed variables of pkg/logging.
	_ = v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log_output", EnvPrefix+"_LOG_OUTPUT", "LOG_OUTPUT")
	_ = v.BindEnv("no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".congressmap")

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir:       v.GetString("data_dir"),
		SourcesPath:   v.GetString("sources_path"),
		LedgerPath:    v.GetString("ledger_path"),
		FeedPath:      v.GetString("feed_path"),
		OverridesPath: v.GetString("overrides_path"),
		DebugPath:     v.GetString("debug_path"),

		CollectorTimeout: v.GetDuration("collector_timeout"),
		Concurrency:      v.GetInt("concurrency"),
		IncludeMissing:   v.GetBool("include_missing"),
		MetricsTextfile:  v.GetString("metrics_textfile"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("collector_timeout", constants.CollectorTimeout)
	v.SetDefault("concurrency", constants.MaxConcurrentCollectors)
	v.SetDefault("include_missing", false)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that cannot be repaired with a default.
func (c *Config) Validate() error {
	if c.CollectorTimeout < 0 {
		return errors.NewValidationError("collector_timeout", c.CollectorTimeout, "must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.NewValidationError("concurrency", c.Concurrency, "must not be negative")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, dataDir string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
}

// Paths resolves every file location. Paths that are not configured
// explicitly use their default name inside the data directory.
func (c *Config) Paths() Paths {
	dir := c.DataDir
	if dir == "" {
		dir = constants.DefaultDataDir
	}
	pick := func(explicit, name string) string {
		if explicit != "" {
			return explicit
		}
		return filepath.Join(dir, name)
	}
	return Paths{
		Sources:   pick(c.SourcesPath, constants.DefaultSourcesFile),
		Ledger:    pick(c.LedgerPath, constants.DefaultLedgerFile),
		Feed:      pick(c.FeedPath, constants.DefaultFeedFile),
		Overrides: pick(c.OverridesPath, constants.DefaultOverridesFile),
		Debug:     pick(c.DebugPath, constants.DefaultDebugFile),
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env; variables already set win over both
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
