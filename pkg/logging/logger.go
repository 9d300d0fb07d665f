// Package logging wraps zerolog for congressmap. Output is console text when
// the destination is a terminal and JSON otherwise, so cron and CI runs get
// machine-readable logs without extra flags.
//
//	ctx = logging.WithRunID(ctx, runID)
//	logging.FromContext(ctx).Info().Str("source", "ASA").Int("events", 4).Msg("Collected events")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentstation/congressmap/pkg/constants"
)

// Config describes a logger.
type Config struct {
	Level     string // trace, debug, info, warn, error, off
	Format    string // auto, json, console
	Output    string // stderr, stdout, discard or a file path
	NoColor   bool
	AddCaller bool
	Fields    map[string]any
}

// DefaultConfig is info level, auto format, on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
		Fields:  map[string]any{},
	}
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_CALLER and
// NO_COLOR on top of DefaultConfig. DEBUG=1 without LOG_LEVEL means debug.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	cfg.AddCaller = os.Getenv("LOG_CALLER") == "true"
	return cfg
}

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// Default returns the process-wide logger.
func Default() *zerolog.Logger { return &defaultLogger }

// SetDefault replaces the process-wide logger, including zerolog's global.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Configure builds a logger from cfg and makes it the default.
func Configure(cfg *Config) { SetDefault(NewLoggerFromConfig(cfg)) }

// NewLoggerFromConfig builds a timestamped logger. Debug and trace levels
// always carry the caller.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	zctx := zerolog.New(writerFor(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		zctx = zctx.Caller()
	}
	for k, v := range cfg.Fields {
		zctx = addField(zctx, k, v)
	}
	return zctx.Logger()
}

// Debug logs through the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Warn logs through the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error logs through the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

// ParseLevel accepts zerolog names plus "warning", "off" and "none".
// Anything else is info.
func ParseLevel(level string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	switch s {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(s); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func writerFor(cfg *Config) io.Writer {
	out, tty := destination(cfg.Output)

	format := strings.ToLower(cfg.Format)
	if format == "auto" || format == "" {
		format = "json"
		if tty {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

// destination opens the log sink. An unwritable file path falls back to
// stderr rather than losing logs.
func destination(name string) (io.Writer, bool) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout)
	case "discard", "none":
		return io.Discard, false
	case "", "stderr":
		return os.Stderr, isTerminal(os.Stderr)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, isTerminal(os.Stderr)
	}
	return f, false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func addField(zctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return zctx.Str(key, v)
	case int:
		return zctx.Int(key, v)
	case bool:
		return zctx.Bool(key, v)
	case time.Time:
		return zctx.Time(key, v)
	case time.Duration:
		return zctx.Dur(key, v)
	case error:
		return zctx.AnErr(key, v)
	}
	return zctx.Interface(key, value)
}
