package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/congressmap/pkg/logging"
)

var knownLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// NewLogger builds the CLI logger from config. The level comes from, in
// order: --log-level or its env vars, --quiet, --verbose, then info.
// Conflicting or unknown settings are reported through the logger itself.
func NewLogger(config *Config) zerolog.Logger {
	level, note := determineLogLevel(config)
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	if note != "" {
		logger.Warn().Msg(note)
	}
	return logger
}

// determineLogLevel resolves the level and, when a setting was ignored,
// a note explaining which.
func determineLogLevel(config *Config) (string, string) {
	if config.LogLevel != "" {
		level := strings.ToLower(config.LogLevel)
		if !knownLevels[level] {
			return "info", fmt.Sprintf("unknown log level %q, using info", config.LogLevel)
		}
		return level, ""
	}
	switch {
	case config.Quiet && config.Verbose:
		return "warn", "--verbose ignored in favor of --quiet"
	case config.Quiet:
		return "warn", ""
	case config.Verbose:
		return "debug", ""
	}
	return "info", ""
}
