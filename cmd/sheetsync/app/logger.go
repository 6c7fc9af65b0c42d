package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync/pkg/logging"
)

// NewLogger builds the CLI logger. An explicit --log-level (or LOG_LEVEL)
// beats --quiet, which beats --verbose; the default is info. Debug and
// trace add the caller to each entry.
func NewLogger(config *Config) zerolog.Logger {
	level := resolveLevel(config, os.Stderr)
	return logging.New(&logging.Config{
		Level:   level.String(),
		Format:  config.LogFormat,
		Output:  config.LogOutput,
		NoColor: config.NoColor,
		Caller:  level <= zerolog.DebugLevel,
	})
}

// resolveLevel writes a warning to warn for conflicting or unknown
// settings.
func resolveLevel(config *Config, warn io.Writer) zerolog.Level {
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
			fmt.Fprintf(warn, "Warning: invalid log level %q, using info\n", config.LogLevel)
		}
		return level
	}

	switch {
	case config.Quiet:
		if config.Verbose {
			fmt.Fprintln(warn, "Warning: both --verbose and --quiet specified, using --quiet")
		}
		return zerolog.WarnLevel
	case config.Verbose:
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
