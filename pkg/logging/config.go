package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync/pkg/constants"
)

// Config selects the level, sink and encoding of a logger.
type Config struct {
	// Level is trace, debug, info, warn, error or off. Unknown levels
	// log at info.
	Level string

	// Format is json, console or auto. Auto writes console lines to a
	// terminal and JSON everywhere else, which is what CI log viewers want.
	Format string

	// Output is stderr, stdout, discard or a file path to append to.
	Output string

	// TimeFormat applies to console output: kitchen, rfc3339 or a Go
	// layout.
	TimeFormat string

	NoColor bool

	// Caller adds file:line to every entry.
	Caller bool
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT and NO_COLOR. DEBUG set to anything
// lowers the default level to debug.
func FromEnv() *Config {
	cfg := &Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
	if cfg.Level == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	return cfg
}

// New builds a logger from cfg. A nil cfg reads the environment.
func New(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = FromEnv()
	}
	level := ParseLevel(cfg.Level)
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}

	zctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	return zctx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(New(cfg))
}

// ParseLevel accepts zerolog level names plus "warning" and "off".
func ParseLevel(s string) zerolog.Level {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "", "info":
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

func (c *Config) writer() io.Writer {
	sink := c.sink()

	console := false
	switch strings.ToLower(c.Format) {
	case "console", "pretty":
		console = true
	case "", "auto":
		f, ok := sink.(*os.File)
		console = ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
	if !console {
		return sink
	}
	return zerolog.ConsoleWriter{Out: sink, TimeFormat: c.timeLayout(), NoColor: c.NoColor}
}

// sink falls back to stderr when a log file cannot be opened.
func (c *Config) sink() io.Writer {
	switch strings.ToLower(c.Output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func (c *Config) timeLayout() string {
	switch strings.ToLower(c.TimeFormat) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	}
	return c.TimeFormat
}
