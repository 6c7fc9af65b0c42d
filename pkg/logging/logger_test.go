package logging_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"TRACE":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&logging.Config{Level: "error", Format: "json", Output: "discard"}).Output(&buf)

	logger.Info().Msg("merged")
	logger.Error().Msg("section failed")

	assert.NotContains(t, buf.String(), "merged")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetsync.log")
	logger := logging.New(&logging.Config{Level: "info", Format: "auto", Output: path})

	logger.Info().Str("section", "Pages").Msg("Reconciled")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Files are not terminals, so auto means JSON.
	assert.Contains(t, string(data), `"section":"Pages"`)
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logging.Config{Format: "console", NoColor: true}
	logger := logging.New(cfg).Output(zerolog.ConsoleWriter{Out: &buf, NoColor: true})

	logger.Warn().Msg("record skipped")

	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "record skipped")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("DEBUG", "1")

	cfg := logging.FromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.NoColor)

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", logging.FromEnv().Level)
}

func TestSetDefault(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	tl := logging.NewTestLogger(t)
	logging.SetDefault(*tl.Logger)

	logging.Default().Info().Msg("from default")
	log.Info().Msg("from global")

	tl.AssertContains(t, "from default", "from global")
	assert.Len(t, tl.Lines(), 2)
}

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithOperation(ctx, "merge")
	ctx = logging.WithRun(ctx, "run-1")
	ctx = logging.WithSection(ctx, "Redirects")
	ctx = logging.WithFile(ctx, "repo-shopify-data/Redirects.json")
	ctx = logging.WithField(ctx, "index", 3)
	ctx = logging.WithField(ctx, "dry_run", true)
	ctx = logging.WithField(ctx, "cause", errors.New("boom"))

	logging.FromContext(ctx).Warn().Msg("record skipped")

	tl.AssertContains(t,
		`"operation":"merge"`,
		`"run_id":"run-1"`,
		`"section":"Redirects"`,
		`"file":"repo-shopify-data/Redirects.json"`,
		`"index":3`,
		`"dry_run":true`,
		`"cause":"boom"`,
		"record skipped",
	)
}

func TestFromContext_Default(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Same(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Info().Msg("message 1")
	tl.Trace().Msg("message 2")

	tl.AssertContains(t, "message 1", "message 2")
	tl.AssertNotContains(t, "message 3")
	assert.Len(t, tl.Lines(), 2)

	tl.Reset()
	assert.Empty(t, tl.Lines())
}
