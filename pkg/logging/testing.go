package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger records JSON log lines in memory.
type TestLogger struct {
	*zerolog.Logger
	buf *bytes.Buffer
}

// NewTestLogger returns a trace-level logger writing to memory. The
// global level is restored when the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	buf := &bytes.Buffer{}
	l := zerolog.New(buf).Level(zerolog.TraceLevel)
	return &TestLogger{Logger: &l, buf: buf}
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string { return tl.buf.String() }

// Lines returns one entry per logged line.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Reset drops captured output.
func (tl *TestLogger) Reset() { tl.buf.Reset() }

// AssertContains fails t unless every substring was logged.
func (tl *TestLogger) AssertContains(t testing.TB, substrs ...string) {
	t.Helper()
	out := tl.Output()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			t.Errorf("log does not contain %q\n%s", s, out)
		}
	}
}

// AssertNotContains fails t if substr was logged.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if out := tl.Output(); strings.Contains(out, substr) {
		t.Errorf("log unexpectedly contains %q\n%s", substr, out)
	}
}
