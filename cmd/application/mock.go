package application

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
)

// Mock is an Application for command tests. The client is built once
// from Options, so every call sees the same workspace.
type Mock struct {
	Options []sheetsync.Option
	Log     *zerolog.Logger
	Format  string

	once   sync.Once
	client sheetsync.Client
	err    error
}

var _ Application = (*Mock)(nil)

// Client returns sheetsync.New(m.Options...).
func (m *Mock) Client() (sheetsync.Client, error) {
	m.once.Do(func() {
		m.client, m.err = sheetsync.New(m.Options...)
	})
	return m.client, m.err
}

// Logger returns m.Log, or a logger that discards everything.
func (m *Mock) Logger() *zerolog.Logger {
	if m.Log != nil {
		return m.Log
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns m.Format, defaulting to JSON so tests can parse
// command output.
func (m *Mock) OutputFormat() string {
	if m.Format == "" {
		return "json"
	}
	return m.Format
}
