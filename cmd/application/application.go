// Package application is the view of the CLI that subcommands depend on.
// Commands take an Application instead of the concrete app so tests can
// hand them a Mock pointed at a temporary workspace.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
)

// Application provides what commands need from the app.
type Application interface {
	// Client returns the sheetsync client, creating it on first use.
	Client() (sheetsync.Client, error)

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested format, or "" to detect one.
	OutputFormat() string
}
