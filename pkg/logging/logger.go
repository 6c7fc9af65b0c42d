// Package logging wraps zerolog for sheetsync. Loggers travel in
// contexts and pick up section, file, operation and run fields as a
// merge or extraction works through the store.
//
//	ctx := logging.WithSection(ctx, "Redirects")
//	logging.FromContext(ctx).Warn().Int("index", 4).Msg("Record has no ID")
package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var std atomic.Pointer[zerolog.Logger]

func init() {
	SetDefault(New(nil))
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return std.Load()
}

// SetDefault replaces the process-wide logger, including zerolog's
// global log.Logger.
func SetDefault(logger zerolog.Logger) {
	std.Store(&logger)
	log.Logger = logger
}
