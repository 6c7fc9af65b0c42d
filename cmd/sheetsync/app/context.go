package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals is cancelled on SIGINT or SIGTERM. Git subprocesses
// run under this context, and a merge releases its data directory lock on
// the way out.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
