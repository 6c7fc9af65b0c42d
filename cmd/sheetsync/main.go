// Command sheetsync merges spreadsheet exports into a version-controlled
// JSON snapshot of store data and extracts the records a commit changed.
package main

import (
	"context"
	"os"

	"github.com/agentstation/sheetsync/cmd/sheetsync/app"
)

// Set by goreleaser through -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	a, err := app.New(version, commit, date, builtBy)
	app.ExitOnError(err)

	ctx, stop := app.ContextWithSignals(context.Background())
	err = a.Execute(ctx, os.Args[1:])
	stop()
	app.ExitOnError(err)
}
