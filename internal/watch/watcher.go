// Package watch runs a callback when a workbook lands in a drop directory.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// DefaultSettle is how long a workbook must stay untouched before the
// callback runs. Spreadsheet apps write in several bursts.
const DefaultSettle = 2 * time.Second

// Handler processes a settled workbook. A returned error is logged and
// watching continues.
type Handler func(ctx context.Context, path string) error

// Watcher watches one directory for workbooks.
type Watcher struct {
	dir    string
	settle time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period before a workbook is handled.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New creates a Watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{dir: dir, settle: DefaultSettle}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done, then returns nil. Bursts of events for the
// same workbook collapse into one handler call. Every workbook written
// during a settle window is handled once it ends, in arrival order.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	logger := logging.FromContext(logging.WithFile(ctx, w.dir))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapResource("create", "watcher", "", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return errors.WrapResource("watch", "directory", w.dir, err)
	}
	logger.Info().Dur("settle", w.settle).Msg("Watching for workbooks")

	// Stopped timers deliver no stale value, so no drain is needed.
	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	// Workbooks seen in the current settle window, in arrival order.
	var pending []string
	queued := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !IsWorkbook(event.Name) || !event.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			logger.Debug().Str("workbook", event.Name).Str("op", event.Op.String()).Msg("Workbook event")
			if !queued[event.Name] {
				queued[event.Name] = true
				pending = append(pending, event.Name)
			}
			timer.Reset(w.settle)

		case <-timer.C:
			batch := pending
			pending, queued = nil, map[string]bool{}
			for _, path := range batch {
				if ctx.Err() != nil {
					return nil
				}
				if err := fn(ctx, path); err != nil {
					logger.Error().Err(err).Str("workbook", path).Msg("Failed to process workbook")
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// IsWorkbook reports whether name is a spreadsheet worth handling. Excel
// lock files (~$name.xlsx) are not.
func IsWorkbook(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), constants.WorkbookExtension) && !strings.HasPrefix(base, "~$")
}
