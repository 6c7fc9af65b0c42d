package sheetsync

import (
	"context"

	"github.com/agentstation/sheetsync/internal/store"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

type mergeOptions struct {
	dryRun            bool
	freshSectionsOnly bool
	sections          []string
}

// MergeOption configures a single Merge call.
type MergeOption func(*mergeOptions)

// WithDryRun computes the merge without writing it.
func WithDryRun(enabled bool) MergeOption {
	return func(o *mergeOptions) { o.dryRun = enabled }
}

// WithFreshSectionsOnly leaves sections absent from the export untouched
// instead of tombstoning them.
func WithFreshSectionsOnly(enabled bool) MergeOption {
	return func(o *mergeOptions) { o.freshSectionsOnly = enabled }
}

// WithSections restricts the merge to the named sections.
func WithSections(names ...string) MergeOption {
	return func(o *mergeOptions) { o.sections = names }
}

// Merge implements Client. Missing directories are reported before
// anything is written, and the data directory is locked for the run.
func (c *client) Merge(ctx context.Context, opts ...MergeOption) (*reconciler.Result, error) {
	o := &mergeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	ctx = logging.WithOperation(ctx, "merge")
	logger := logging.FromContext(ctx)

	baseline, err := store.Open(c.cfg.resolve(c.cfg.dataDir))
	if err != nil {
		return nil, err
	}
	fresh, err := store.Open(c.cfg.resolve(c.cfg.exportDir))
	if err != nil {
		return nil, err
	}

	lock, err := baseline.Lock()
	if err != nil {
		return nil, err
	}
	ctx = logging.WithRun(ctx, lock.RunID)
	logger = logging.FromContext(ctx)
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release lock")
		}
	}()

	r, err := reconciler.New(
		reconciler.WithKeyPolicy(c.cfg.keys),
		reconciler.WithFreshSectionsOnly(o.freshSectionsOnly),
		reconciler.WithSections(o.sections...),
	)
	if err != nil {
		return nil, err
	}

	result, err := r.Reconcile(ctx, baseline, fresh)
	if err != nil {
		return result, err
	}

	for _, s := range result.Sections {
		if s.Err != nil {
			logger.Error().Err(s.Err).Str("section", s.Name).Msg("Section not merged")
			continue
		}
		if !o.dryRun {
			if err := baseline.Save(s.Name, s.Records); err != nil {
				s.Err = errors.WrapSection(s.Name, err)
				result.Errors = append(result.Errors, s.Err)
				delete(result.Merged, s.Name)
				logger.Error().Err(err).Str("section", s.Name).Msg("Failed to write section")
				continue
			}
		}
		c.hooks.triggerSectionMerged(s)
	}

	logger.Info().Bool("dry_run", o.dryRun).Msg(result.Summary())
	return result, nil
}
