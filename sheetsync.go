// Package sheetsync keeps a version-controlled JSON snapshot of store data
// (one <Section>.json file per section: Products, Pages, Redirects, ...)
// in step with spreadsheet exports.
//
// A typical run imports a workbook into JSON sections, merges them into
// the snapshot, and publishes the result:
//
//	client, err := sheetsync.New(sheetsync.WithWorkspace(os.Getenv("GITHUB_WORKSPACE")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := client.Import(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	result, err := client.Merge(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
// The reverse direction turns a diff of the snapshot into a change-only
// set of sections ready for re-import:
//
//	changes, err := client.Changes(ctx)
//	if changes.Manifest.IsEmpty() {
//	    // nothing changed, skip export and publish
//	}
package sheetsync

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agentstation/sheetsync/internal/vcs/git"
	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client runs the sheetsync pipelines.
type Client interface {
	// Import converts the single workbook in the workbook directory into
	// JSON sections in the export directory.
	Import(ctx context.Context) (*ImportResult, error)

	// Merge reconciles the export directory into the data directory.
	Merge(ctx context.Context, opts ...MergeOption) (*reconciler.Result, error)

	// ExtractIDs reads the diff file and writes the changed-identifier manifest.
	ExtractIDs(ctx context.Context) (*changes.Manifest, error)

	// ExtractChanges slices the records named by the manifest file out of
	// the data directory into the changes directory.
	ExtractChanges(ctx context.Context) (*changes.SliceResult, error)

	// Changes runs ExtractIDs then ExtractChanges, stopping early when the
	// diff touched no identified record.
	Changes(ctx context.Context) (*ChangesResult, error)

	// Export writes the sections in dir (the data directory when empty) to
	// a timestamped workbook.
	Export(ctx context.Context, dir string) (*ExportResult, error)

	// Watch imports and merges every workbook dropped into the workbook
	// directory until ctx is done. A zero settle uses the default quiet
	// period.
	Watch(ctx context.Context, settle time.Duration, opts ...MergeOption) error

	// Publish commits paths and pushes them with the configured publisher.
	Publish(ctx context.Context, paths []string, message string) (*PublishResult, error)

	// Hooks
	OnSectionMerged(SectionMergedHook)
	OnChangesDetected(ChangesDetectedHook)
	OnPublished(PublishedHook)
}

// PublishResult describes a publish run.
type PublishResult = git.PublishResult

// Publisher commits and pushes generated files.
type Publisher interface {
	Publish(ctx context.Context, paths []string, message string) (*PublishResult, error)
}

// client is the default implementation of Client.
type client struct {
	cfg   *config
	hooks *hooks
}

// New creates a Client with options.
func New(opts ...Option) (Client, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &client{cfg: cfg, hooks: newHooks()}, nil
}

// OnSectionMerged registers a callback run after each merged section is written.
func (c *client) OnSectionMerged(fn SectionMergedHook) { c.hooks.OnSectionMerged(fn) }

// OnChangesDetected registers a callback run when a diff yields changes.
func (c *client) OnChangesDetected(fn ChangesDetectedHook) { c.hooks.OnChangesDetected(fn) }

// OnPublished registers a callback run after a successful publish.
func (c *client) OnPublished(fn PublishedHook) { c.hooks.OnPublished(fn) }

// Publish implements Client.
func (c *client) Publish(ctx context.Context, paths []string, message string) (*PublishResult, error) {
	if c.cfg.publisher == nil {
		return nil, &errors.ConfigError{Component: "publisher", Message: "no publisher configured"}
	}
	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = c.cfg.resolve(p)
	}
	res, err := c.cfg.publisher.Publish(ctx, resolved, message)
	if err != nil {
		return res, err
	}
	c.hooks.triggerPublished(res)
	return res, nil
}

// resolve makes a configured path absolute against the workspace.
func (cfg *config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || cfg.workspace == "" {
		return p
	}
	return filepath.Join(cfg.workspace, p)
}
