package sheetsync

import (
	"context"
	"os"

	"github.com/agentstation/sheetsync/internal/store"
	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/records"
)

// ChangesResult describes a full change extraction. Slice is nil when the
// manifest is empty.
type ChangesResult struct {
	Manifest *changes.Manifest    `json:"manifest" yaml:"manifest"`
	Slice    *changes.SliceResult `json:"slice,omitempty" yaml:"slice,omitempty"`
}

// NoChanges reports whether the diff touched no identified record.
func (r *ChangesResult) NoChanges() bool {
	return r == nil || r.Manifest.IsEmpty()
}

func (c *client) extractor() (*changes.Extractor, error) {
	return changes.NewExtractor(
		changes.WithDataDir(c.cfg.headerDataDir()),
		changes.WithPairSections(c.cfg.pairSections...),
	)
}

// ExtractIDs implements Client. The manifest file is written even when
// empty so later steps can see that the run happened.
func (c *client) ExtractIDs(ctx context.Context) (*changes.Manifest, error) {
	ctx = logging.WithOperation(ctx, "ids")

	e, err := c.extractor()
	if err != nil {
		return nil, err
	}
	m, err := e.ExtractFile(ctx, c.cfg.resolve(c.cfg.diffFile))
	if err != nil {
		return nil, err
	}

	if err := store.WriteFile(c.cfg.resolve(c.cfg.manifestFile), []byte(m.String())); err != nil {
		return nil, err
	}
	if !m.IsEmpty() {
		c.hooks.triggerChangesDetected(m)
	}
	return m, nil
}

// ExtractChanges implements Client.
func (c *client) ExtractChanges(ctx context.Context) (*changes.SliceResult, error) {
	ctx = logging.WithOperation(ctx, "extract")

	m, err := c.readManifest()
	if err != nil {
		return nil, err
	}
	baseline, err := store.Open(c.cfg.resolve(c.cfg.dataDir))
	if err != nil {
		return nil, err
	}
	return c.slice(ctx, m, baseline)
}

// Changes implements Client.
func (c *client) Changes(ctx context.Context) (*ChangesResult, error) {
	// The data directory is checked before the manifest is written; a
	// missing diff fails inside ExtractIDs before anything is written.
	baseline, err := store.Open(c.cfg.resolve(c.cfg.dataDir))
	if err != nil {
		return nil, err
	}

	m, err := c.ExtractIDs(ctx)
	if err != nil {
		return nil, err
	}
	res := &ChangesResult{Manifest: m}
	if m.IsEmpty() {
		logging.FromContext(ctx).Info().Msg("No changes detected, skipping extraction")
		return res, nil
	}

	res.Slice, err = c.slice(logging.WithOperation(ctx, "extract"), m, baseline)
	return res, err
}

func (c *client) readManifest() (*changes.Manifest, error) {
	path := c.cfg.resolve(c.cfg.manifestFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError("manifest", path, err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := changes.ParseManifest(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return m, nil
}

// slice writes the change-only sections, replacing any earlier output.
func (c *client) slice(ctx context.Context, m *changes.Manifest, baseline *store.Dir) (*changes.SliceResult, error) {
	logger := logging.FromContext(ctx)
	if m.IsEmpty() {
		logger.Info().Msg("Manifest is empty, nothing to extract")
		return &changes.SliceResult{Sections: records.Collection{}}, nil
	}

	res, err := changes.SliceAll(ctx, m, baseline)
	if err != nil {
		return res, err
	}

	out, err := store.Create(c.cfg.resolve(c.cfg.changesDir))
	if err != nil {
		return res, err
	}
	if err := out.Clear(); err != nil {
		return res, err
	}
	if err := out.SaveAll(res.Sections); err != nil {
		return res, err
	}
	logger.Info().
		Int("sections", len(res.Sections)).
		Int("records", res.Count()).
		Str("dir", out.Path()).
		Msg("Extracted changed records")
	return res, nil
}
