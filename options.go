package sheetsync

import (
	"path/filepath"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// config holds the client configuration.
type config struct {
	workspace         string
	dataDir           string
	exportDir         string
	workbookDir       string
	workbookOutputDir string
	diffFile          string
	manifestFile      string
	changesDir        string
	diffDataDir       *string
	keys              reconciler.KeyPolicy
	excludedSheets    []string
	pairSections      []string
	publisher         Publisher
}

func defaultConfig() *config {
	return &config{
		dataDir:           constants.DefaultDataDir,
		exportDir:         constants.DefaultExportDir,
		workbookDir:       constants.DefaultWorkbookDir,
		workbookOutputDir: constants.DefaultWorkbookOutputDir,
		diffFile:          constants.DefaultDiffFile,
		manifestFile:      constants.DefaultManifestFile,
		changesDir:        constants.DefaultChangesDir,
		keys:              reconciler.DefaultKeyPolicy(),
		excludedSheets:    append([]string(nil), constants.ExcludedSheets...),
	}
}

// Option is a function that configures a Client.
type Option func(*config) error

func newConfig(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func pathOption(field string, target func(*config) *string, value string) Option {
	return func(c *config) error {
		if value == "" {
			return &errors.ValidationError{Field: field, Message: "cannot be empty"}
		}
		*target(c) = value
		return nil
	}
}

// WithWorkspace sets the directory relative paths resolve against.
func WithWorkspace(dir string) Option {
	return func(c *config) error {
		c.workspace = dir
		return nil
	}
}

// WithDataDir sets the source-of-truth section directory.
func WithDataDir(dir string) Option {
	return pathOption("data_dir", func(c *config) *string { return &c.dataDir }, dir)
}

// WithExportDir sets the directory imported workbook sections are written to.
func WithExportDir(dir string) Option {
	return pathOption("export_dir", func(c *config) *string { return &c.exportDir }, dir)
}

// WithWorkbookDir sets the directory holding the workbook to import.
func WithWorkbookDir(dir string) Option {
	return pathOption("workbook_dir", func(c *config) *string { return &c.workbookDir }, dir)
}

// WithWorkbookOutputDir sets where exported workbooks are written.
func WithWorkbookOutputDir(dir string) Option {
	return pathOption("workbook_output_dir", func(c *config) *string { return &c.workbookOutputDir }, dir)
}

// WithDiffFile sets the unified diff of the data directory.
func WithDiffFile(path string) Option {
	return pathOption("diff_file", func(c *config) *string { return &c.diffFile }, path)
}

// WithManifestFile sets the changed-identifier manifest path.
func WithManifestFile(path string) Option {
	return pathOption("manifest_file", func(c *config) *string { return &c.manifestFile }, path)
}

// WithChangesDir sets where change-only sections are written.
func WithChangesDir(dir string) Option {
	return pathOption("changes_dir", func(c *config) *string { return &c.changesDir }, dir)
}

// WithDiffDataDir sets the data directory as it appears in diff headers,
// relative to the repository root. An empty dir accepts any directory.
// By default it is the data directory when that is relative.
func WithDiffDataDir(dir string) Option {
	return func(c *config) error {
		c.diffDataDir = &dir
		return nil
	}
}

// WithKeyPolicy sets the identifying field per section.
func WithKeyPolicy(keys reconciler.KeyPolicy) Option {
	return func(c *config) error {
		c.keys = keys
		return nil
	}
}

// WithExcludedSheets sets workbook sheets that are not sections.
func WithExcludedSheets(sheets ...string) Option {
	return func(c *config) error {
		c.excludedSheets = sheets
		return nil
	}
}

// WithPairSections names sections whose diff identifiers are paired with
// a Handle.
func WithPairSections(sections ...string) Option {
	return func(c *config) error {
		c.pairSections = sections
		return nil
	}
}

// WithPublisher sets the publisher used by Publish.
func WithPublisher(p Publisher) Option {
	return func(c *config) error {
		c.publisher = p
		return nil
	}
}

// headerDataDir returns the data directory as diff headers name it.
func (cfg *config) headerDataDir() string {
	if cfg.diffDataDir != nil {
		return *cfg.diffDataDir
	}
	if filepath.IsAbs(cfg.dataDir) {
		return filepath.Base(cfg.dataDir)
	}
	return filepath.ToSlash(filepath.Clean(cfg.dataDir))
}
