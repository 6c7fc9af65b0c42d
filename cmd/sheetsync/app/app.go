// Package app wires the sheetsync CLI: configuration from files, the
// environment and flags, the logger, and the client every command shares.
package app

import (
	"io"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/vcs/git"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

var _ application.Application = (*App)(nil)

// BuildInfo identifies the binary. Release builds fill it through
// -ldflags.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	BuiltBy string `json:"built_by" yaml:"built_by"`
	Go      string `json:"go" yaml:"go"`
}

// App holds the CLI's configuration, logger and lazily built client.
type App struct {
	build  BuildInfo
	config *Config
	flags  rootFlags
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer

	clientOnce sync.Once
	client     sheetsync.Client
	clientErr  error
}

// New loads the configuration from the environment and config files,
// then applies opts.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	logger := NewLogger(config)

	app := &App{
		build: BuildInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
			BuiltBy: builtBy,
			Go:      runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH,
		},
		config: config,
		logger: &logger,
	}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Build returns the build information.
func (a *App) Build() BuildInfo { return a.build }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Client returns the sheetsync client. It is built from the settled
// config on first use, after flags are applied.
func (a *App) Client() (sheetsync.Client, error) {
	a.clientOnce.Do(func() {
		if a.client != nil {
			return
		}
		a.client, a.clientErr = sheetsync.New(a.buildClientOptions()...)
		if a.clientErr != nil {
			a.clientErr = errors.WrapResource("create", "client", "", a.clientErr)
		}
	})
	return a.client, a.clientErr
}

// buildClientOptions constructs client options from the app configuration.
func (a *App) buildClientOptions() []sheetsync.Option {
	cfg := a.config
	opts := []sheetsync.Option{
		sheetsync.WithWorkspace(cfg.Workspace),
		sheetsync.WithKeyPolicy(reconciler.NewKeyPolicy(cfg.KeyField, cfg.IDSections...)),
		sheetsync.WithExcludedSheets(cfg.ExcludedSheets...),
		sheetsync.WithPairSections(cfg.PairSections...),
		sheetsync.WithPublisher(a.publisher()),
	}

	// Empty paths keep the client defaults.
	paths := []struct {
		value string
		opt   func(string) sheetsync.Option
	}{
		{cfg.DataDir, sheetsync.WithDataDir},
		{cfg.ExportDir, sheetsync.WithExportDir},
		{cfg.WorkbookDir, sheetsync.WithWorkbookDir},
		{cfg.WorkbookOutputDir, sheetsync.WithWorkbookOutputDir},
		{cfg.DiffFile, sheetsync.WithDiffFile},
		{cfg.ManifestFile, sheetsync.WithManifestFile},
		{cfg.ChangesDir, sheetsync.WithChangesDir},
	}
	for _, p := range paths {
		if p.value != "" {
			opts = append(opts, p.opt(p.value))
		}
	}
	if cfg.DiffDataDir != "" {
		opts = append(opts, sheetsync.WithDiffDataDir(cfg.DiffDataDir))
	}
	return opts
}

func (a *App) publisher() *git.Publisher {
	cfg := a.config.Git
	root := a.config.Workspace
	return git.New(git.Config{
		RepoRoot:    root,
		Remote:      cfg.Remote,
		Token:       cfg.Token,
		Repository:  cfg.Repository,
		Branch:      cfg.Branch,
		AuthorName:  cfg.AuthorName,
		AuthorEmail: cfg.AuthorEmail,
		Policy: git.PushPolicy{
			Attempts:       cfg.PushAttempts,
			Backoff:        cfg.PushBackoff,
			RebaseOnReject: cfg.RebaseOnReject,
			ForceOnFinal:   cfg.ForcePush,
		},
	})
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c sheetsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
