package changes

import (
	"path"

	"github.com/agentstation/sheetsync/pkg/constants"
)

type options struct {
	dataDir      string
	pairSections map[string]bool
}

func defaultOptions() *options {
	return &options{
		dataDir:      constants.DefaultDataDir,
		pairSections: map[string]bool{},
	}
}

// Option is a function that configures an Extractor.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDataDir sets the repository-relative directory holding section
// files. Headers for files elsewhere end the current section. An empty
// dir accepts section files in any directory.
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir != "" {
			dir = path.Clean(dir)
		}
		o.dataDir = dir
		return nil
	}
}

// WithPairSections names sections whose identifiers are captured together
// with the Handle that follows them in the hunk.
func WithPairSections(sections ...string) Option {
	return func(o *options) error {
		for _, s := range sections {
			o.pairSections[s] = true
		}
		return nil
	}
}
