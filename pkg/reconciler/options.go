package reconciler

import (
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

// Options configures a reconciler.
type options struct {
	keys              KeyPolicy
	markerField       string
	markerValue       records.Value
	freshSectionsOnly bool
	sections          map[string]bool
}

func defaultOptions() *options {
	return &options{
		keys:        DefaultKeyPolicy(),
		markerField: constants.FieldCommand,
		markerValue: records.String(constants.CommandDelete),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithKeyPolicy sets how sections map to identifying fields.
func WithKeyPolicy(keys KeyPolicy) Option {
	return func(o *options) error {
		o.keys = keys
		return nil
	}
}

// WithDeleteMarker sets the field and value added to tombstoned records.
func WithDeleteMarker(field, value string) Option {
	return func(o *options) error {
		if field == "" {
			return &errors.ValidationError{
				Field:   "marker field",
				Message: "cannot be empty",
			}
		}
		o.markerField = field
		o.markerValue = records.String(value)
		return nil
	}
}

// WithFreshSectionsOnly restricts reconciliation to sections present in
// the fresh export, so a partial export leaves other sections untouched.
func WithFreshSectionsOnly(enabled bool) Option {
	return func(o *options) error {
		o.freshSectionsOnly = enabled
		return nil
	}
}

// WithSections restricts reconciliation to the named sections.
func WithSections(names ...string) Option {
	return func(o *options) error {
		if len(names) == 0 {
			o.sections = nil
			return nil
		}
		o.sections = make(map[string]bool, len(names))
		for _, n := range names {
			o.sections[n] = true
		}
		return nil
	}
}
