package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/sheetsync/pkg/records"
)

// Result represents the outcome of reconciling every section.
type Result struct {
	// Merged holds the merged records of each section that succeeded.
	Merged records.Collection

	// Sections holds per-section outcomes in processing order.
	Sections []*SectionResult

	// Metadata
	Metadata ResultMetadata

	// Issues. Errors are section failures; siblings still ran.
	Errors   []error
	Warnings []error
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Stats summed across sections
	Stats Stats
}

// Stats counts what happened to records.
type Stats struct {
	Inserted    int `json:"inserted" yaml:"inserted"`
	Updated     int `json:"updated" yaml:"updated"`
	Unchanged   int `json:"unchanged" yaml:"unchanged"`
	Tombstoned  int `json:"tombstoned" yaml:"tombstoned"`
	PassThrough int `json:"pass_through" yaml:"pass_through"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Duplicates  int `json:"duplicates" yaml:"duplicates"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Tombstoned += other.Tombstoned
	s.PassThrough += other.PassThrough
	s.Skipped += other.Skipped
	s.Duplicates += other.Duplicates
}

// Changed returns the number of records whose persisted form changes.
func (s Stats) Changed() int {
	return s.Inserted + s.Updated + s.Tombstoned + s.PassThrough
}

// String returns a compact summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d inserted, %d updated, %d unchanged, %d tombstoned, %d passed through, %d skipped",
		s.Inserted, s.Updated, s.Unchanged, s.Tombstoned, s.PassThrough, s.Skipped)
}

// SectionResult is the outcome for a single section.
type SectionResult struct {
	Name     string
	KeyField string
	Records  []records.Record
	Stats    Stats
	Warnings []error
	Err      error
}

// IsSuccess returns true if the section merged.
func (s *SectionResult) IsSuccess() bool {
	return s.Err == nil
}

// IsSuccess returns true if every section merged.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// HasChanges returns true if any section's persisted form changes.
func (r *Result) HasChanges() bool {
	return r.Metadata.Stats.Changed() > 0
}

// Section returns the result of the named section, if processed.
func (r *Result) Section(name string) (*SectionResult, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var b strings.Builder
	if !r.IsSuccess() {
		fmt.Fprintf(&b, "Reconciliation finished with %d failed sections. ", len(r.Errors))
	} else {
		b.WriteString("Reconciliation successful. ")
	}
	if !r.HasChanges() {
		b.WriteString("No changes detected.")
	} else {
		fmt.Fprintf(&b, "%d sections: %s.", len(r.Merged), r.Metadata.Stats)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, " %d warnings.", len(r.Warnings))
	}
	return b.String()
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Merged:   make(records.Collection),
		Errors:   []error{},
		Warnings: []error{},
		Metadata: ResultMetadata{
			StartTime: utc.Now().Time,
		},
	}
}

func (r *Result) finish() {
	r.Metadata.EndTime = utc.Now().Time
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

func (r *Result) add(s *SectionResult) {
	r.Sections = append(r.Sections, s)
	r.Warnings = append(r.Warnings, s.Warnings...)
	if s.Err != nil {
		r.Errors = append(r.Errors, s.Err)
		return
	}
	r.Merged[s.Name] = s.Records
	r.Metadata.Stats.Add(s.Stats)
}
