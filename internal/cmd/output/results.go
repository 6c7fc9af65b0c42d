package output

import (
	"fmt"
	"io"
	"time"

	"github.com/agentstation/sheetsync/internal/cmd/emoji"
	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/records"
)

// MergeReport is the serializable form of a reconciliation result.
type MergeReport struct {
	DryRun   bool             `json:"dry_run" yaml:"dry_run"`
	Success  bool             `json:"success" yaml:"success"`
	Changed  bool             `json:"changed" yaml:"changed"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
	Stats    reconciler.Stats `json:"stats" yaml:"stats"`
	Sections []SectionReport  `json:"sections" yaml:"sections"`
	Errors   []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SectionReport is one section of a MergeReport.
type SectionReport struct {
	Name     string           `json:"name" yaml:"name"`
	KeyField string           `json:"key_field" yaml:"key_field"`
	Records  int              `json:"records" yaml:"records"`
	Stats    reconciler.Stats `json:"stats" yaml:"stats"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewMergeReport builds a MergeReport.
func NewMergeReport(res *reconciler.Result, dryRun bool) *MergeReport {
	r := &MergeReport{
		DryRun:   dryRun,
		Success:  res.IsSuccess(),
		Changed:  res.HasChanges(),
		Duration: res.Metadata.Duration,
		Stats:    res.Metadata.Stats,
		Errors:   messages(res.Errors),
		Warnings: messages(res.Warnings),
	}
	for _, s := range res.Sections {
		sr := SectionReport{Name: s.Name, KeyField: s.KeyField, Records: len(s.Records), Stats: s.Stats}
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
		r.Sections = append(r.Sections, sr)
	}
	return r
}

// ChangesReport is the serializable form of an extraction.
type ChangesReport struct {
	Changed  bool                `json:"changed" yaml:"changed"`
	Manifest map[string][]string `json:"manifest" yaml:"manifest"`
	Records  records.Collection  `json:"records,omitempty" yaml:"records,omitempty"`
	Errors   []string            `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewChangesReport builds a ChangesReport. Either argument may be nil.
func NewChangesReport(m *changes.Manifest, slice *changes.SliceResult) *ChangesReport {
	r := &ChangesReport{Changed: !m.IsEmpty(), Manifest: map[string][]string{}}
	if m != nil {
		for _, s := range m.Sections {
			entries := make([]string, len(s.Entries))
			for i, e := range s.Entries {
				entries[i] = e.String()
			}
			r.Manifest[s.Name] = entries
		}
	}
	if slice != nil {
		r.Changed = r.Changed || slice.Count() > 0
		r.Records = slice.Sections
		r.Errors = messages(slice.Errors)
		r.Warnings = messages(slice.Warnings)
	}
	return r
}

// Render writes v in format. Table formats write tableData instead, when
// given, followed by a status line.
func Render(w io.Writer, format Format, v any, tableData *table.Data, status string) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, v)
	}
	if tableData != nil && len(tableData.Rows) > 0 {
		if err := NewFormatter(format).Format(w, *tableData); err != nil {
			return err
		}
	}
	if status != "" {
		_, err := fmt.Fprintln(w, status)
		return err
	}
	return nil
}

// Status prefixes msg with a success, warning or error symbol.
func Status(ok bool, warnings int, msg string) string {
	switch {
	case !ok:
		return emoji.Error + " " + msg
	case warnings > 0:
		return emoji.Warning + " " + msg
	}
	return emoji.Success + " " + msg
}

// Skipped prefixes msg with the skipped-work symbol.
func Skipped(msg string) string {
	return emoji.Optional + " " + msg
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
