package changes

import (
	"context"
	"strings"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/records"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// Slice returns the baseline records referenced by entries, in baseline
// order. An entry carrying a Handle matches only the record with both the
// same ID and the same Handle.
func Slice(baseline []records.Record, entries []Entry) []records.Record {
	ids := make(map[string]bool, len(entries))
	pairs := make(map[Entry]bool, len(entries))
	for _, e := range entries {
		if e.Handle == "" {
			ids[e.ID] = true
		} else {
			pairs[e] = true
		}
	}

	var out []records.Record
	for _, rec := range baseline {
		id, ok := reconciler.Identifier(rec, constants.FieldID)
		if !ok {
			continue
		}
		if ids[id] || (len(pairs) > 0 && pairs[Entry{ID: id, Handle: rec.Text(constants.FieldHandle)}]) {
			out = append(out, rec)
		}
	}
	return out
}

// SliceResult holds the change-only collections cut from a baseline.
type SliceResult struct {
	// Sections holds the non-empty slices.
	Sections records.Collection

	// Errors are per-section failures; other sections still ran.
	Errors []error

	// Warnings note sections listed in the manifest but absent from the
	// baseline, or whose identifiers matched no record.
	Warnings []error
}

// Count returns the number of sliced records.
func (r *SliceResult) Count() int {
	n := 0
	for _, recs := range r.Sections {
		n += len(recs)
	}
	return n
}

// SliceAll slices every manifest section out of baseline.
func SliceAll(ctx context.Context, m *Manifest, baseline records.Source) (*SliceResult, error) {
	res := &SliceResult{Sections: records.Collection{}}
	if m.IsEmpty() {
		return res, nil
	}

	for _, s := range m.Sections {
		if err := ctx.Err(); err != nil {
			return res, errors.WrapResource("slice", "section", s.Name, errors.ErrCanceled)
		}
		logger := logging.FromContext(logging.WithSection(ctx, s.Name))

		recs, err := baseline.Load(s.Name)
		switch {
		case errors.IsMissingInput(err):
			res.Warnings = append(res.Warnings, err)
			logger.Warn().Err(err).Msg("Manifest section has no baseline")
			continue
		case err != nil:
			res.Errors = append(res.Errors, errors.WrapSection(s.Name, err))
			logger.Error().Err(err).Msg("Failed to load baseline section")
			continue
		}

		sliced := Slice(recs, s.Entries)
		if len(sliced) == 0 {
			w := errors.NewNotFoundError(s.Name+" records", strings.Join(s.IDs(), ", "))
			res.Warnings = append(res.Warnings, w)
			logger.Warn().Strs("ids", s.IDs()).Msg("No baseline records matched")
			continue
		}
		res.Sections[s.Name] = sliced
		logger.Debug().Int("records", len(sliced)).Msg("Sliced changed records")
	}
	return res, nil
}
