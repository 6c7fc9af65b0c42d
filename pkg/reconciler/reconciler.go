// Package reconciler merges a freshly exported set of section records into
// a persisted baseline.
//
// The fresh export is authoritative for every record it contains and the
// baseline for everything it does not mention. Records are matched by the
// section's identifying field (see KeyPolicy). A fresh record replaces its
// baseline counterpart wholesale, and a baseline record missing from the
// fresh export is kept with a delete marker (Command = "DELETE") that the
// downstream import format understands.
//
// Merged order is stable:
//
//  1. fresh records whose identifier already existed, in baseline order;
//  2. new fresh records, including records without an identifier, in
//     fresh order;
//  3. tombstoned baseline records, in baseline order.
//
// When an identifier repeats within one input the last record wins and
// takes the slot of the first occurrence.
package reconciler

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/records"
)

// Reconciler merges fresh section records into a baseline.
type Reconciler interface {
	// Reconcile merges every section of fresh into baseline. A section that
	// fails to load is recorded in Result.Errors and does not stop the rest.
	Reconcile(ctx context.Context, baseline, fresh records.Source) (*Result, error)

	// Section merges a single section's records.
	Section(ctx context.Context, name string, baseline, fresh []records.Record) *SectionResult
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	options *options
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{options: options}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, baseline, fresh records.Source) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()
	defer result.finish()

	names, err := r.sectionNames(baseline, fresh)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("sections", len(names)).Msg("Reconciling sections")

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, errors.WrapResource("merge", "section", name, errors.ErrCanceled)
		}

		sctx := logging.WithSection(ctx, name)
		base, err := loadSection(sctx, baseline, name, "baseline")
		if err != nil {
			result.add(&SectionResult{Name: name, KeyField: r.options.keys.Field(name), Err: errors.WrapSection(name, err)})
			continue
		}
		frsh, err := loadSection(sctx, fresh, name, "fresh")
		if err != nil {
			result.add(&SectionResult{Name: name, KeyField: r.options.keys.Field(name), Err: errors.WrapSection(name, err)})
			continue
		}

		result.add(r.Section(sctx, name, base, frsh))
	}

	logger.Info().
		Int("sections", len(result.Merged)).
		Int("failed", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Reconciliation complete")

	return result, nil
}

// sectionNames returns the sorted union of section names, narrowed by options.
func (r *reconciler) sectionNames(baseline, fresh records.Source) ([]string, error) {
	freshNames, err := fresh.Sections()
	if err != nil {
		return nil, errors.WrapResource("list", "fresh sections", "", err)
	}
	set := make(map[string]bool)
	for _, n := range freshNames {
		set[n] = true
	}
	if !r.options.freshSectionsOnly {
		baseNames, err := baseline.Sections()
		if err != nil {
			return nil, errors.WrapResource("list", "baseline sections", "", err)
		}
		for _, n := range baseNames {
			set[n] = true
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		if r.options.sections != nil && !r.options.sections[n] {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// loadSection loads a section, treating an absent one as empty.
func loadSection(ctx context.Context, src records.Source, name, origin string) ([]records.Record, error) {
	recs, err := src.Load(name)
	if errors.IsMissingInput(err) {
		logging.FromContext(ctx).Debug().Str("origin", origin).Msg("Section absent, treating as empty")
		return nil, nil
	}
	return recs, err
}

// keyed is a record slot in input order.
type keyed struct {
	id  string
	rec records.Record
	ok  bool // false for records without an identifier
}

// Section implements Reconciler.
func (r *reconciler) Section(ctx context.Context, name string, baseline, fresh []records.Record) *SectionResult {
	logger := logging.FromContext(ctx)
	field := r.options.keys.Field(name)
	res := &SectionResult{Name: name, KeyField: field}

	warn := func(err error) {
		res.Warnings = append(res.Warnings, err)
		logger.Warn().Err(err).Msg("Reconcile warning")
	}

	// Fresh slots. Key-less records pass through as inserts.
	freshSlots, freshIndex, dups := index(fresh, field)
	for _, d := range dups {
		warn(errors.NewValidationError(field, d, fmt.Sprintf("duplicate identifier %q in fresh export, last record wins", d)))
	}
	res.Stats.Duplicates += len(dups)

	baseSlots := make([]keyed, 0, len(baseline))
	baseIndex := make(map[string]int, len(baseline))
	for i, rec := range baseline {
		id, ok := Identifier(rec, field)
		if !ok {
			res.Stats.Skipped++
			warn(errors.NewMalformedRecordError("baseline", name, field, i))
			continue
		}
		if j, seen := baseIndex[id]; seen {
			baseSlots[j].rec = rec
			res.Stats.Duplicates++
			warn(errors.NewValidationError(field, id, fmt.Sprintf("duplicate identifier %q in baseline, last record wins", id)))
			continue
		}
		baseIndex[id] = len(baseSlots)
		baseSlots = append(baseSlots, keyed{id: id, rec: rec, ok: true})
	}

	out := make([]records.Record, 0, len(baseSlots)+len(freshSlots))

	// Existing identifiers keep their baseline position.
	for _, b := range baseSlots {
		j, ok := freshIndex[b.id]
		if !ok {
			continue
		}
		f := freshSlots[j].rec
		if f.Equal(b.rec) {
			res.Stats.Unchanged++
		} else {
			res.Stats.Updated++
		}
		out = append(out, f.Clone())
	}

	// New identifiers and key-less records follow in fresh order.
	for _, f := range freshSlots {
		if !f.ok {
			res.Stats.PassThrough++
			out = append(out, f.rec.Clone())
			continue
		}
		if _, existed := baseIndex[f.id]; existed {
			continue
		}
		res.Stats.Inserted++
		out = append(out, f.rec.Clone())
	}

	// Baseline survivors become tombstones.
	for _, b := range baseSlots {
		if _, ok := freshIndex[b.id]; ok {
			continue
		}
		tomb := b.rec.Clone()
		tomb.Set(r.options.markerField, r.options.markerValue)
		res.Stats.Tombstoned++
		out = append(out, tomb)
	}

	res.Records = out
	logger.Debug().
		Str("key", field).
		Int("inserted", res.Stats.Inserted).
		Int("updated", res.Stats.Updated).
		Int("tombstoned", res.Stats.Tombstoned).
		Msg("Section reconciled")
	return res
}

// index groups records by identifier. The first occurrence fixes the slot
// and the last supplies the contents. It returns the repeated identifiers.
func index(recs []records.Record, field string) ([]keyed, map[string]int, []string) {
	slots := make([]keyed, 0, len(recs))
	idx := make(map[string]int, len(recs))
	var dups []string
	for _, rec := range recs {
		id, ok := Identifier(rec, field)
		if !ok {
			slots = append(slots, keyed{rec: rec})
			continue
		}
		if j, seen := idx[id]; seen {
			slots[j].rec = rec
			dups = append(dups, id)
			continue
		}
		idx[id] = len(slots)
		slots = append(slots, keyed{id: id, rec: rec, ok: true})
	}
	return slots, idx, dups
}
