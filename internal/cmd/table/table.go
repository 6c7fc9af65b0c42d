// Package table converts pipeline results into rows for CLI tables.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/sheetsync/internal/cmd/emoji"
	"github.com/agentstation/sheetsync/internal/workbook"
	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/records"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CountsToTableData renders a section -> record count map, sorted by section.
func CountsToTableData(counts map[string]int) Data {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return Data{
		Headers:         []string{"Section", "Records"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// MergeToTableData renders per-section merge statistics. Wide adds the
// identifying field and the skipped and duplicate counts.
func MergeToTableData(res *reconciler.Result, wide bool) Data {
	headers := []string{"", "Section", "Inserted", "Updated", "Unchanged", "Deleted", "Pass-through"}
	align := []Align{AlignCenter, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Key", "Skipped", "Duplicates")
		align = append(align, AlignLeft, AlignRight, AlignRight)
	}

	rows := make([][]string, 0, len(res.Sections))
	for _, s := range res.Sections {
		row := []string{
			StatusIcon(s),
			s.Name,
			strconv.Itoa(s.Stats.Inserted),
			strconv.Itoa(s.Stats.Updated),
			strconv.Itoa(s.Stats.Unchanged),
			strconv.Itoa(s.Stats.Tombstoned),
			strconv.Itoa(s.Stats.PassThrough),
		}
		if wide {
			row = append(row, s.KeyField, strconv.Itoa(s.Stats.Skipped), strconv.Itoa(s.Stats.Duplicates))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// StatusIcon marks a section as failed, merged with warnings, or merged.
func StatusIcon(s *reconciler.SectionResult) string {
	switch {
	case !s.IsSuccess():
		return emoji.Error
	case len(s.Warnings) > 0:
		return emoji.Warning
	}
	return emoji.Success
}

// ManifestToTableData renders changed identifiers per section.
func ManifestToTableData(m *changes.Manifest) Data {
	var sections []changes.Section
	if m != nil {
		sections = m.Sections
	}
	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		entries := make([]string, len(s.Entries))
		for i, e := range s.Entries {
			entries[i] = e.String()
		}
		rows = append(rows, []string{s.Name, strconv.Itoa(len(s.Entries)), strings.Join(entries, ", ")})
	}
	return Data{
		Headers:         []string{"Section", "Changed", "Identifiers"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// SliceToTableData renders the number of records extracted per section.
func SliceToTableData(res *changes.SliceResult) Data {
	counts := make(map[string]int, len(res.Sections))
	for name, recs := range res.Sections {
		counts[name] = len(recs)
	}
	return CountsToTableData(counts)
}

// RecordsToTableData lays records out the way an exported sheet does: one
// column per field name, in first-seen order. Missing and null fields are
// blank.
func RecordsToTableData(recs []records.Record) Data {
	columns := workbook.Columns(recs)
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(columns))
		for i, c := range columns {
			if v, ok := rec.Get(c); ok && !v.IsNull() {
				row[i] = v.String()
			}
		}
		rows = append(rows, row)
	}
	return Data{Headers: columns, Rows: rows}
}
