package changes_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

func page(i int) records.Record {
	return records.New(
		records.F("ID", fmt.Sprintf("gid://shopify/Page/%d", i)),
		records.F("Handle", fmt.Sprintf("page-%d", i)),
		records.F("Title", fmt.Sprintf("Page %d", i)),
		records.F("Body HTML", fmt.Sprintf("<p>Body of page %d</p>", i)),
		records.F("Author", "Shop Admin"),
		records.F("Template Suffix", ""),
		records.F("Published", "TRUE"),
		records.F("Published At", "2024-03-01T10:00:00Z"),
		records.F("Metafield: title_tag [string]", fmt.Sprintf("Title %d", i)),
		records.F("Metafield: description_tag [string]", "Description"),
	)
}

func ids(recs []records.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text("ID")
	}
	return out
}

// unifiedDiff renders a git-style diff of one section file.
func unifiedDiff(t *testing.T, section string, before, after []records.Record) string {
	t.Helper()
	file := "data/" + section + ".json"
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(records.Encode(before))),
		B:        difflib.SplitLines(string(records.Encode(after))),
		FromFile: "a/" + file,
		ToFile:   "b/" + file,
		Context:  3,
	})
	require.NoError(t, err)
	return fmt.Sprintf("diff --git a/%s b/%s\n", file, file) + text
}

// Slicing the baseline with identifiers extracted from a diff of that
// baseline against a modified copy recovers exactly the modified records.
func TestRoundTripRecoversModifiedRecords(t *testing.T) {
	cases := [][]int{{0, 5}, {0}, {5}, {1, 3, 5}, {2, 4}, {}}

	for _, modified := range cases {
		t.Run(fmt.Sprint(modified), func(t *testing.T) {
			baseline := make([]records.Record, 6)
			for i := range baseline {
				baseline[i] = page(i + 1)
			}
			after := make([]records.Record, len(baseline))
			var want []string
			for i, r := range baseline {
				after[i] = r.Clone()
			}
			for _, i := range modified {
				after[i].Set("Title", records.String("Changed"))
				want = append(want, baseline[i].Text("ID"))
			}

			diff := unifiedDiff(t, "Pages", baseline, after)
			m, err := newExtractor(t).ExtractString(context.Background(), diff)
			require.NoError(t, err)

			if len(modified) == 0 {
				assert.True(t, m.IsEmpty())
				return
			}
			s, ok := m.Section("Pages")
			require.True(t, ok, "diff:\n%s", diff)
			got := changes.Slice(baseline, s.Entries)
			assert.Equal(t, want, ids(got), "diff:\n%s", diff)
		})
	}
}

// Nearby records share a hunk, so only the first is reported.
func TestRoundTripNearbyRecordsShareHunk(t *testing.T) {
	small := func(id, title string) records.Record {
		return records.New(records.F("ID", id), records.F("Handle", "h"+id), records.F("Title", title))
	}
	baseline := []records.Record{small("1", "a"), small("2", "b"), small("3", "c")}
	after := []records.Record{small("1", "a"), small("2", "B"), small("3", "C")}

	m, err := newExtractor(t).ExtractString(context.Background(), unifiedDiff(t, "Pages", baseline, after))
	require.NoError(t, err)
	s, _ := m.Section("Pages")
	assert.Equal(t, []string{"2"}, s.IDs())
}

// A renamed Handle pairs with its new value, which is what the baseline
// holds after the change.
func TestRoundTripPairedHandleRename(t *testing.T) {
	baseline := make([]records.Record, 4)
	for i := range baseline {
		baseline[i] = page(i + 1)
	}
	after := make([]records.Record, len(baseline))
	for i, r := range baseline {
		after[i] = r.Clone()
	}
	after[2].Set("Handle", records.String("renamed"))

	e := newExtractor(t, changes.WithPairSections("Pages"))
	m, err := e.ExtractString(context.Background(), unifiedDiff(t, "Pages", baseline, after))
	require.NoError(t, err)

	s, ok := m.Section("Pages")
	require.True(t, ok)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, changes.Entry{ID: "gid://shopify/Page/3", Handle: "renamed"}, s.Entries[0])

	got := changes.Slice(after, s.Entries)
	assert.Equal(t, []string{"gid://shopify/Page/3"}, ids(got))
}

func TestSlice(t *testing.T) {
	var numeric records.Record
	numeric.Set("ID", records.Int(42))
	numeric.Set("Handle", records.String("answer"))

	baseline := []records.Record{
		records.New(records.F("ID", "1"), records.F("Handle", "home")),
		records.New(records.F("ID", "1"), records.F("Handle", "blog")),
		records.New(records.F("Handle", "no-id")),
		numeric,
		records.New(records.F("ID", "3"), records.F("Handle", "contact")),
	}

	t.Run("by ID in baseline order", func(t *testing.T) {
		got := changes.Slice(baseline, []changes.Entry{{ID: "3"}, {ID: "42"}, {ID: "missing"}})
		assert.Equal(t, []string{"42", "3"}, ids(got))
	})

	t.Run("by ID and Handle", func(t *testing.T) {
		got := changes.Slice(baseline, []changes.Entry{{ID: "1", Handle: "blog"}})
		require.Len(t, got, 1)
		assert.Equal(t, "blog", got[0].Text("Handle"))
	})

	t.Run("by ID matches every record sharing it", func(t *testing.T) {
		got := changes.Slice(baseline, []changes.Entry{{ID: "1"}})
		assert.Len(t, got, 2)
	})
}

type brokenSource struct {
	records.Collection
}

func (b brokenSource) Load(section string) ([]records.Record, error) {
	if section == "Broken" {
		return nil, errors.NewParseError("json", "Broken.json", "invalid JSON", nil)
	}
	return b.Collection.Load(section)
}

func TestSliceAll(t *testing.T) {
	m, err := changes.ParseManifest(strings.NewReader(
		"Pages -> 1\nRedirects -> 9\nBroken -> 1\nMenus -> 404\n"))
	require.NoError(t, err)

	src := brokenSource{records.Collection{
		"Pages": {records.New(records.F("ID", "1")), records.New(records.F("ID", "2"))},
		"Menus": {records.New(records.F("ID", "5"))},
	}}

	res, err := changes.SliceAll(context.Background(), m, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pages"}, res.Sections.Names())
	assert.Equal(t, 1, res.Count())
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "section Broken")
	require.Len(t, res.Warnings, 2)
	assert.True(t, errors.IsMissingInput(res.Warnings[0]))
	assert.True(t, errors.IsNotFound(res.Warnings[1]))
}

func TestSliceAllEmptyManifest(t *testing.T) {
	res, err := changes.SliceAll(context.Background(), &changes.Manifest{}, records.Collection{})
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
}
