package changes

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// manifestSeparator splits a section name from its identifiers.
const manifestSeparator = " -> "

// Entry is a changed record reference. Handle is set only for sections
// extracted with a companion handle.
type Entry struct {
	ID     string `json:"id" yaml:"id"`
	Handle string `json:"handle,omitempty" yaml:"handle,omitempty"`
}

// String renders the entry as written in the manifest: "id" or "id [handle]".
func (e Entry) String() string {
	if e.Handle == "" {
		return e.ID
	}
	return e.ID + " [" + e.Handle + "]"
}

func parseEntry(s string) Entry {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "]") {
		if i := strings.LastIndex(s, " ["); i > 0 {
			return Entry{ID: s[:i], Handle: s[i+2 : len(s)-1]}
		}
	}
	return Entry{ID: s}
}

// Section lists the changed entries of one section in first-seen order.
type Section struct {
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// IDs returns the entry identifiers.
func (s Section) IDs() []string {
	ids := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Hunk is a single identifier capture, kept with its position in the diff.
type Hunk struct {
	Section string `json:"section" yaml:"section"`
	Marker  int    `json:"marker" yaml:"marker"` // line of the @@ marker
	Line    int    `json:"line" yaml:"line"`     // line the identifier was read from
	ID      string `json:"id" yaml:"id"`
	Handle  string `json:"handle,omitempty" yaml:"handle,omitempty"`
}

// Manifest is the set of changed identifiers per section. An empty
// manifest means the diff touched no identified record.
type Manifest struct {
	Sections []Section `json:"sections" yaml:"sections"`

	// Hunks holds every capture in diff order, duplicates included.
	// It is empty for a manifest read back with ParseManifest.
	Hunks []Hunk `json:"hunks,omitempty" yaml:"hunks,omitempty"`
}

// IsEmpty reports whether no identifiers were found. Like the other
// accessors it accepts a nil manifest, which error returns leave behind.
func (m *Manifest) IsEmpty() bool {
	return m == nil || len(m.Sections) == 0
}

// Names returns the section names in manifest order.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.Sections))
	for i, s := range m.Sections {
		names[i] = s.Name
	}
	return names
}

// Section returns the named section.
func (m *Manifest) Section(name string) (Section, bool) {
	if m == nil {
		return Section{}, false
	}
	for _, s := range m.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Count returns the number of distinct entries across sections.
func (m *Manifest) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Sections {
		n += len(s.Entries)
	}
	return n
}

// String renders the manifest text, one "Section -> id1, id2" line per
// section. A nil manifest renders as "".
func (m *Manifest) String() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range m.Sections {
		b.WriteString(s.Name)
		b.WriteString(manifestSeparator)
		for i, e := range s.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo implements io.WriterTo.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, m.String())
	return int64(n), err
}

// ParseManifest reads manifest text. Blank lines are ignored; sections
// repeated across lines are merged.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	pos := map[string]int{}
	seen := map[string]map[Entry]bool{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		name, list, ok := strings.Cut(text, strings.TrimSpace(manifestSeparator))
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &errors.ParseError{
				Format:  "manifest",
				Line:    line,
				Message: fmt.Sprintf("expected %q, got %q", "Section -> id, ...", text),
			}
		}

		i, exists := pos[name]
		if !exists {
			i = len(m.Sections)
			pos[name] = i
			seen[name] = map[Entry]bool{}
			m.Sections = append(m.Sections, Section{Name: name})
		}
		for _, tok := range strings.Split(list, ",") {
			e := parseEntry(tok)
			if e.ID == "" || seen[name][e] {
				continue
			}
			seen[name][e] = true
			m.Sections[i].Entries = append(m.Sections[i].Entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", "manifest", err)
	}

	// Drop sections that listed nothing.
	kept := m.Sections[:0]
	for _, s := range m.Sections {
		if len(s.Entries) > 0 {
			kept = append(kept, s)
		}
	}
	m.Sections = kept
	return m, nil
}
