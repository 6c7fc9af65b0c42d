// Package changes recovers, from unified-diff text of section JSON files,
// the identifiers of the records each hunk touched, and slices those
// records back out of the full baseline.
//
// The extractor never sees the files themselves, only the diff. It walks
// the text line by line:
//
//	seekingSection      waiting for a "diff --git" header naming a data file
//	seekingHunk         inside a data file, waiting for an "@@" marker
//	awaitingIdentifier  inside a hunk, waiting for the first "ID" line
//	awaitingCompanion   ID seen, waiting for the "Handle" that pairs with it
//
// Only the first identifier of each hunk is captured. A hunk spanning two
// records therefore reports only the first.
//
// The companion Handle is read from the post-image only: removed lines are
// skipped, so a renamed Handle pairs with its new value. The search ends
// with the record, at its closing brace or at the next record's "ID" line,
// and the identifier is then captured alone.
//
// Combined diffs of merge commits ("diff --cc", "@@@ -a -b +c @@@") are
// read the same way, with one prefix column per parent.
package changes

import (
	"bufio"
	"context"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

type state int

const (
	seekingSection state = iota
	seekingHunk
	awaitingIdentifier
	awaitingCompanion
)

func (s state) String() string {
	switch s {
	case seekingHunk:
		return "seekingHunk"
	case awaitingIdentifier:
		return "awaitingIdentifier"
	case awaitingCompanion:
		return "awaitingCompanion"
	default:
		return "seekingSection"
	}
}

const (
	diffPrefix     = "diff "
	headerPrefix   = "diff --git "
	combinedPrefix = "diff --cc "
	combinedLong   = "diff --combined "
	hunkPrefix     = "@@"
)

// hunkMarker matches "@@ -a +b @@" and its combined form, which has one
// more "@" and one more "-" range per extra parent.
var hunkMarker = regexp.MustCompile(`^(@@+) ((?:-\d+(?:,\d+)? )+)\+\d+(?:,\d+)? (@@+)`)

// prefixColumns returns the number of line prefix columns a hunk marker
// announces, or 0 when line is not a well-formed marker.
func prefixColumns(line string) int {
	m := hunkMarker.FindStringSubmatch(line)
	if m == nil || m[1] != m[3] {
		return 0
	}
	parents := len(m[1]) - 1
	if strings.Count(m[2], "-") != parents {
		return 0
	}
	return parents
}

// fieldPattern matches `"<name>": "<value>"` or `"<name>": <number>`.
func fieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*(?:"((?:[^"\\]|\\.)*)"|(-?\d+(?:\.\d+)?))`)
}

// Extractor derives a Manifest from diff text.
type Extractor struct {
	dataDir      string
	pairSections map[string]bool
	idPattern    *regexp.Regexp
	pairPattern  *regexp.Regexp
}

// NewExtractor creates an Extractor with options.
func NewExtractor(opts ...Option) (*Extractor, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		dataDir:      o.dataDir,
		pairSections: o.pairSections,
		idPattern:    fieldPattern(constants.FieldID),
		pairPattern:  fieldPattern(constants.FieldHandle),
	}, nil
}

// ExtractFile reads the diff at path. An absent file is a MissingInputError.
func (e *Extractor) ExtractFile(ctx context.Context, file string) (*Manifest, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError("diff", file, err)
		}
		return nil, errors.WrapIO("open", file, err)
	}
	defer func() { _ = f.Close() }()

	return e.extract(ctx, f, file)
}

// Extract reads diff text from r.
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (*Manifest, error) {
	return e.extract(ctx, r, "")
}

// ExtractString is Extract over an in-memory diff.
func (e *Extractor) ExtractString(ctx context.Context, diff string) (*Manifest, error) {
	return e.extract(ctx, strings.NewReader(diff), "")
}

// run carries the state of one pass over a diff.
type run struct {
	m       *Manifest
	state   state
	section string
	marker  int
	columns int
	pending Hunk
	// indent of the pending ID line's body
	indent int
	index   map[string]int
	seen    map[string]map[Entry]bool
}

func (e *Extractor) extract(ctx context.Context, r io.Reader, file string) (*Manifest, error) {
	logger := logging.FromContext(ctx)
	if file != "" {
		logger = logging.FromContext(logging.WithFile(ctx, file))
	}

	st := &run{
		m:     &Manifest{},
		index: map[string]int{},
		seen:  map[string]map[Entry]bool{},
	}

	br := bufio.NewReader(r)
	lineNo := 0
	headers := 0
	content := false
	for {
		raw, readErr := br.ReadString('\n')
		if raw == "" && readErr != nil {
			if readErr != io.EOF {
				return nil, errors.WrapIO("read", file, readErr)
			}
			break
		}
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapResource("extract", "diff", file, errors.ErrCanceled)
			}
		}

		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) != "" {
			content = true
		}

		if strings.HasPrefix(line, diffPrefix) {
			headers++
			st.flush()
			if name, ok := e.sectionOf(line); ok {
				st.enter(name)
			} else {
				st.section, st.state = "", seekingSection
			}
			continue
		}

		if st.state == seekingSection {
			continue
		}

		if strings.HasPrefix(line, hunkPrefix) {
			cols := prefixColumns(line)
			if cols == 0 {
				return nil, errors.NewUnparsableDiffError(file, lineNo, "malformed hunk marker in section "+st.section)
			}
			st.flush()
			st.columns = cols
			st.marker = lineNo
			st.state = awaitingIdentifier
			continue
		}

		switch st.state {
		case awaitingIdentifier:
			id, ok := match(e.idPattern, line)
			if !ok {
				continue
			}
			h := Hunk{Section: st.section, Marker: st.marker, Line: lineNo, ID: id}
			if e.pairSections[st.section] {
				st.pending = h
				st.state = awaitingCompanion
				body := st.body(line)
				st.indent = indentOf(body)
				// A record collapsed onto one line carries its Handle or ends here.
				if !st.removed(line) {
					if handle, ok := match(e.pairPattern, line); ok {
						st.pending.Handle = handle
						st.flush()
					} else if strings.HasSuffix(strings.TrimRight(body, ", "), "}") {
						st.flush()
					}
				}
				continue
			}
			st.capture(h)
			st.state = seekingHunk
		case awaitingCompanion:
			id, hasID := match(e.idPattern, line)
			if !st.removed(line) && (!hasID || id == st.pending.ID) {
				if handle, ok := match(e.pairPattern, line); ok {
					st.pending.Handle = handle
					st.flush()
					continue
				}
			}
			if (hasID && id != st.pending.ID) || closesRecord(st.body(line), st.indent) {
				st.flush()
			}
		}
	}
	st.flush()

	if content && headers == 0 {
		return nil, errors.NewUnparsableDiffError(file, 0, "no \"diff --git\" headers found")
	}

	st.m.Sections = compact(st.m.Sections)
	if st.m.IsEmpty() {
		logger.Info().Int("lines", lineNo).Msg("No changed identifiers found")
	} else {
		logger.Info().
			Int("lines", lineNo).
			Int("sections", len(st.m.Sections)).
			Int("identifiers", st.m.Count()).
			Int("hunks", len(st.m.Hunks)).
			Msg("Extracted changed identifiers")
	}
	return st.m, nil
}

// sectionOf returns the section named by a "diff --git a/<dir>/<Section>.json b/..."
// or "diff --cc <dir>/<Section>.json" header.
func (e *Extractor) sectionOf(line string) (string, bool) {
	var p string
	switch {
	case strings.HasPrefix(line, headerPrefix):
		rest := strings.TrimPrefix(line, headerPrefix)
		if !strings.HasPrefix(rest, "a/") {
			return "", false
		}
		before, _, ok := strings.Cut(rest[2:], " b/")
		if !ok {
			return "", false
		}
		p = before
	case strings.HasPrefix(line, combinedPrefix):
		p = strings.TrimPrefix(line, combinedPrefix)
	case strings.HasPrefix(line, combinedLong):
		p = strings.TrimPrefix(line, combinedLong)
	default:
		return "", false
	}
	p = strings.Trim(p, `"`)
	if path.Ext(p) != constants.SectionExtension {
		return "", false
	}
	if e.dataDir != "" && path.Dir(p) != e.dataDir {
		return "", false
	}
	name := strings.TrimSuffix(path.Base(p), constants.SectionExtension)
	return name, name != ""
}

// enter starts a data-file section.
func (st *run) enter(name string) {
	st.section = name
	st.state = seekingHunk
	if _, ok := st.index[name]; !ok {
		st.index[name] = len(st.m.Sections)
		st.seen[name] = map[Entry]bool{}
		st.m.Sections = append(st.m.Sections, Section{Name: name})
	}
}

// flush records an identifier still waiting for its companion.
func (st *run) flush() {
	if st.state == awaitingCompanion {
		st.capture(st.pending)
		st.pending = Hunk{}
		st.state = seekingHunk
	}
}

func (st *run) capture(h Hunk) {
	st.m.Hunks = append(st.m.Hunks, h)
	e := Entry{ID: h.ID, Handle: h.Handle}
	if st.seen[h.Section][e] {
		return
	}
	st.seen[h.Section][e] = true
	i := st.index[h.Section]
	st.m.Sections[i].Entries = append(st.m.Sections[i].Entries, e)
}

// body strips the hunk line prefix columns.
func (st *run) body(line string) string {
	return line[min(st.columns, len(line)):]
}

// removed reports whether line exists only in a pre-image.
func (st *run) removed(line string) bool {
	return strings.Contains(line[:min(st.columns, len(line))], "-")
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// closesRecord reports whether body is a closing brace no deeper than the
// pending ID field. A nested value closing at that depth ends the search
// early, which only drops the Handle from the entry.
func closesRecord(body string, idIndent int) bool {
	return strings.HasPrefix(strings.TrimSpace(body), "}") && indentOf(body) <= idIndent
}

func match(re *regexp.Regexp, line string) (string, bool) {
	sub := re.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	if sub[1] != "" {
		return unescape(sub[1]), true
	}
	return sub[2], sub[2] != ""
}

// unescape resolves the JSON escapes that can occur in identifiers.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\/`, `/`).Replace(s)
}

func compact(sections []Section) []Section {
	out := sections[:0]
	for _, s := range sections {
		if len(s.Entries) > 0 {
			out = append(out, s)
		}
	}
	return out
}
