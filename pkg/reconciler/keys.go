package reconciler

import (
	"strings"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/records"
)

// KeyPolicy maps each section to the field that identifies its records.
// Section names match case-insensitively.
type KeyPolicy struct {
	defaultField string
	overrides    map[string]string
}

// NewKeyPolicy returns a policy keying every section by defaultField
// except idSections, which are keyed by ID.
func NewKeyPolicy(defaultField string, idSections ...string) KeyPolicy {
	if defaultField == "" {
		defaultField = constants.FieldHandle
	}
	p := KeyPolicy{defaultField: defaultField, overrides: make(map[string]string, len(idSections))}
	for _, s := range idSections {
		p.overrides[strings.ToLower(s)] = constants.FieldID
	}
	return p
}

// DefaultKeyPolicy keys sections by Handle, and Redirects, Files and Menus by ID.
func DefaultKeyPolicy() KeyPolicy {
	return NewKeyPolicy(constants.FieldHandle, constants.IDSections...)
}

// With returns a copy of p that keys section by field.
func (p KeyPolicy) With(section, field string) KeyPolicy {
	out := KeyPolicy{defaultField: p.defaultField, overrides: make(map[string]string, len(p.overrides)+1)}
	for k, v := range p.overrides {
		out.overrides[k] = v
	}
	out.overrides[strings.ToLower(section)] = field
	return out
}

// Field returns the identifying field for section.
func (p KeyPolicy) Field(section string) string {
	if f, ok := p.overrides[strings.ToLower(section)]; ok {
		return f
	}
	if p.defaultField == "" {
		return constants.FieldHandle
	}
	return p.defaultField
}

// Identifier returns the text of rec's identifying field. A missing, null
// or empty field yields false.
func Identifier(rec records.Record, field string) (string, bool) {
	v, ok := rec.Get(field)
	if !ok || v.IsNull() {
		return "", false
	}
	id := v.String()
	return id, id != ""
}
