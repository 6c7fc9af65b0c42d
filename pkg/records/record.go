// Package records holds the flat, ordered key-value rows that make up a
// section of store data, together with their JSON and YAML encodings.
package records

import (
	"sort"

	"github.com/goccy/go-yaml"
)

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for a string-valued field.
func F(name, value string) Field {
	return Field{Name: name, Value: String(value)}
}

// Record is an ordered mapping of field name to value.
type Record struct {
	fields []Field
}

// New creates a record from fields. A repeated name overwrites the
// earlier field in place.
func New(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the named field is present.
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Text returns the text form of the named field, or "" if absent.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	return v.String()
}

// Set overwrites the named field in place, or appends it when absent.
func (r *Record) Set(name string, v Value) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Delete removes the named field and reports whether it was present.
func (r *Record) Delete(name string) bool {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	return Record{fields: r.Fields()}
}

// Equal reports whether both records carry the same fields and values,
// ignoring field order.
func (r Record) Equal(other Record) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for _, f := range r.fields {
		v, ok := other.Get(f.Name)
		if !ok || !v.Equal(f.Value) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler, keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	return appendRecord(nil, r), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler, keeping field order.
func (r Record) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, yaml.MapItem{Key: f.Name, Value: f.Value.Native()})
	}
	return out, nil
}

// Collection is an in-memory set of sections keyed by name.
type Collection map[string][]Record

// Names returns the section names in sorted order.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sections lists section names; it never fails.
func (c Collection) Sections() ([]string, error) {
	return c.Names(), nil
}

// Load returns the records of a section.
func (c Collection) Load(section string) ([]Record, error) {
	recs, ok := c[section]
	if !ok {
		return nil, errMissingSection(section)
	}
	return recs, nil
}

// Source yields section record collections by name. Both the on-disk
// section store and Collection implement it.
type Source interface {
	Sections() ([]string, error)
	Load(section string) ([]Record, error)
}

// Sink persists section record collections.
type Sink interface {
	Save(section string, recs []Record) error
}
