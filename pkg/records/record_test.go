package records

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSetKeepsPosition(t *testing.T) {
	r := New(F("ID", "1"), F("Handle", "a"), F("Title", "Old"))
	r.Set("Handle", String("b"))
	r.Set("Command", String("DELETE"))

	assert.Equal(t, []string{"ID", "Handle", "Title", "Command"}, r.Names())
	assert.Equal(t, "b", r.Text("Handle"))

	assert.True(t, r.Delete("Title"))
	assert.False(t, r.Delete("Title"))
	assert.Equal(t, []string{"ID", "Handle", "Command"}, r.Names())
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := New(F("ID", "1"))
	c := r.Clone()
	c.Set("ID", String("2"))
	assert.Equal(t, "1", r.Text("ID"))
	assert.Equal(t, "2", c.Text("ID"))
}

func TestRecordEqualIgnoresOrder(t *testing.T) {
	a := New(F("ID", "1"), F("Handle", "a"))
	b := New(F("Handle", "a"), F("ID", "1"))
	assert.True(t, a.Equal(b))

	b.Set("Title", String("x"))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(New(F("ID", "1"), F("Handle", "z"))))
}

func TestRecordMarshalJSON(t *testing.T) {
	r := New(F("Handle", "home"), Field{Name: "Views", Value: Int(3)})
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Handle":"home","Views":3}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Names(), back.Names())
}

func TestRecordMarshalYAML(t *testing.T) {
	r := New(F("Handle", "home"), Field{Name: "Views", Value: Int(3)}, Field{Name: "Published", Value: Bool(true)})
	data, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "Handle: home\nViews: 3\nPublished: true\n", string(data))
}

func TestCollection(t *testing.T) {
	c := Collection{
		"Redirects": {New(F("ID", "9"))},
		"Pages":     {New(F("Handle", "home"))},
	}
	assert.Equal(t, []string{"Pages", "Redirects"}, c.Names())

	recs, err := c.Load("Pages")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = c.Load("Menus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing section: Menus")

	var _ Source = c
}
