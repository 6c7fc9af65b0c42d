package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
		text string
		json string
	}{
		{"string", String("home"), KindString, "home", `"home"`},
		{"escaped string", String(`a "quoted" <b>`), KindString, `a "quoted" <b>`, `"a \"quoted\" <b>"`},
		{"int", Int(42), KindNumber, "42", "42"},
		{"large int keeps form", Number("123456789012"), KindNumber, "123456789012", "123456789012"},
		{"float", Float(19.5), KindNumber, "19.5", "19.5"},
		{"bool", Bool(true), KindBool, "true", "true"},
		{"null", Null(), KindNull, "", "null"},
		{"zero value is null", Value{}, KindNull, "", "null"},
		{"leading zero is text", Number("0012"), KindString, "0012", `"0012"`},
		{"raw object", Raw(`{"a":1}`), KindRaw, `{"a":1}`, `{"a":1}`},
		{"invalid raw", Raw(`{oops`), KindString, "{oops", `"{oops"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.Equal(t, tt.text, tt.v.String())
			assert.Equal(t, tt.json, tt.v.JSON())
		})
	}
}

func TestValueNative(t *testing.T) {
	assert.Equal(t, int64(7), Int(7).Native())
	assert.Equal(t, 2.25, Number("2.25").Native())
	assert.Equal(t, "x", String("x").Native())
	assert.Equal(t, false, Bool(false).Native())
	assert.Nil(t, Null().Native())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, String("42").Equal(String("42")))
	assert.True(t, Raw(`"A"`).Equal(String("A")), "escapes compare by content")
	assert.False(t, String("42").Equal(Int(42)), "kinds differ")
	assert.Equal(t, String("42").String(), Int(42).String(), "identifier text matches across kinds")
}
