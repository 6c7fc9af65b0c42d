package records

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	// KindRaw holds a nested object or array kept verbatim.
	KindRaw
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRaw:
		return "raw"
	default:
		return "null"
	}
}

// Value is a single field value held as JSON text, so numbers keep the
// exact form they were read in.
type Value struct {
	raw string
}

// Null returns the JSON null value.
func Null() Value { return Value{raw: "null"} }

// String returns a string value.
func String(s string) Value {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return Value{raw: strings.TrimSuffix(buf.String(), "\n")}
}

// Int returns an integer value.
func Int(n int64) Value { return Value{raw: strconv.FormatInt(n, 10)} }

// Float returns a floating point value in its shortest exact form.
func Float(f float64) Value { return Value{raw: strconv.FormatFloat(f, 'f', -1, 64)} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{raw: strconv.FormatBool(b)} }

// Number returns a numeric value from its textual form. Text that is not a
// valid JSON number becomes a string value instead.
func Number(text string) Value {
	text = strings.TrimSpace(text)
	if text == "" || !gjson.Valid(text) || gjson.Parse(text).Type != gjson.Number {
		return String(text)
	}
	return Value{raw: text}
}

// Raw wraps already-encoded JSON text. Invalid text becomes a string value.
func Raw(text string) Value {
	if !gjson.Valid(text) {
		return String(text)
	}
	return Value{raw: text}
}

func fromResult(r gjson.Result) Value {
	if r.Raw == "" {
		return Null()
	}
	return Value{raw: r.Raw}
}

// Kind reports the kind of JSON value held.
func (v Value) Kind() Kind {
	if v.raw == "" {
		return KindNull
	}
	switch v.raw[0] {
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	case '{', '[':
		return KindRaw
	default:
		return KindNumber
	}
}

// IsNull reports whether v is JSON null or unset.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// JSON returns the encoded JSON text of v.
func (v Value) JSON() string {
	if v.raw == "" {
		return "null"
	}
	return v.raw
}

// String returns the text form used for display and identifier matching:
// strings unquoted, numbers and booleans as written, null as "".
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindString:
		return gjson.Parse(v.raw).String()
	default:
		return v.raw
	}
}

// Native returns v as a plain Go value (string, int64, float64, bool, nil
// or a decoded nested structure).
func (v Value) Native() any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindString:
		return v.String()
	case KindBool:
		return v.raw == "true"
	case KindNumber:
		if n, err := strconv.ParseInt(v.raw, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.raw, 64); err == nil {
			return f
		}
		return v.raw
	default:
		return gjson.Parse(v.raw).Value()
	}
}

// Equal reports whether two values have the same kind and text form.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	if v.Kind() == KindString {
		return v.String() == other.String()
	}
	return v.JSON() == other.JSON()
}
