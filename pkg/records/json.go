package records

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   constants.JSONIndent,
	SortKeys: false,
}

func errMissingSection(section string) error {
	return errors.NewMissingInputError("section", section, nil)
}

// Decode parses a JSON array of flat objects. Field order is preserved.
func Decode(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, &errors.ParseError{Format: "json", Message: "invalid JSON", Err: errors.ErrInvalidInput}
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, &errors.ParseError{Format: "json", Message: "expected an array of records", Err: errors.ErrInvalidInput}
	}

	var (
		out []Record
		err error
	)
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = &errors.ParseError{
				Format:  "json",
				Message: "element " + strconv.Itoa(len(out)) + " is not an object",
				Err:     errors.ErrInvalidInput,
			}
			return false
		}
		out = append(out, recordFromResult(item))
		return true
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// DecodeRecord parses a single JSON object.
func DecodeRecord(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, &errors.ParseError{Format: "json", Message: "invalid JSON", Err: errors.ErrInvalidInput}
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return Record{}, &errors.ParseError{Format: "json", Message: "expected an object", Err: errors.ErrInvalidInput}
	}
	return recordFromResult(res), nil
}

func recordFromResult(obj gjson.Result) Record {
	var r Record
	obj.ForEach(func(key, val gjson.Result) bool {
		r.Set(key.String(), fromResult(val))
		return true
	})
	return r
}

// Encode renders records as a JSON array indented with four spaces.
func Encode(recs []Record) []byte {
	return pretty.PrettyOptions(EncodeCompact(recs), prettyOptions)
}

// EncodeCompact renders records as a single-line JSON array.
func EncodeCompact(recs []Record) []byte {
	buf := []byte{'['}
	for i, r := range recs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendRecord(buf, r)
	}
	return append(buf, ']')
}

func appendRecord(buf []byte, r Record) []byte {
	buf = append(buf, '{')
	for i, f := range r.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, String(f.Name).raw...)
		buf = append(buf, ':')
		buf = append(buf, f.Value.JSON()...)
	}
	return append(buf, '}')
}
