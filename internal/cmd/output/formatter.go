// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

// Format is an output format name.
type Format string

// Supported formats. Wide is a table with extra columns and untruncated
// cells.
const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// IsTable reports whether f renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide
}

// ParseFormat validates s. The empty string is accepted and means
// "detect from the terminal".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", FormatTable, FormatWide, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errors.NewValidationError("format", s, "must be one of: table, wide, json, yaml")
}

// DetectFormat returns explicit when set, a table on terminals, and JSON
// when output is piped (CI logs, scripts).
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// Formatter writes data in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats render
// as tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return jsonFormatter{indent: "  "}
	case FormatYAML:
		return yamlFormatter{}
	default:
		return tableFormatter{wide: format == FormatWide}
	}
}

type jsonFormatter struct {
	indent string
}

func (f jsonFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.indent != "" {
		enc.SetIndent("", f.indent)
	}
	return enc.Encode(data)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// tableFormatter renders table.Data and record lists directly, and any
// other struct as a property table. Everything else falls back to JSON.
type tableFormatter struct {
	wide bool
}

func (f tableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case table.Data:
		return f.write(w, v)
	case *table.Data:
		return f.write(w, *v)
	case []records.Record:
		return f.write(w, table.RecordsToTableData(v))
	}
	if d, ok := PropertiesTable(data); ok {
		return f.write(w, d)
	}
	return jsonFormatter{indent: "  "}.Format(w, data)
}

// maxCell is the widest cell a narrow table shows.
const maxCell = 48

func (f tableFormatter) write(w io.Writer, data table.Data) error {
	var config tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			align[i] = twAlign(a)
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		t.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if !f.wide {
			row = truncate(row)
		}
		if err := t.Append(cells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func twAlign(a table.Align) tw.Align {
	switch a {
	case table.AlignLeft:
		return tw.AlignLeft
	case table.AlignCenter:
		return tw.AlignCenter
	case table.AlignRight:
		return tw.AlignRight
	}
	return tw.Skip
}

func truncate(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		if r := []rune(c); len(r) > maxCell {
			c = string(r[:maxCell-1]) + "…"
		}
		out[i] = c
	}
	return out
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

// PropertiesTable lays out a struct (or pointer to one) as Property/Value
// rows named after its json tags. Nested structs are flattened with a
// dotted prefix and nil pointers show as "-".
func PropertiesTable(data any) (table.Data, bool) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return table.Data{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return table.Data{}, false
	}

	d := table.Data{
		Headers:         []string{"Property", "Value"},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignLeft},
	}
	appendProperties(&d, "", v)
	return d, true
}

func appendProperties(d *table.Data, prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := propertyName(field)
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				d.Rows = append(d.Rows, []string{name, "-"})
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			appendProperties(d, name, fv)
			continue
		}
		d.Rows = append(d.Rows, []string{name, fmt.Sprintf("%v", fv.Interface())})
	}
}

// propertyName title-cases a field's json name ("push_attempts" becomes
// "Push Attempts"). Fields tagged "-" are hidden.
func propertyName(field reflect.StructField) string {
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch tag {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}
