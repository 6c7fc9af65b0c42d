// Package workbook converts between spreadsheet workbooks and section
// records: one sheet per section, a header row naming the fields, and one
// row per record.
package workbook

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/utc"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

// maxSheetName is the longest sheet name spreadsheet applications accept.
const maxSheetName = 31

// maxExactInt bounds the integers a spreadsheet cell stores without
// rounding (15 significant digits).
const maxExactInt = 1_000_000_000_000_000

// Read loads every sheet of the workbook at path as a section, skipping
// excluded sheet names. Blank cells become empty strings; numeric and
// boolean cells keep their type.
func Read(path string, excluded []string) (records.Collection, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError("workbook", path, err)
		}
		return nil, errors.WrapParse("xlsx", path, err)
	}
	defer func() { _ = f.Close() }()

	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	out := records.Collection{}
	for _, sheet := range f.GetSheetList() {
		if skip[sheet] {
			continue
		}
		recs, err := readSheet(f, sheet)
		if err != nil {
			return nil, errors.WrapSection(sheet, errors.WrapParse("xlsx", path, err))
		}
		out[sheet] = recs
	}
	return out, nil
}

func readSheet(f *excelize.File, sheet string) ([]records.Record, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	recs := []records.Record{}
	if len(rows) == 0 {
		return recs, nil
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	header := rows[0]
	for r := 1; r < len(rows); r++ {
		if blank(rows[r]) {
			continue
		}
		var rec records.Record
		for c, name := range header {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			v, err := cellValue(f, sheet, rows, raw, r, c)
			if err != nil {
				return nil, err
			}
			rec.Set(name, v)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// cellValue types a cell from its stored type, falling back to the
// displayed text.
func cellValue(f *excelize.File, sheet string, rows, raw [][]string, r, c int) (records.Value, error) {
	text := at(rows, r, c)
	if text == "" {
		return records.String(""), nil
	}

	cell, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return records.Value{}, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return records.Value{}, err
	}

	rawText := at(raw, r, c)
	switch typ {
	case excelize.CellTypeBool:
		return records.Bool(rawText == "1" || strings.EqualFold(rawText, "true")), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Date and currency formats display as text; keep what the user sees.
		if isNumber(rawText) && isNumber(strings.ReplaceAll(text, ",", "")) {
			return records.Number(normalizeNumber(rawText)), nil
		}
	}
	return records.String(text), nil
}

func at(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// normalizeNumber renders whole numbers without exponent or fraction.
func normalizeNumber(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Write creates a workbook at path with one sheet per section, sorted by
// name. Columns are the union of field names in first-seen order.
func Write(path string, sections records.Collection) error {
	names := sections.Names()
	if len(names) == 0 {
		return &errors.ValidationError{Field: "sections", Message: "nothing to export"}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	for i, name := range names {
		if len(name) > maxSheetName {
			return &errors.ValidationError{Field: "sheet", Value: name, Message: "name longer than 31 characters"}
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return errors.WrapSection(name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.WrapSection(name, err)
		}
		if err := writeSheet(f, name, sections[name]); err != nil {
			return errors.WrapSection(name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, recs []records.Record) error {
	columns := Columns(recs)
	if len(columns) == 0 {
		return nil
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range recs {
		row := make([]any, len(columns))
		for j, c := range columns {
			v, ok := rec.Get(c)
			if !ok || v.IsNull() {
				row[j] = ""
				continue
			}
			row[j] = cellNative(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellNative keeps numbers that would lose precision as text.
func cellNative(v records.Value) any {
	switch v.Kind() {
	case records.KindNumber:
		switch n := v.Native().(type) {
		case int64:
			if n >= maxExactInt || n <= -maxExactInt {
				return v.String()
			}
			return n
		case float64:
			if strconv.FormatFloat(n, 'f', -1, 64) != v.String() {
				return v.String()
			}
			return n
		default:
			return v.String()
		}
	case records.KindRaw:
		return v.JSON()
	default:
		return v.Native()
	}
}

// Columns returns the union of field names in first-seen order.
func Columns(recs []records.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range recs {
		for _, name := range r.Names() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// FindSingle returns the one workbook in dir. Spreadsheet lock files
// ("~$" prefix) are ignored. No workbook is a MissingInputError and more
// than one a ValidationError.
func FindSingle(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewMissingInputError("workbook directory", dir, err)
		}
		return "", errors.WrapIO("read", dir, err)
	}

	var found []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") || !strings.EqualFold(filepath.Ext(name), constants.WorkbookExtension) {
			continue
		}
		found = append(found, name)
	}
	sort.Strings(found)

	switch len(found) {
	case 0:
		return "", errors.NewMissingInputError("workbook", filepath.Join(dir, "*"+constants.WorkbookExtension), nil)
	case 1:
		return filepath.Join(dir, found[0]), nil
	default:
		return "", &errors.ValidationError{
			Field:   "workbook",
			Value:   found,
			Message: "expected exactly one workbook in " + dir + ", found " + strings.Join(found, ", "),
		}
	}
}

// ExportName returns the timestamped file name for an export made at t.
func ExportName(t utc.Time) string {
	return "Export_" + t.Format(constants.TimeFormatFilename) + constants.WorkbookExtension
}
