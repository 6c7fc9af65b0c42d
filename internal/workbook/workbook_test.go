package workbook

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "export.xlsx")

	var product records.Record
	product.Set("Handle", records.String("shirt"))
	product.Set("Variant SKU", records.String("0012"))
	product.Set("Variant Price", records.Float(19.5))
	product.Set("Variant Inventory Qty", records.Int(7))
	product.Set("Published", records.Bool(true))
	product.Set("Body HTML", records.Null())

	in := records.Collection{
		"Products": {product, records.New(records.F("Handle", "hat"), records.F("Tags", "a, b"))},
		"Pages":    {records.New(records.F("Handle", "home"))},
	}
	require.NoError(t, Write(path, in))

	out, err := Read(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pages", "Products"}, out.Names())

	products := out["Products"]
	require.Len(t, products, 2)
	assert.Equal(t, []string{"Handle", "Variant SKU", "Variant Price", "Variant Inventory Qty", "Published", "Body HTML", "Tags"}, products[0].Names())

	sku, _ := products[0].Get("Variant SKU")
	assert.Equal(t, records.KindString, sku.Kind())
	assert.Equal(t, "0012", sku.String())

	price, _ := products[0].Get("Variant Price")
	assert.Equal(t, records.KindNumber, price.Kind())
	assert.Equal(t, "19.5", price.String())

	qty, _ := products[0].Get("Variant Inventory Qty")
	assert.Equal(t, "7", qty.JSON())

	published, _ := products[0].Get("Published")
	assert.Equal(t, records.KindBool, published.Kind())
	assert.Equal(t, "true", published.String())

	body, _ := products[0].Get("Body HTML")
	assert.Equal(t, `""`, body.JSON(), "blank cells read back as empty strings")

	assert.Equal(t, "", products[1].Text("Variant SKU"))
	assert.Equal(t, "a, b", products[1].Text("Tags"))
}

func TestReadExcludesSheetsAndBlankRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Redirects"))
	require.NoError(t, f.SetSheetRow("Redirects", "A1", &[]any{"ID", "", "Path"}))
	require.NoError(t, f.SetSheetRow("Redirects", "A2", &[]any{"1", "ignored", "/a"}))
	require.NoError(t, f.SetSheetRow("Redirects", "A4", &[]any{"2", "", "/b"}))
	_, err := f.NewSheet("Export Summary")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Export Summary", "A1", "Total"))
	_, err = f.NewSheet("Empty")
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := Read(path, []string{"Export Summary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Empty", "Redirects"}, out.Names())
	assert.Empty(t, out["Empty"])

	redirects := out["Redirects"]
	require.Len(t, redirects, 2)
	assert.Equal(t, []string{"ID", "Path"}, redirects[1].Names())
	assert.Equal(t, "/b", redirects[1].Text("Path"))
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"), nil)
	require.Error(t, err)
}

func TestWriteNothing(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "x.xlsx"), records.Collection{})
	assert.True(t, errors.IsValidationError(err))
}

func TestFindSingle(t *testing.T) {
	dir := t.TempDir()

	_, err := FindSingle(dir)
	assert.True(t, errors.IsMissingInput(err))

	_, err = FindSingle(filepath.Join(dir, "absent"))
	assert.True(t, errors.IsMissingInput(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$Export.xlsx"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Export.XLSX"), nil, 0o644))

	got, err := FindSingle(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Export.XLSX"), got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Other.xlsx"), nil, 0o644))
	_, err = FindSingle(dir)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Export.XLSX, Other.xlsx")
}

func TestExportName(t *testing.T) {
	ts := utc.New(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
	assert.Equal(t, "Export_2024-03-09_140507.xlsx", ExportName(ts))
}

func TestColumns(t *testing.T) {
	cols := Columns([]records.Record{
		records.New(records.F("A", ""), records.F("B", "")),
		records.New(records.F("C", ""), records.F("A", "")),
	})
	assert.Equal(t, []string{"A", "B", "C"}, cols)
}
