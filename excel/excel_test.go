// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// excel_test.go — workbook round trips: dtype fidelity through spreadsheet
// cells, NaN and infinity handling, entry order, and object cells.

package excel_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AndrewDonelson/gridio"
	"github.com/AndrewDonelson/gridio/control"
	"github.com/AndrewDonelson/gridio/excel"
)

func newDoc(t *testing.T) *gridio.Document {
	t.Helper()
	doc := gridio.NewDocument()
	doc.Set("name", "workbook grid")
	doc.Set("f_hz", 50.0)

	bus := gridio.NewTable(
		gridio.Column{Name: "name", DType: gridio.DTypeString},
		gridio.Column{Name: "vn_kv", DType: gridio.DTypeFloat64},
		gridio.Column{Name: "in_service", DType: gridio.DTypeBool},
	)
	require.NoError(t, bus.AppendRow(int64(0), "hv", 110.0, true))
	require.NoError(t, bus.AppendRow(int64(1), "spare", math.NaN(), false))
	require.NoError(t, bus.AppendRow(int64(5), "inf", math.Inf(1), true))
	doc.Set("bus", bus)

	line := gridio.NewTable(
		gridio.Column{Name: "from_bus", DType: gridio.DTypeInt64},
		gridio.Column{Name: "to_bus", DType: gridio.DTypeInt64},
	)
	doc.Set("line", line)

	types := gridio.NewDict()
	types.Set("NAYY", 0.642)
	doc.Set("std_types", types)
	return doc
}

func saveLoad(t *testing.T, doc *gridio.Document) *gridio.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "net.xlsx")
	require.NoError(t, excel.Save(path, doc))
	got, err := excel.Load(path)
	require.NoError(t, err)
	return got
}

func TestWorkbookRoundTrip(t *testing.T) {
	doc := newDoc(t)
	got := saveLoad(t, doc)

	assert.True(t, got.Equal(doc))
	assert.Equal(t, doc.Names(), got.Names())
}

func TestWorkbookSpecialFloats(t *testing.T) {
	got := saveLoad(t, newDoc(t))
	bus := got.Table("bus")
	require.NotNil(t, bus)
	assert.True(t, math.IsNaN(bus.At(1, "vn_kv").(float64)))
	assert.True(t, math.IsInf(bus.At(2, "vn_kv").(float64), 1))
	assert.Equal(t, 110.0, bus.At(0, "vn_kv"))
	assert.Equal(t, true, bus.At(0, "in_service"))
	assert.Equal(t, false, bus.At(1, "in_service"))
}

func TestWorkbookEmptyTable(t *testing.T) {
	got := saveLoad(t, newDoc(t))
	line := got.Table("line")
	require.NotNil(t, line)
	assert.Equal(t, 0, line.Len())
	require.Len(t, line.Columns, 2)
	assert.Equal(t, gridio.DTypeInt64, line.Columns[0].DType)
}

func TestWorkbookObjectCells(t *testing.T) {
	doc := newDoc(t)
	control.AddController(doc, control.NewContinuousTapController(0, 1.03))

	got := saveLoad(t, doc)
	ctl := got.Table(gridio.ControllerEntry)
	require.NotNil(t, ctl)
	tap, ok := ctl.At(0, gridio.ObjectColumnName).(*control.ContinuousTapController)
	require.True(t, ok)
	assert.Equal(t, 1.03, tap.VmSetPu())
}

func TestWorkbookIsInspectable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.xlsx")
	require.NoError(t, excel.Save(path, newDoc(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Table sheets carry a human-readable header row.
	rows, err := f.GetRows("bus")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"_index", "name", "vn_kv", "in_service"}, rows[0])

	// The workbook default sheet is gone.
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
	assert.Contains(t, f.GetSheetList(), "_meta")
}

func TestWorkbookSaveLeavesNoDebris(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, excel.Save(filepath.Join(dir, "net.xlsx"), newDoc(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "net.xlsx", entries[0].Name())
}

func TestWorkbookLoadMissingFile(t *testing.T) {
	_, err := excel.Load(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.ErrorIs(t, err, gridio.ErrAdapter)
}
