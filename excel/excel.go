// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// excel.go — workbook persistence for network documents. Every tabular
// entry becomes a worksheet with a header row, so the document stays
// inspectable in a spreadsheet; everything a worksheet cannot express
// (dtypes, entry order, non-tabular entries, object cells) rides in a
// reserved metadata sheet as canonical text.

// Package excel stores network documents as Excel workbooks and restores
// them with full type fidelity.
package excel

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AndrewDonelson/gridio"
)

// metaSheet is the reserved worksheet carrying the document structure:
// one row per entry with [name, kind, payload].
const metaSheet = "_meta"

// indexHeader labels the row-index column of every table sheet.
const indexHeader = "_index"

// Entry kinds in the metadata sheet.
const (
	kindTable = "table"
	kindJSON  = "json"
)

// Save writes doc to an Excel workbook at path.
func Save(path string, doc *gridio.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(metaSheet); err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	metaRow := 1
	for _, name := range doc.Names() {
		v, _ := doc.Get(name)
		t, isTable := v.(*gridio.Table)
		if !isTable || name == metaSheet {
			text, err := gridio.ToJSON(v)
			if err != nil {
				return gridio.NewAdapterError("excel", "save", err)
			}
			if err := setMetaRow(f, metaRow, name, kindJSON, text); err != nil {
				return err
			}
			metaRow++
			continue
		}
		schema, err := gridio.ToJSON(t.SchemaDict())
		if err != nil {
			return gridio.NewAdapterError("excel", "save", err)
		}
		if err := setMetaRow(f, metaRow, name, kindTable, schema); err != nil {
			return err
		}
		metaRow++
		if err := writeTableSheet(f, name, t); err != nil {
			return err
		}
	}

	// Drop the workbook's default sheet unless a table claimed the name.
	if doc.Table("Sheet1") == nil {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return gridio.NewAdapterError("excel", "save", err)
		}
	}
	// Stage next to the destination so the final rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".workbook-*.xlsx")
	if err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return gridio.NewAdapterError("excel", "save", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return gridio.NewAdapterError("excel", "save", err)
	}
	return nil
}

func setMetaRow(f *excelize.File, row int, name, kind, payload string) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(metaSheet, cell, &[]any{name, kind, payload}); err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	return nil
}

func writeTableSheet(f *excelize.File, name string, t *gridio.Table) error {
	if _, err := f.NewSheet(name); err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, indexHeader)
	for _, c := range t.Columns {
		header = append(header, c.Name)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	for r := 0; r < t.Len(); r++ {
		label, err := gridio.ToJSON(t.Index[r])
		if err != nil {
			return gridio.NewAdapterError("excel", "save", err)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetCellValue(name, cell, label); err != nil {
			return gridio.NewAdapterError("excel", "save", err)
		}
		for c, col := range t.Columns {
			if err := writeCell(f, name, c+2, r+2, col.DType, t.Rows[r][c]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCell(f *excelize.File, sheet string, col, row int, dt gridio.DType, v any) error {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	var out any
	switch dt {
	case gridio.DTypeFloat64:
		fv, ok := v.(float64)
		if !ok {
			if iv, isInt := v.(int64); isInt {
				fv, ok = float64(iv), true
			}
		}
		switch {
		case !ok || math.IsNaN(fv):
			return nil // empty cell reads back as NaN
		case math.IsInf(fv, 1):
			out = "Infinity"
		case math.IsInf(fv, -1):
			out = "-Infinity"
		default:
			out = fv
		}
	case gridio.DTypeInt64, gridio.DTypeBool, gridio.DTypeString:
		out = v
	default: // object cells travel as canonical text
		text, err := gridio.ToJSON(v)
		if err != nil {
			return gridio.NewAdapterError("excel", "save", err)
		}
		out = text
	}
	if err := f.SetCellValue(sheet, cell, out); err != nil {
		return gridio.NewAdapterError("excel", "save", err)
	}
	return nil
}

// Load reads a workbook written by Save back into a document.
func Load(path string, opts ...gridio.Option) (*gridio.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, gridio.NewAdapterError("excel", "load", err)
	}
	defer f.Close()

	meta, err := f.GetRows(metaSheet)
	if err != nil {
		return nil, gridio.NewAdapterError("excel", "load", err)
	}
	doc := gridio.NewDocument()
	for _, row := range meta {
		if len(row) < 3 {
			return nil, gridio.NewAdapterError("excel", "load",
				fmt.Errorf("%w: metadata row has %d cells, want 3", gridio.ErrMalformedPayload, len(row)))
		}
		name, kind, payload := row[0], row[1], row[2]
		switch kind {
		case kindJSON:
			v, err := gridio.FromJSON(payload, opts...)
			if err != nil {
				return nil, gridio.NewAdapterError("excel", "load", err)
			}
			doc.Set(name, v)
		case kindTable:
			t, err := readTableSheet(f, name, payload, opts...)
			if err != nil {
				return nil, err
			}
			doc.Set(name, t)
		default:
			return nil, gridio.NewAdapterError("excel", "load",
				fmt.Errorf("%w: unknown entry kind %q", gridio.ErrMalformedPayload, kind))
		}
	}
	return doc, nil
}

func readTableSheet(f *excelize.File, name, schemaText string, opts ...gridio.Option) (*gridio.Table, error) {
	t, err := tableFromSchema(schemaText)
	if err != nil {
		return nil, err
	}
	if !gridio.EntrySelected(name, opts...) {
		return t, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, gridio.NewAdapterError("excel", "load", err)
	}
	if len(rows) == 0 {
		return t, nil
	}
	for _, row := range rows[1:] {
		label, err := cellValue(gridio.DTypeObject, cellAt(row, 0), opts...)
		if err != nil {
			return nil, gridio.NewAdapterError("excel", "load", err)
		}
		vals := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			vals[c], err = cellValue(col.DType, cellAt(row, c+1), opts...)
			if err != nil {
				return nil, gridio.NewAdapterError("excel", "load",
					fmt.Errorf("sheet %s column %s: %w", name, col.Name, err))
			}
		}
		if err := t.AppendRow(label, vals...); err != nil {
			return nil, gridio.NewAdapterError("excel", "load", err)
		}
	}
	return t, nil
}

func tableFromSchema(schemaText string) (*gridio.Table, error) {
	sv, err := gridio.FromJSON(schemaText)
	if err != nil {
		return nil, gridio.NewAdapterError("excel", "load", err)
	}
	t, err := gridio.TableFromSchema(sv)
	if err != nil {
		return nil, gridio.NewAdapterError("excel", "load", err)
	}
	return t, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func cellValue(dt gridio.DType, raw string, opts ...gridio.Option) (any, error) {
	switch dt {
	case gridio.DTypeFloat64:
		if raw == "" {
			return math.NaN(), nil
		}
		return strconv.ParseFloat(raw, 64)
	case gridio.DTypeInt64:
		return strconv.ParseInt(raw, 10, 64)
	case gridio.DTypeBool:
		return strings.EqualFold(raw, "true") || raw == "1", nil
	case gridio.DTypeString:
		return raw, nil
	default:
		if raw == "" {
			return nil, nil
		}
		return gridio.FromJSON(raw, opts...)
	}
}
