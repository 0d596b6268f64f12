// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// table.go — the tabular entry kind: ordered typed columns, an exactly
// preserved row index (non-contiguous and duplicate labels allowed), and an
// optional object column holding behavioral objects.

package gridio

import "fmt"

// DType is a column's declared data type. It is preserved across a round
// trip even when the column holds no rows: an empty-but-typed table is a
// first-class state, not absence.
type DType string

const (
	DTypeFloat64 DType = "float64"
	DTypeInt64   DType = "int64"
	DTypeBool    DType = "bool"
	DTypeString  DType = "string"
	// DTypeObject marks a column whose cells are arbitrary registered
	// values (behavioral objects, shapes, nested containers) or nil.
	DTypeObject DType = "object"
)

func validDType(dt DType) bool {
	switch dt {
	case DTypeFloat64, DTypeInt64, DTypeBool, DTypeString, DTypeObject:
		return true
	}
	return false
}

// Column is a named, typed table column.
type Column struct {
	Name  string
	DType DType
}

// Table is a tabular document entry.
type Table struct {
	Columns []Column
	Index   []any   // row labels, int64 or string, preserved exactly
	Rows    [][]any // Rows[i] aligns with Columns; len(Rows) == len(Index)

	// ObjectColumn names the column whose cells are behavioral objects.
	// Empty when the table has no object column.
	ObjectColumn string
}

// NewTable builds an empty table with the given column schema.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AppendRow adds a row under the given index label. The number of values
// must match the column count; numeric values normalize to int64/float64.
func (t *Table) AppendRow(index any, values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("gridio: table row has %d values, want %d", len(values), len(t.Columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = normalizeScalar(v)
	}
	t.Index = append(t.Index, normalizeScalar(index))
	t.Rows = append(t.Rows, row)
	return nil
}

// AddColumn appends a column with the given dtype, filling existing rows
// with fill. Adding a dynamic column before encoding preserves its name,
// values and dtype after decode.
func (t *Table) AddColumn(name string, dt DType, fill any) {
	t.Columns = append(t.Columns, Column{Name: name, DType: dt})
	fill = normalizeScalar(fill)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], fill)
	}
}

// RenameColumn renames a column in place, reporting whether it existed.
func (t *Table) RenameColumn(from, to string) bool {
	i := t.ColumnIndex(from)
	if i < 0 {
		return false
	}
	t.Columns[i].Name = to
	if t.ObjectColumn == from {
		t.ObjectColumn = to
	}
	return true
}

// At returns the cell at row position row (not index label) and the named
// column.
func (t *Table) At(row int, column string) any {
	c := t.ColumnIndex(column)
	if c < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][c]
}

// SetAt assigns the cell at row position row and the named column.
func (t *Table) SetAt(row int, column string, v any) {
	c := t.ColumnIndex(column)
	if c < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][c] = normalizeScalar(v)
}

// RowByIndex returns the first row position carrying the given index label,
// or -1.
func (t *Table) RowByIndex(label any) int {
	label = normalizeScalar(label)
	for i, l := range t.Index {
		if scalarEqual(l, label) {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// EmptyLike returns a zero-row table carrying the full column schema and
// object-column designation of t. The selective materializer substitutes
// these for entries outside the requested set.
func (t *Table) EmptyLike() *Table {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Columns: cols, ObjectColumn: t.ObjectColumn}
}

// SchemaDict returns the column layout as a plain mapping of column names,
// dtypes and the object-column designation. Backend adapters store it as
// canonical text beside data a database cannot type on its own.
func (t *Table) SchemaDict() *Dict {
	cols := make([]any, 0, len(t.Columns))
	dtypes := make([]any, 0, len(t.Columns))
	for _, c := range t.Columns {
		cols = append(cols, c.Name)
		dtypes = append(dtypes, string(c.DType))
	}
	schema := NewDict()
	schema.Set("columns", cols)
	schema.Set("dtypes", dtypes)
	schema.Set("object_column", t.ObjectColumn)
	return schema
}

// TableFromSchema rebuilds a zero-row table from a SchemaDict mapping.
func TableFromSchema(v any) (*Table, error) {
	schema, ok := v.(*Dict)
	if !ok {
		return nil, fmt.Errorf("%w: table schema is %T, want mapping", ErrMalformedPayload, v)
	}
	colsV, _ := schema.Get("columns")
	dtypesV, _ := schema.Get("dtypes")
	cols, _ := colsV.([]any)
	dtypes, _ := dtypesV.([]any)
	if len(cols) != len(dtypes) {
		return nil, fmt.Errorf("%w: table schema has %d columns and %d dtypes",
			ErrMalformedPayload, len(cols), len(dtypes))
	}
	t := NewTable()
	for i := range cols {
		name, ok := cols[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: table schema column name is %T", ErrMalformedPayload, cols[i])
		}
		dt, ok := dtypes[i].(string)
		if !ok || !validDType(DType(dt)) {
			return nil, fmt.Errorf("%w: table schema dtype %v", ErrMalformedPayload, dtypes[i])
		}
		t.Columns = append(t.Columns, Column{Name: name, DType: DType(dt)})
	}
	if oc, ok := schema.Get("object_column"); ok {
		if s, ok := oc.(string); ok {
			t.ObjectColumn = s
		}
	}
	return t, nil
}

// Clone returns a deep copy of the table. Object cells round-trip through
// the structural model so the copy owns its behavioral objects.
func (t *Table) Clone() (*Table, error) {
	sv, err := Encode(t)
	if err != nil {
		return nil, err
	}
	v, err := Decode(sv)
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}
