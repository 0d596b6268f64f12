// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// sqlite.go — single-file database persistence for network documents.
// Each tabular entry becomes a SQL table with native column types, so the
// document stays queryable in place; a reserved metadata table carries
// entry order, dtypes and the non-tabular entries as canonical text. A
// save is one transaction into a staged file renamed over the target, so
// a failed save never leaves a half-written database.

// Package sqlite stores network documents as SQLite database files and
// restores them with full type fidelity.
package sqlite

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/AndrewDonelson/gridio"
)

// metaTable is the reserved table carrying the document structure: one
// row per entry with (pos, name, kind, payload).
const metaTable = "_grid_meta"

// Reserved column names of every entry table.
const (
	posColumn   = "_pos"   // row order within the table
	indexColumn = "_index" // row label as canonical text
)

// Entry kinds in the metadata table.
const (
	kindTable = "table"
	kindJSON  = "json"
)

// Save writes doc to a SQLite database file at path, replacing any
// existing file. The new database is staged beside the target and renamed
// into place after the write transaction commits.
func Save(path string, doc *gridio.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".griddb-*")
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	conn, err := sqlite.OpenConn(tmpPath, sqlite.OpenReadWrite)
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}

	if err := saveAll(conn, doc); err != nil {
		conn.Close()
		return err
	}
	if err := conn.Close(); err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}
	return nil
}

func saveAll(conn *sqlite.Conn, doc *gridio.Document) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}
	defer endTransaction(&err)

	err = sqlitex.ExecuteTransient(conn,
		fmt.Sprintf("CREATE TABLE %s (pos INTEGER PRIMARY KEY, name TEXT NOT NULL, kind TEXT NOT NULL, payload TEXT NOT NULL)",
			quoteIdent(metaTable)), nil)
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}

	for pos, name := range doc.Names() {
		v, _ := doc.Get(name)
		t, isTable := v.(*gridio.Table)
		if !isTable || name == metaTable {
			text, jerr := gridio.ToJSON(v)
			if jerr != nil {
				return gridio.NewAdapterError("sqlite", "save", jerr)
			}
			if err = insertMeta(conn, pos, name, kindJSON, text); err != nil {
				return err
			}
			continue
		}
		schema, serr := gridio.ToJSON(t.SchemaDict())
		if serr != nil {
			return gridio.NewAdapterError("sqlite", "save", serr)
		}
		if err = insertMeta(conn, pos, name, kindTable, schema); err != nil {
			return err
		}
		if err = writeTable(conn, name, t); err != nil {
			return err
		}
	}
	return nil
}

func insertMeta(conn *sqlite.Conn, pos int, name, kind, payload string) error {
	err := sqlitex.Execute(conn,
		fmt.Sprintf("INSERT INTO %s (pos, name, kind, payload) VALUES (?, ?, ?, ?)", quoteIdent(metaTable)),
		&sqlitex.ExecOptions{Args: []any{pos, name, kind, payload}})
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}
	return nil
}

// sqlType maps a column dtype to its SQLite storage type. Bools ride as
// INTEGER 0/1; object cells as canonical text.
func sqlType(dt gridio.DType) string {
	switch dt {
	case gridio.DTypeFloat64:
		return "REAL"
	case gridio.DTypeInt64, gridio.DTypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func writeTable(conn *sqlite.Conn, name string, t *gridio.Table) error {
	defs := []string{
		quoteIdent(posColumn) + " INTEGER PRIMARY KEY",
		quoteIdent(indexColumn) + " TEXT NOT NULL",
	}
	marks := []string{"?", "?"}
	for _, c := range t.Columns {
		defs = append(defs, quoteIdent(c.Name)+" "+sqlType(c.DType))
		marks = append(marks, "?")
	}
	err := sqlitex.ExecuteTransient(conn,
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", ")), nil)
	if err != nil {
		return gridio.NewAdapterError("sqlite", "save", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(marks, ", "))
	for r := 0; r < t.Len(); r++ {
		label, jerr := gridio.ToJSON(t.Index[r])
		if jerr != nil {
			return gridio.NewAdapterError("sqlite", "save", jerr)
		}
		args := make([]any, 0, len(t.Columns)+2)
		args = append(args, r, label)
		for c, col := range t.Columns {
			arg, aerr := bindValue(col.DType, t.Rows[r][c])
			if aerr != nil {
				return gridio.NewAdapterError("sqlite", "save",
					fmt.Errorf("table %s column %s: %w", name, col.Name, aerr))
			}
			args = append(args, arg)
		}
		if err := sqlitex.Execute(conn, insert, &sqlitex.ExecOptions{Args: args}); err != nil {
			return gridio.NewAdapterError("sqlite", "save", err)
		}
	}
	return nil
}

// bindValue converts a table cell to its SQL binding. Float NaN becomes
// NULL and reads back as NaN through the column dtype.
func bindValue(dt gridio.DType, v any) (any, error) {
	switch dt {
	case gridio.DTypeFloat64:
		fv, ok := v.(float64)
		if !ok {
			if iv, isInt := v.(int64); isInt {
				fv, ok = float64(iv), true
			}
		}
		if !ok || math.IsNaN(fv) {
			return nil, nil
		}
		return fv, nil
	case gridio.DTypeInt64:
		return v, nil
	case gridio.DTypeBool:
		if b, ok := v.(bool); ok && b {
			return 1, nil
		}
		return 0, nil
	case gridio.DTypeString:
		return v, nil
	default:
		if v == nil {
			return nil, nil
		}
		return gridio.ToJSON(v)
	}
}

// Load reads a database file written by Save back into a document.
func Load(path string, opts ...gridio.Option) (*gridio.Document, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, gridio.NewAdapterError("sqlite", "load", err)
	}
	defer conn.Close()

	type metaRow struct {
		name, kind, payload string
	}
	var meta []metaRow
	err = sqlitex.Execute(conn,
		fmt.Sprintf("SELECT name, kind, payload FROM %s ORDER BY pos", quoteIdent(metaTable)),
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				meta = append(meta, metaRow{
					name:    stmt.ColumnText(0),
					kind:    stmt.ColumnText(1),
					payload: stmt.ColumnText(2),
				})
				return nil
			},
		})
	if err != nil {
		return nil, gridio.NewAdapterError("sqlite", "load", err)
	}

	doc := gridio.NewDocument()
	for _, row := range meta {
		switch row.kind {
		case kindJSON:
			v, err := gridio.FromJSON(row.payload, opts...)
			if err != nil {
				return nil, gridio.NewAdapterError("sqlite", "load", err)
			}
			doc.Set(row.name, v)
		case kindTable:
			t, err := readTable(conn, row.name, row.payload, opts...)
			if err != nil {
				return nil, err
			}
			doc.Set(row.name, t)
		default:
			return nil, gridio.NewAdapterError("sqlite", "load",
				fmt.Errorf("%w: unknown entry kind %q", gridio.ErrMalformedPayload, row.kind))
		}
	}
	return doc, nil
}

func readTable(conn *sqlite.Conn, name, schemaText string, opts ...gridio.Option) (*gridio.Table, error) {
	t, err := tableFromSchema(schemaText)
	if err != nil {
		return nil, err
	}
	if !gridio.EntrySelected(name, opts...) {
		return t, nil
	}

	sel := make([]string, 0, len(t.Columns)+1)
	sel = append(sel, quoteIdent(indexColumn))
	for _, c := range t.Columns {
		sel = append(sel, quoteIdent(c.Name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(sel, ", "), quoteIdent(name), quoteIdent(posColumn))

	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			label, err := gridio.FromJSON(stmt.ColumnText(0), opts...)
			if err != nil {
				return err
			}
			vals := make([]any, len(t.Columns))
			for c, col := range t.Columns {
				vals[c], err = columnValue(stmt, c+1, col.DType, opts...)
				if err != nil {
					return fmt.Errorf("table %s column %s: %w", name, col.Name, err)
				}
			}
			return t.AppendRow(label, vals...)
		},
	})
	if err != nil {
		return nil, gridio.NewAdapterError("sqlite", "load", err)
	}
	return t, nil
}

func tableFromSchema(schemaText string) (*gridio.Table, error) {
	sv, err := gridio.FromJSON(schemaText)
	if err != nil {
		return nil, gridio.NewAdapterError("sqlite", "load", err)
	}
	t, err := gridio.TableFromSchema(sv)
	if err != nil {
		return nil, gridio.NewAdapterError("sqlite", "load", err)
	}
	return t, nil
}

func columnValue(stmt *sqlite.Stmt, col int, dt gridio.DType, opts ...gridio.Option) (any, error) {
	switch dt {
	case gridio.DTypeFloat64:
		if stmt.ColumnIsNull(col) {
			return math.NaN(), nil
		}
		return stmt.ColumnFloat(col), nil
	case gridio.DTypeInt64:
		return stmt.ColumnInt64(col), nil
	case gridio.DTypeBool:
		return stmt.ColumnInt64(col) != 0, nil
	case gridio.DTypeString:
		return stmt.ColumnText(col), nil
	default:
		if stmt.ColumnIsNull(col) {
			return nil, nil
		}
		return gridio.FromJSON(stmt.ColumnText(col), opts...)
	}
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
