// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// postgres.go — PostgreSQL persistence for network documents: bulk COPY
// per tabular entry, a metadata table carrying entry order and dtypes,
// schema scoping, and identity-column scoping so many documents share one
// set of tables. Every save is a single transaction: a failed save leaves
// the stored document untouched.

// Package postgres stores network documents in a PostgreSQL database and
// restores them with full type fidelity.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndrewDonelson/gridio"
)

// metaTable is the reserved table carrying each document's structure: one
// row per entry with (pos, name, kind, payload), scoped by the identity
// columns.
const metaTable = "_grid_meta"

// Reserved column names of every entry table.
const (
	posColumn   = "_pos"
	indexColumn = "_index"
)

// Entry kinds in the metadata table.
const (
	kindTable = "table"
	kindJSON  = "json"
)

// Config holds the parameters for opening a document store.
type Config struct {
	// ConnString is a pgx connection string or URL.
	ConnString string

	// Schema is the PostgreSQL schema holding the document tables.
	// Defaults to "grid".
	Schema string

	// IDColumns scope every row of every table to one document, so many
	// documents can share a schema. Keys become extra columns; values
	// identify this store's document. May be empty for a single-document
	// schema.
	IDColumns map[string]any

	// Logger receives operational messages. Defaults to a no-op logger.
	Logger gridio.Logger
}

// Store reads and writes documents in one PostgreSQL schema, scoped by the
// configured identity columns.
type Store struct {
	pool    *pgxpool.Pool
	schema  string
	idNames []string
	idVals  []any
	log     gridio.Logger
}

// Available reports whether a PostgreSQL server is reachable through the
// given connection string. Callers use it to skip database work in
// environments without a server.
func Available(ctx context.Context, connString string) bool {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return false
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx) == nil
}

// Open connects to the database and verifies it is reachable.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "open", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, gridio.NewAdapterError("postgres", "open", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = "grid"
	}
	names := make([]string, 0, len(cfg.IDColumns))
	for name := range cfg.IDColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	vals := make([]any, len(names))
	for i, name := range names {
		vals[i] = cfg.IDColumns[name]
	}
	log := cfg.Logger
	if log == nil {
		log = gridio.NopLogger()
	}
	return &Store{pool: pool, schema: schema, idNames: names, idVals: vals, log: log}, nil
}

// Close shuts down the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }

// SaveDocument writes doc into the store's schema, replacing any document
// previously stored under the same identity columns. All tables are
// written in one transaction.
func (s *Store) SaveDocument(ctx context.Context, doc *gridio.Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{s.schema}.Sanitize()); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	if err := s.ensureMetaTable(ctx, tx); err != nil {
		return err
	}
	prior, err := s.priorTableNames(ctx, tx)
	if err != nil {
		return err
	}
	if err := s.deleteScoped(ctx, tx, metaTable); err != nil {
		return err
	}

	written := make(map[string]bool)
	for pos, name := range doc.Names() {
		v, _ := doc.Get(name)
		t, isTable := v.(*gridio.Table)
		if !isTable || name == metaTable {
			text, jerr := gridio.ToJSON(v)
			if jerr != nil {
				return gridio.NewAdapterError("postgres", "save", jerr)
			}
			if err := s.insertMeta(ctx, tx, pos, name, kindJSON, text); err != nil {
				return err
			}
			continue
		}
		schema, serr := gridio.ToJSON(t.SchemaDict())
		if serr != nil {
			return gridio.NewAdapterError("postgres", "save", serr)
		}
		if err := s.insertMeta(ctx, tx, pos, name, kindTable, schema); err != nil {
			return err
		}
		if err := s.writeTable(ctx, tx, name, t); err != nil {
			return err
		}
		written[name] = true
	}

	// Tables from the previous save that the new document no longer carries
	// would keep their scoped rows forever; clear them.
	for _, name := range prior {
		if written[name] {
			continue
		}
		if err := s.deleteScoped(ctx, tx, name); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	s.log.Info("document saved", "schema", s.schema, "entries", doc.Len())
	return nil
}

func (s *Store) ensureMetaTable(ctx context.Context, tx pgx.Tx) error {
	defs := append(s.idColumnDefs(),
		"pos BIGINT NOT NULL",
		"name TEXT NOT NULL",
		"kind TEXT NOT NULL",
		"payload TEXT NOT NULL",
	)
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		s.qualified(metaTable), strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, sql); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	return nil
}

// priorTableNames lists the tabular entries of the document currently stored
// under this identity, so a re-save can clear rows of tables it no longer
// writes.
func (s *Store) priorTableNames(ctx context.Context, tx pgx.Tx) ([]string, error) {
	sql := fmt.Sprintf("SELECT name FROM %s WHERE kind = $1", s.qualified(metaTable))
	if where := s.whereScope(2); where != "" {
		sql += " AND " + where
	}
	args := append([]any{kindTable}, s.idVals...)
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "save", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, gridio.NewAdapterError("postgres", "save", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, gridio.NewAdapterError("postgres", "save", err)
	}
	return names, nil
}

func (s *Store) insertMeta(ctx context.Context, tx pgx.Tx, pos int, name, kind, payload string) error {
	cols := append(append([]string{}, s.idNames...), "pos", "name", "kind", "payload")
	args := append(append([]any{}, s.idVals...), int64(pos), name, kind, payload)
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.qualified(metaTable), joinIdents(cols), placeholders(len(args)))
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	return nil
}

// deleteScoped removes this document's rows from a shared table. With no
// identity columns the table belongs to a single document and is cleared.
func (s *Store) deleteScoped(ctx context.Context, tx pgx.Tx, table string) error {
	sql := "DELETE FROM " + s.qualified(table)
	if where := s.whereScope(1); where != "" {
		sql += " WHERE " + where
	}
	if _, err := tx.Exec(ctx, sql, s.idVals...); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	return nil
}

func (s *Store) writeTable(ctx context.Context, tx pgx.Tx, name string, t *gridio.Table) error {
	defs := append(s.idColumnDefs(),
		pgx.Identifier{posColumn}.Sanitize()+" BIGINT NOT NULL",
		pgx.Identifier{indexColumn}.Sanitize()+" TEXT NOT NULL",
	)
	for _, c := range t.Columns {
		defs = append(defs, pgx.Identifier{c.Name}.Sanitize()+" "+pgType(c.DType))
	}
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		s.qualified(name), strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, sql); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	if err := s.deleteScoped(ctx, tx, name); err != nil {
		return err
	}

	cols := append(append([]string{}, s.idNames...), posColumn, indexColumn)
	for _, c := range t.Columns {
		cols = append(cols, c.Name)
	}
	rows := make([][]any, t.Len())
	for r := 0; r < t.Len(); r++ {
		label, jerr := gridio.ToJSON(t.Index[r])
		if jerr != nil {
			return gridio.NewAdapterError("postgres", "save", jerr)
		}
		row := append(append([]any{}, s.idVals...), int64(r), label)
		for c, col := range t.Columns {
			arg, aerr := bindValue(col.DType, t.Rows[r][c])
			if aerr != nil {
				return gridio.NewAdapterError("postgres", "save",
					fmt.Errorf("table %s column %s: %w", name, col.Name, aerr))
			}
			row = append(row, arg)
		}
		rows[r] = row
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{s.schema, name}, cols, pgx.CopyFromRows(rows)); err != nil {
		return gridio.NewAdapterError("postgres", "save", err)
	}
	return nil
}

// LoadDocument reads back the document stored under the configured
// identity columns.
func (s *Store) LoadDocument(ctx context.Context, opts ...gridio.Option) (*gridio.Document, error) {
	type metaRow struct {
		name, kind, payload string
	}
	sql := "SELECT name, kind, payload FROM " + s.qualified(metaTable)
	if where := s.whereScope(1); where != "" {
		sql += " WHERE " + where
	}
	sql += " ORDER BY pos"

	rows, err := s.pool.Query(ctx, sql, s.idVals...)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	var meta []metaRow
	for rows.Next() {
		var m metaRow
		if err := rows.Scan(&m.name, &m.kind, &m.payload); err != nil {
			rows.Close()
			return nil, gridio.NewAdapterError("postgres", "load", err)
		}
		meta = append(meta, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	if len(meta) == 0 {
		return nil, gridio.NewAdapterError("postgres", "load", errors.New("no document under the configured identity"))
	}

	doc := gridio.NewDocument()
	for _, m := range meta {
		switch m.kind {
		case kindJSON:
			v, err := gridio.FromJSON(m.payload, opts...)
			if err != nil {
				return nil, gridio.NewAdapterError("postgres", "load", err)
			}
			doc.Set(m.name, v)
		case kindTable:
			t, err := s.readTable(ctx, m.name, m.payload, opts...)
			if err != nil {
				return nil, err
			}
			doc.Set(m.name, t)
		default:
			return nil, gridio.NewAdapterError("postgres", "load",
				fmt.Errorf("%w: unknown entry kind %q", gridio.ErrMalformedPayload, m.kind))
		}
	}
	return doc, nil
}

func (s *Store) readTable(ctx context.Context, name, schemaText string, opts ...gridio.Option) (*gridio.Table, error) {
	sv, err := gridio.FromJSON(schemaText)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	t, err := gridio.TableFromSchema(sv)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	if !gridio.EntrySelected(name, opts...) {
		return t, nil
	}

	sel := []string{pgx.Identifier{indexColumn}.Sanitize()}
	for _, c := range t.Columns {
		sel = append(sel, pgx.Identifier{c.Name}.Sanitize())
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(sel, ", "), s.qualified(name))
	if where := s.whereScope(1); where != "" {
		sql += " WHERE " + where
	}
	sql += " ORDER BY " + pgx.Identifier{posColumn}.Sanitize()

	rows, err := s.pool.Query(ctx, sql, s.idVals...)
	if err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	defer rows.Close()
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, gridio.NewAdapterError("postgres", "load", err)
		}
		labelText, _ := raw[0].(string)
		label, err := gridio.FromJSON(labelText, opts...)
		if err != nil {
			return nil, gridio.NewAdapterError("postgres", "load", err)
		}
		vals := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			vals[c], err = columnValue(col.DType, raw[c+1], opts...)
			if err != nil {
				return nil, gridio.NewAdapterError("postgres", "load",
					fmt.Errorf("table %s column %s: %w", name, col.Name, err))
			}
		}
		if err := t.AppendRow(label, vals...); err != nil {
			return nil, gridio.NewAdapterError("postgres", "load", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, gridio.NewAdapterError("postgres", "load", err)
	}
	return t, nil
}

// bindValue converts a table cell to its SQL binding. DOUBLE PRECISION
// carries NaN and infinities natively, so floats pass straight through.
func bindValue(dt gridio.DType, v any) (any, error) {
	switch dt {
	case gridio.DTypeFloat64:
		if iv, ok := v.(int64); ok {
			return float64(iv), nil
		}
		return v, nil
	case gridio.DTypeInt64, gridio.DTypeBool, gridio.DTypeString:
		return v, nil
	default:
		if v == nil {
			return nil, nil
		}
		return gridio.ToJSON(v)
	}
}

func columnValue(dt gridio.DType, raw any, opts ...gridio.Option) (any, error) {
	switch dt {
	case gridio.DTypeFloat64:
		if raw == nil {
			return math.NaN(), nil
		}
		return raw, nil
	case gridio.DTypeInt64, gridio.DTypeBool, gridio.DTypeString:
		return raw, nil
	default:
		if raw == nil {
			return nil, nil
		}
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object cell is %T, want text", gridio.ErrMalformedPayload, raw)
		}
		return gridio.FromJSON(text, opts...)
	}
}

// pgType maps a column dtype to its PostgreSQL type.
func pgType(dt gridio.DType) string {
	switch dt {
	case gridio.DTypeFloat64:
		return "DOUBLE PRECISION"
	case gridio.DTypeInt64:
		return "BIGINT"
	case gridio.DTypeBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// idColumnDefs returns the CREATE TABLE definitions of the identity
// columns; their types follow the configured values.
func (s *Store) idColumnDefs() []string {
	defs := make([]string, len(s.idNames))
	for i, name := range s.idNames {
		defs[i] = pgx.Identifier{name}.Sanitize() + " " + idColumnType(s.idVals[i])
	}
	return defs
}

func idColumnType(v any) string {
	switch v.(type) {
	case int, int64:
		return "BIGINT"
	case float64:
		return "DOUBLE PRECISION"
	case bool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// whereScope builds the identity-column predicate with placeholders
// starting at first, or "" when unscoped.
func (s *Store) whereScope(first int) string {
	if len(s.idNames) == 0 {
		return ""
	}
	conds := make([]string, len(s.idNames))
	for i, name := range s.idNames {
		conds[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{name}.Sanitize(), first+i)
	}
	return strings.Join(conds, " AND ")
}

func (s *Store) qualified(table string) string {
	return pgx.Identifier{s.schema, table}.Sanitize()
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ps, ", ")
}

func joinIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pgx.Identifier{n}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
