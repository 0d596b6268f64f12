// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// document.go — the network document: an ordered mapping from entry name to
// entry value. Entry kinds are tabular (*Table), scalar, nested-map (*Dict),
// graph (*Graph) and geometry-collection (*GeometrySet). The document owns
// every behavioral object reachable from its tables.

package gridio

// VersionEntry is the reserved entry name carrying the schema version tag.
const VersionEntry = "version"

// Document is an ordered collection of named entries plus the schema
// version tag. Entry names are unique; Set on an existing name replaces the
// value without changing its position.
type Document struct {
	names   []string
	entries map[string]any
}

// NewDocument returns a document stamped with the engine's current format
// version. The version tag is set at creation and only read afterwards; the
// decoder acts on it during load.
func NewDocument() *Document {
	d := &Document{entries: make(map[string]any)}
	d.Set(VersionEntry, FormatVersion)
	return d
}

// Set inserts or replaces the named entry.
func (d *Document) Set(name string, v any) {
	if d.entries == nil {
		d.entries = make(map[string]any)
	}
	if _, ok := d.entries[name]; !ok {
		d.names = append(d.names, name)
	}
	d.entries[name] = normalizeScalar(v)
}

// Get returns the named entry.
func (d *Document) Get(name string) (any, bool) {
	v, ok := d.entries[name]
	return v, ok
}

// Has reports whether the named entry exists.
func (d *Document) Has(name string) bool {
	_, ok := d.entries[name]
	return ok
}

// Delete removes the named entry, preserving the order of the rest.
func (d *Document) Delete(name string) {
	if _, ok := d.entries[name]; !ok {
		return
	}
	delete(d.entries, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Names returns the entry names in insertion order. The slice is a copy.
func (d *Document) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of entries, version tag included.
func (d *Document) Len() int { return len(d.names) }

// Table returns the named entry as a *Table, or nil when absent or of
// another kind.
func (d *Document) Table(name string) *Table {
	if t, ok := d.entries[name].(*Table); ok {
		return t
	}
	return nil
}

// Dict returns the named entry as a *Dict, or nil.
func (d *Document) Dict(name string) *Dict {
	if m, ok := d.entries[name].(*Dict); ok {
		return m
	}
	return nil
}

// Version returns the schema version tag, or the empty string when the
// document carries none.
func (d *Document) Version() string {
	if v, ok := d.entries[VersionEntry].(string); ok {
		return v
	}
	return ""
}

// SetVersion overwrites the schema version tag. Normal use never calls
// this; the migrator advances it as steps apply.
func (d *Document) SetVersion(v string) {
	d.Set(VersionEntry, v)
}

// Clone returns a deep copy by round-tripping the document through the
// structural model. Behavioral objects come back as independent instances
// of their original classes.
func (d *Document) Clone() (*Document, error) {
	sv, err := Encode(d)
	if err != nil {
		return nil, err
	}
	v, err := Decode(sv)
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// Equal reports structural equality with dtype-significant semantics: column
// data types, container kinds, row indexes, object class identity and NaN
// payload positions all participate.
func (d *Document) Equal(o *Document) bool {
	return valueEqual(d, o)
}
