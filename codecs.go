// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// codecs.go — built-in registry entries: tables, dicts with non-string keys,
// tuples, sets, frozen sets, numeric arrays, graphs, geometry, and the
// document itself. Behavioral object types register from the embedding
// application (see the control package).

package gridio

import (
	"fmt"
	"math"
	"reflect"
)

// Built-in type tags. Stable wire identifiers: renaming one breaks every
// payload written before the rename.
const (
	TagTable       = "table"
	TagDict        = "dict"
	TagTuple       = "tuple"
	TagSet         = "set"
	TagFrozenSet   = "frozenset"
	TagArray       = "array"
	TagGraph       = "graph"
	TagGeometrySet = "geometry_set"
	TagPoint       = "geom.point"
	TagLineString  = "geom.linestring"
	TagDocument    = "network"
)

func init() {
	Register(TagTable, reflect.TypeOf(&Table{}), encodeTable, decodeTable)
	Register(TagDict, reflect.TypeOf(&Dict{}), encodeTaggedDict, decodeTaggedDict)
	Register(TagTuple, reflect.TypeOf(Tuple{}), encodeTuple, decodeTuple)
	Register(TagSet, reflect.TypeOf(Set{}), encodeSet, decodeSet)
	Register(TagFrozenSet, reflect.TypeOf(FrozenSet{}), encodeFrozenSet, decodeFrozenSet)
	Register(TagArray+".float64", reflect.TypeOf(Float64Array{}), encodeFloat64Array, decodeFloat64Array)
	Register(TagArray+".int64", reflect.TypeOf(Int64Array{}), encodeInt64Array, decodeInt64Array)
	Register(TagGraph, reflect.TypeOf(&Graph{}), encodeGraph, decodeGraph)
	Register(TagGeometrySet, reflect.TypeOf(&GeometrySet{}), encodeGeometrySet, decodeGeometrySet)
	Register(TagPoint, reflect.TypeOf(Point{}), encodePoint, decodePoint)
	Register(TagLineString, reflect.TypeOf(LineString{}), encodeLineString, decodeLineString)
	Register(TagDocument, reflect.TypeOf(&Document{}), encodeDocument, decodeDocument)
}

func payloadDict(tag string, payload any) (*Dict, error) {
	pd, ok := payload.(*Dict)
	if !ok {
		return nil, fmt.Errorf("%w: %s payload is %T, want object", ErrMalformedPayload, tag, payload)
	}
	return pd, nil
}

func listField(tag string, pd *Dict, key string) ([]any, error) {
	v, ok := pd.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s payload field %q missing", ErrMalformedPayload, tag, key)
	}
	l, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("%w: %s payload field %q is %T, want array", ErrMalformedPayload, tag, key, v)
	}
	return l, nil
}

func listPayload(tag string, payload any) ([]any, error) {
	l, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s payload is %T, want array", ErrMalformedPayload, tag, payload)
	}
	return l, nil
}

// ── Table ────────────────────────────────────────────────────────────────────

func encodeTable(e *Encoder, v any) (any, error) {
	t := v.(*Table)
	cols := make([]any, len(t.Columns))
	dts := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
		dts[i] = string(c.DType)
	}
	idx := make([]any, len(t.Index))
	for i, l := range t.Index {
		sv, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		idx[i] = sv
	}
	data := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			sv, err := e.Encode(cell)
			if err != nil {
				return nil, err
			}
			cells[j] = sv
		}
		data[i] = cells
	}
	payload := NewDict()
	payload.Set("columns", cols)
	payload.Set("dtypes", dts)
	payload.Set("index", idx)
	payload.Set("data", data)
	if t.ObjectColumn != "" {
		payload.Set("object_column", t.ObjectColumn)
	}
	return payload, nil
}

// decodeTableSchema materializes only the column schema of a serialized
// table: the zero-row placeholder the selective materializer substitutes in
// drop-unlisted mode without touching the row data.
func decodeTableSchema(payload any) (*Table, error) {
	pd, err := payloadDict(TagTable, payload)
	if err != nil {
		return nil, err
	}
	cols, err := listField(TagTable, pd, "columns")
	if err != nil {
		return nil, err
	}
	dts, err := listField(TagTable, pd, "dtypes")
	if err != nil {
		return nil, err
	}
	if len(cols) != len(dts) {
		return nil, fmt.Errorf("%w: table has %d columns but %d dtypes", ErrMalformedPayload, len(cols), len(dts))
	}
	t := &Table{Columns: make([]Column, len(cols))}
	for i := range cols {
		name, ok1 := cols[i].(string)
		dt, ok2 := dts[i].(string)
		if !ok1 || !ok2 || !validDType(DType(dt)) {
			return nil, fmt.Errorf("%w: malformed table column schema", ErrMalformedPayload)
		}
		t.Columns[i] = Column{Name: name, DType: DType(dt)}
	}
	if oc, ok := pd.Get("object_column"); ok {
		if s, ok := oc.(string); ok {
			t.ObjectColumn = s
		}
	}
	return t, nil
}

func decodeTable(d *Decoder, payload any) (any, error) {
	t, err := decodeTableSchema(payload)
	if err != nil {
		return nil, err
	}
	pd := payload.(*Dict)
	idx, err := listField(TagTable, pd, "index")
	if err != nil {
		return nil, err
	}
	data, err := listField(TagTable, pd, "data")
	if err != nil {
		return nil, err
	}
	if len(idx) != len(data) {
		return nil, fmt.Errorf("%w: table has %d index labels but %d rows", ErrMalformedPayload, len(idx), len(data))
	}
	t.Index = make([]any, len(idx))
	for i, sv := range idx {
		label, err := d.Decode(sv)
		if err != nil {
			return nil, err
		}
		t.Index[i] = label
	}
	t.Rows = make([][]any, len(data))
	for i, rowSV := range data {
		cells, ok := rowSV.([]any)
		if !ok || len(cells) != len(t.Columns) {
			return nil, fmt.Errorf("%w: table row %d does not match column schema", ErrMalformedPayload, i)
		}
		row := make([]any, len(cells))
		for j, cell := range cells {
			v, err := d.Decode(cell)
			if err != nil {
				return nil, err
			}
			row[j] = coerceCell(t.Columns[j].DType, v)
		}
		t.Rows[i] = row
	}
	return t, nil
}

// coerceCell restores the declared column dtype on numeric cells. The
// grammar keeps int64 and float64 apart, but external backends (workbook,
// databases) may widen or narrow on their way through.
func coerceCell(dt DType, v any) any {
	switch dt {
	case DTypeFloat64:
		switch n := v.(type) {
		case int64:
			return float64(n)
		case nil:
			return math.NaN()
		}
	case DTypeInt64:
		if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	}
	return v
}

// ── Dict (non-string or reserved keys) ───────────────────────────────────────

func encodeTaggedDict(e *Encoder, v any) (any, error) {
	d := v.(*Dict)
	keys := make([]any, 0, d.Len())
	vals := make([]any, 0, d.Len())
	for _, k := range d.keys {
		ksv, err := e.Encode(k)
		if err != nil {
			return nil, err
		}
		vsv, err := e.Encode(d.vals[k])
		if err != nil {
			return nil, err
		}
		keys = append(keys, ksv)
		vals = append(vals, vsv)
	}
	payload := NewDict()
	payload.Set("keys", keys)
	payload.Set("values", vals)
	return payload, nil
}

func decodeTaggedDict(d *Decoder, payload any) (any, error) {
	pd, err := payloadDict(TagDict, payload)
	if err != nil {
		return nil, err
	}
	keys, err := listField(TagDict, pd, "keys")
	if err != nil {
		return nil, err
	}
	vals, err := listField(TagDict, pd, "values")
	if err != nil {
		return nil, err
	}
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("%w: dict has %d keys but %d values", ErrMalformedPayload, len(keys), len(vals))
	}
	out := NewDict()
	for i := range keys {
		k, err := d.Decode(keys[i])
		if err != nil {
			return nil, err
		}
		if !hashable(k) {
			return nil, fmt.Errorf("%w: dict key of type %T is not hashable", ErrMalformedPayload, k)
		}
		v, err := d.Decode(vals[i])
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}

// hashable reports whether a decoded value can serve as a dict key or set
// element, i.e. as a Go map key. Set and FrozenSet are rejected explicitly:
// their type is comparable to reflect but hashing the map-backed value
// inside panics.
func hashable(v any) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string:
		return true
	case Set, FrozenSet:
		return false
	}
	return reflect.TypeOf(v).Comparable()
}

// ── Sequences and sets ───────────────────────────────────────────────────────

func encodeTuple(e *Encoder, v any) (any, error) {
	t := v.(Tuple)
	out := make([]any, len(t))
	for i, it := range t {
		sv, err := e.Encode(it)
		if err != nil {
			return nil, err
		}
		out[i] = sv
	}
	return out, nil
}

func decodeTuple(d *Decoder, payload any) (any, error) {
	items, err := listPayload(TagTuple, payload)
	if err != nil {
		return nil, err
	}
	out := make(Tuple, len(items))
	for i, sv := range items {
		v, err := d.Decode(sv)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeSet(e *Encoder, v any) (any, error) {
	return e.encodeSorted(v.(Set).ToSlice())
}

func decodeSet(d *Decoder, payload any) (any, error) {
	items, err := listPayload(TagSet, payload)
	if err != nil {
		return nil, err
	}
	out := NewSet()
	for _, sv := range items {
		v, err := d.Decode(sv)
		if err != nil {
			return nil, err
		}
		if !hashable(v) {
			return nil, fmt.Errorf("%w: set element of type %T is not hashable", ErrMalformedPayload, v)
		}
		out.Add(v)
	}
	return out, nil
}

func encodeFrozenSet(e *Encoder, v any) (any, error) {
	return e.encodeSorted(v.(FrozenSet).ToSlice())
}

func decodeFrozenSet(d *Decoder, payload any) (any, error) {
	items, err := listPayload(TagFrozenSet, payload)
	if err != nil {
		return nil, err
	}
	out := NewFrozenSet()
	for _, sv := range items {
		v, err := d.Decode(sv)
		if err != nil {
			return nil, err
		}
		if !hashable(v) {
			return nil, fmt.Errorf("%w: frozenset element of type %T is not hashable", ErrMalformedPayload, v)
		}
		out.Add(v)
	}
	return out, nil
}

// ── Numeric arrays ───────────────────────────────────────────────────────────

func encodeFloat64Array(_ *Encoder, v any) (any, error) {
	a := v.(Float64Array)
	out := make([]any, len(a))
	for i, f := range a {
		out[i] = f
	}
	return out, nil
}

func decodeFloat64Array(_ *Decoder, payload any) (any, error) {
	items, err := listPayload(TagArray, payload)
	if err != nil {
		return nil, err
	}
	out := make(Float64Array, len(items))
	for i, sv := range items {
		switch n := sv.(type) {
		case float64:
			out[i] = n
		case int64:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("%w: float array element is %T", ErrMalformedPayload, sv)
		}
	}
	return out, nil
}

func encodeInt64Array(_ *Encoder, v any) (any, error) {
	a := v.(Int64Array)
	out := make([]any, len(a))
	for i, n := range a {
		out[i] = n
	}
	return out, nil
}

func decodeInt64Array(_ *Decoder, payload any) (any, error) {
	items, err := listPayload(TagArray, payload)
	if err != nil {
		return nil, err
	}
	out := make(Int64Array, len(items))
	for i, sv := range items {
		n, ok := sv.(int64)
		if !ok {
			return nil, fmt.Errorf("%w: int array element is %T", ErrMalformedPayload, sv)
		}
		out[i] = n
	}
	return out, nil
}

// ── Graph ────────────────────────────────────────────────────────────────────

func encodeGraph(e *Encoder, v any) (any, error) {
	g := v.(*Graph)
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		idSV, err := e.Encode(n.ID)
		if err != nil {
			return nil, err
		}
		attrsSV, err := e.Encode(n.Attrs)
		if err != nil {
			return nil, err
		}
		nd := NewDict()
		nd.Set("id", idSV)
		nd.Set("attrs", attrsSV)
		nodes[i] = nd
	}
	edges := make([]any, len(g.Edges))
	for i, eg := range g.Edges {
		fromSV, err := e.Encode(eg.From)
		if err != nil {
			return nil, err
		}
		toSV, err := e.Encode(eg.To)
		if err != nil {
			return nil, err
		}
		attrsSV, err := e.Encode(eg.Attrs)
		if err != nil {
			return nil, err
		}
		ed := NewDict()
		ed.Set("from", fromSV)
		ed.Set("to", toSV)
		ed.Set("attrs", attrsSV)
		edges[i] = ed
	}
	payload := NewDict()
	payload.Set("directed", g.Directed)
	payload.Set("nodes", nodes)
	payload.Set("edges", edges)
	return payload, nil
}

func decodeGraph(d *Decoder, payload any) (any, error) {
	pd, err := payloadDict(TagGraph, payload)
	if err != nil {
		return nil, err
	}
	g := NewGraph()
	if dir, ok := pd.Get("directed"); ok {
		g.Directed, _ = dir.(bool)
	}
	nodes, err := listField(TagGraph, pd, "nodes")
	if err != nil {
		return nil, err
	}
	for _, sv := range nodes {
		nd, ok := sv.(*Dict)
		if !ok {
			return nil, fmt.Errorf("%w: graph node is %T", ErrMalformedPayload, sv)
		}
		idSV, _ := nd.Get("id")
		id, err := d.Decode(idSV)
		if err != nil {
			return nil, err
		}
		attrs, err := decodeAttrDict(d, nd, "attrs")
		if err != nil {
			return nil, err
		}
		g.AddNode(id, attrs)
	}
	edges, err := listField(TagGraph, pd, "edges")
	if err != nil {
		return nil, err
	}
	for _, sv := range edges {
		ed, ok := sv.(*Dict)
		if !ok {
			return nil, fmt.Errorf("%w: graph edge is %T", ErrMalformedPayload, sv)
		}
		fromSV, _ := ed.Get("from")
		from, err := d.Decode(fromSV)
		if err != nil {
			return nil, err
		}
		toSV, _ := ed.Get("to")
		to, err := d.Decode(toSV)
		if err != nil {
			return nil, err
		}
		attrs, err := decodeAttrDict(d, ed, "attrs")
		if err != nil {
			return nil, err
		}
		g.AddEdge(from, to, attrs)
	}
	return g, nil
}

func decodeAttrDict(d *Decoder, pd *Dict, key string) (*Dict, error) {
	sv, ok := pd.Get(key)
	if !ok || sv == nil {
		return NewDict(), nil
	}
	v, err := d.Decode(sv)
	if err != nil {
		return nil, err
	}
	attrs, ok := v.(*Dict)
	if !ok {
		return nil, fmt.Errorf("%w: graph attribute map is %T", ErrMalformedPayload, v)
	}
	return attrs, nil
}

// ── Geometry ─────────────────────────────────────────────────────────────────

func encodePoint(_ *Encoder, v any) (any, error) {
	p := v.(Point)
	return []any{p.X, p.Y}, nil
}

func decodePoint(_ *Decoder, payload any) (any, error) {
	xy, err := listPayload(TagPoint, payload)
	if err != nil {
		return nil, err
	}
	if len(xy) != 2 {
		return nil, fmt.Errorf("%w: point has %d coordinates", ErrMalformedPayload, len(xy))
	}
	x, okx := asFloat(xy[0])
	y, oky := asFloat(xy[1])
	if !okx || !oky {
		return nil, fmt.Errorf("%w: point coordinates must be numbers", ErrMalformedPayload)
	}
	return Point{X: x, Y: y}, nil
}

func encodeLineString(_ *Encoder, v any) (any, error) {
	ls := v.(LineString)
	out := make([]any, len(ls.Points))
	for i, p := range ls.Points {
		out[i] = []any{p.X, p.Y}
	}
	return out, nil
}

func decodeLineString(_ *Decoder, payload any) (any, error) {
	coords, err := listPayload(TagLineString, payload)
	if err != nil {
		return nil, err
	}
	ls := LineString{Points: make([]Point, len(coords))}
	for i, c := range coords {
		xy, ok := c.([]any)
		if !ok || len(xy) != 2 {
			return nil, fmt.Errorf("%w: linestring coordinate %d malformed", ErrMalformedPayload, i)
		}
		x, okx := asFloat(xy[0])
		y, oky := asFloat(xy[1])
		if !okx || !oky {
			return nil, fmt.Errorf("%w: linestring coordinates must be numbers", ErrMalformedPayload)
		}
		ls.Points[i] = Point{X: x, Y: y}
	}
	return ls, nil
}

func encodeGeometrySet(e *Encoder, v any) (any, error) {
	gs := v.(*GeometrySet)
	idx := make([]any, len(gs.Index))
	for i, l := range gs.Index {
		sv, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		idx[i] = sv
	}
	shapes := make([]any, len(gs.Shapes))
	for i, s := range gs.Shapes {
		if s == nil {
			continue
		}
		sv, err := e.Encode(s)
		if err != nil {
			return nil, err
		}
		shapes[i] = sv
	}
	payload := NewDict()
	payload.Set("for", gs.For)
	payload.Set("index", idx)
	payload.Set("shapes", shapes)
	return payload, nil
}

func decodeGeometrySet(d *Decoder, payload any) (any, error) {
	pd, err := payloadDict(TagGeometrySet, payload)
	if err != nil {
		return nil, err
	}
	gs := &GeometrySet{}
	if f, ok := pd.Get("for"); ok {
		gs.For, _ = f.(string)
	}
	idx, err := listField(TagGeometrySet, pd, "index")
	if err != nil {
		return nil, err
	}
	shapes, err := listField(TagGeometrySet, pd, "shapes")
	if err != nil {
		return nil, err
	}
	if len(idx) != len(shapes) {
		return nil, fmt.Errorf("%w: geometry set has %d labels but %d shapes", ErrMalformedPayload, len(idx), len(shapes))
	}
	gs.Index = make([]any, len(idx))
	gs.Shapes = make([]Shape, len(shapes))
	for i := range idx {
		label, err := d.Decode(idx[i])
		if err != nil {
			return nil, err
		}
		gs.Index[i] = label
		if shapes[i] == nil {
			continue
		}
		v, err := d.Decode(shapes[i])
		if err != nil {
			return nil, err
		}
		shape, ok := v.(Shape)
		if !ok {
			return nil, fmt.Errorf("%w: geometry set element %d is %T, not a shape", ErrMalformedPayload, i, v)
		}
		gs.Shapes[i] = shape
	}
	return gs, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ── Document ─────────────────────────────────────────────────────────────────

func encodeDocument(e *Encoder, v any) (any, error) {
	doc := v.(*Document)
	payload := NewDict()
	for _, name := range doc.names {
		sv, err := e.Encode(doc.entries[name])
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		payload.Set(name, sv)
	}
	return payload, nil
}

// selectableTag reports whether a structural entry participates in
// selective materialization. Scalars, nested maps and the version tag are
// always retained: they are required for structural integrity.
func selectableTag(tag string) bool {
	switch tag {
	case TagTable, TagGraph, TagGeometrySet:
		return true
	}
	return false
}

func decodeDocument(d *Decoder, payload any) (any, error) {
	pd, err := payloadDict(TagDocument, payload)
	if err != nil {
		return nil, err
	}
	doc := &Document{entries: make(map[string]any)}
	for _, k := range pd.keys {
		name, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: document entry name is %T", ErrMalformedPayload, k)
		}
		sv := pd.vals[k]
		if d.opts.selectActive && !d.opts.entries[name] && selectableTag(structuralTag(sv)) {
			placeholder, err := d.materializePlaceholder(sv)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", name, err)
			}
			doc.Set(name, placeholder)
			d.opts.logger.Debug("entry outside selection replaced by placeholder", "entry", name)
			continue
		}
		v, err := d.Decode(sv)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		doc.Set(name, v)
	}
	if d.opts.migrate && doc.Version() != "" && compareVersions(doc.Version(), FormatVersion) < 0 {
		if err := migrateDocument(doc, d.opts.logger); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// materializePlaceholder builds the minimal stand-in for an unlisted entry.
// In drop mode the table's row data is never materialized; in skip mode the
// entry decodes fully first, which keeps the walk validating its payload.
func (d *Decoder) materializePlaceholder(sv any) (any, error) {
	tag := structuralTag(sv)
	var payload any
	switch x := sv.(type) {
	case *Dict:
		_, payload, _ = taggedParts(x)
	case *Tagged:
		payload = x.Data
	}
	if d.opts.mode == DropUnlisted {
		switch tag {
		case TagTable:
			return decodeTableSchema(payload)
		case TagGraph:
			g := NewGraph()
			if pd, ok := payload.(*Dict); ok {
				if dir, ok := pd.Get("directed"); ok {
					g.Directed, _ = dir.(bool)
				}
			}
			return g, nil
		case TagGeometrySet:
			gs := &GeometrySet{}
			if pd, ok := payload.(*Dict); ok {
				if f, ok := pd.Get("for"); ok {
					gs.For, _ = f.(string)
				}
			}
			return gs, nil
		}
	}
	v, err := d.Decode(sv)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *Table:
		return x.EmptyLike(), nil
	case *Graph:
		return &Graph{Directed: x.Directed}, nil
	case *GeometrySet:
		return x.EmptyLike(), nil
	}
	return v, nil
}
