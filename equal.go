// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// equal.go — structural equality across every entry kind. Numeric kind is
// significant (int64 never equals float64), NaN equals NaN so round-tripped
// float columns compare clean, container kinds never cross-match, and
// behavioral objects compare by class identity plus attribute map.

package gridio

import (
	"math"
	"reflect"
)

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// AttrObject is implemented by behavioral objects that expose their named
// attributes as an ordered map. The migrator renames attributes through it
// and equality compares through it.
type AttrObject interface {
	Attrs() *Dict
}

// Equal reports deep structural equality of two values of any supported
// kind.
func Equal(a, b any) bool { return valueEqual(a, b) }

func scalarEqual(a, b any) bool {
	if af, ok := a.(float64); ok {
		bf, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}
	return a == b
}

func valueEqual(a, b any) bool {
	a, b = normalizeScalar(a), normalizeScalar(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool, int64, string:
		return a == b
	case float64:
		return scalarEqual(a, b)
	case []any:
		y, ok := b.([]any)
		return ok && sliceEqual(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sliceEqual(x, y)
	case *Dict:
		y, ok := b.(*Dict)
		return ok && dictEqual(x, y)
	case Set:
		y, ok := b.(Set)
		return ok && x.Set.Equal(y.Set)
	case FrozenSet:
		y, ok := b.(FrozenSet)
		return ok && x.Set.Equal(y.Set)
	case Float64Array:
		y, ok := b.(Float64Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !scalarEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case Int64Array:
		y, ok := b.(Int64Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case *Table:
		y, ok := b.(*Table)
		return ok && tableEqual(x, y)
	case *Graph:
		y, ok := b.(*Graph)
		return ok && graphEqual(x, y)
	case *GeometrySet:
		y, ok := b.(*GeometrySet)
		return ok && geometrySetEqual(x, y)
	case Point:
		y, ok := b.(Point)
		return ok && scalarEqual(x.X, y.X) && scalarEqual(x.Y, y.Y)
	case LineString:
		y, ok := b.(LineString)
		if !ok || len(x.Points) != len(y.Points) {
			return false
		}
		for i := range x.Points {
			if !valueEqual(x.Points[i], y.Points[i]) {
				return false
			}
		}
		return true
	case *Document:
		y, ok := b.(*Document)
		return ok && documentEqual(x, y)
	case *Tagged:
		y, ok := b.(*Tagged)
		return ok && x.Tag == y.Tag && valueEqual(x.Data, y.Data)
	default:
		return attrObjectEqual(a, b)
	}
}

// attrObjectEqual compares behavioral objects: identical concrete class and
// equal attribute maps. Objects of unrelated kinds fall back to reflect.
func attrObjectEqual(a, b any) bool {
	ao, aok := a.(AttrObject)
	bo, bok := b.(AttrObject)
	if aok && bok {
		if reflect.TypeOf(a) != reflect.TypeOf(b) {
			return false
		}
		return dictEqual(ao.Attrs(), bo.Attrs())
	}
	return reflect.DeepEqual(a, b)
}

func sliceEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// dictEqual ignores key order, mirroring mapping semantics; key type is
// significant.
func dictEqual(a, b *Dict) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.keys {
		bv, ok := b.vals[k]
		if !ok || !valueEqual(a.vals[k], bv) {
			return false
		}
	}
	return true
}

func tableEqual(a, b *Table) bool {
	if len(a.Columns) != len(b.Columns) || len(a.Rows) != len(b.Rows) || a.ObjectColumn != b.ObjectColumn {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	if !sliceEqual(a.Index, b.Index) {
		return false
	}
	for i := range a.Rows {
		if !sliceEqual(a.Rows[i], b.Rows[i]) {
			return false
		}
	}
	return true
}

// graphEqual ignores node and edge insertion order.
func graphEqual(a, b *Graph) bool {
	if a.Directed != b.Directed || len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		return false
	}
	usedN := make([]bool, len(b.Nodes))
	for _, an := range a.Nodes {
		found := false
		for j, bn := range b.Nodes {
			if usedN[j] {
				continue
			}
			if valueEqual(an.ID, bn.ID) && dictEqual(an.Attrs, bn.Attrs) {
				usedN[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	usedE := make([]bool, len(b.Edges))
	for _, ae := range a.Edges {
		found := false
		for j, be := range b.Edges {
			if usedE[j] {
				continue
			}
			if valueEqual(ae.From, be.From) && valueEqual(ae.To, be.To) && dictEqual(ae.Attrs, be.Attrs) {
				usedE[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func geometrySetEqual(a, b *GeometrySet) bool {
	if a.For != b.For || len(a.Shapes) != len(b.Shapes) {
		return false
	}
	if !sliceEqual(a.Index, b.Index) {
		return false
	}
	for i := range a.Shapes {
		if a.Shapes[i] == nil || b.Shapes[i] == nil {
			if a.Shapes[i] != nil || b.Shapes[i] != nil {
				return false
			}
			continue
		}
		if !valueEqual(a.Shapes[i], b.Shapes[i]) {
			return false
		}
	}
	return true
}

func documentEqual(a, b *Document) bool {
	if len(a.names) != len(b.names) {
		return false
	}
	for _, name := range a.names {
		bv, ok := b.entries[name]
		if !ok || !valueEqual(a.entries[name], bv) {
			return false
		}
	}
	return true
}
