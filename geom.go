// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// geom.go — the geometry-collection entry kind: one shape per row, aligned
// to a tabular entry's row index. The codec ships Point and LineString;
// other shape representations register their own tags and slot into a
// GeometrySet unchanged, the registry contract is the only coupling.

package gridio

// Shape marks a geometric value usable inside a GeometrySet.
type Shape interface {
	ShapeTag() string
}

// Point is a 2-D point.
type Point struct {
	X, Y float64
}

// ShapeTag returns the registry tag for points.
func (Point) ShapeTag() string { return "geom.point" }

// LineString is an ordered polyline.
type LineString struct {
	Points []Point
}

// ShapeTag returns the registry tag for line strings.
func (LineString) ShapeTag() string { return "geom.linestring" }

// GeometrySet is a geometry-collection document entry: per-row shapes
// aligned to the row index of the tabular entry named by For. A nil shape
// means the aligned row carries no geometry.
type GeometrySet struct {
	For    string
	Index  []any
	Shapes []Shape
}

// NewGeometrySet returns an empty collection aligned to the named entry.
func NewGeometrySet(forEntry string) *GeometrySet {
	return &GeometrySet{For: forEntry}
}

// Add appends a shape under the given row index label.
func (gs *GeometrySet) Add(index any, s Shape) {
	gs.Index = append(gs.Index, normalizeScalar(index))
	gs.Shapes = append(gs.Shapes, s)
}

// EmptyLike returns a zero-row collection keeping the alignment target.
func (gs *GeometrySet) EmptyLike() *GeometrySet {
	return &GeometrySet{For: gs.For}
}
