// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// roundtrip_test.go — end-to-end encode/decode fidelity over a realistic
// network document: dtypes, container kinds, special floats, key order,
// graphs and geometry.

package gridio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/gridio"
)

// newTestNetwork builds a document exercising every value kind the codec
// carries: typed tables with NaN and infinities, duplicate and
// non-contiguous row labels, an empty table, nested dicts, a graph,
// geometry, and scalar entries.
func newTestNetwork(t *testing.T) *gridio.Document {
	t.Helper()

	doc := gridio.NewDocument()
	doc.Set("name", "test grid")
	doc.Set("f_hz", 50.0)
	doc.Set("sn_mva", 1.0)
	doc.Set("converged", false)

	bus := gridio.NewTable(
		gridio.Column{Name: "name", DType: gridio.DTypeString},
		gridio.Column{Name: "vn_kv", DType: gridio.DTypeFloat64},
		gridio.Column{Name: "in_service", DType: gridio.DTypeBool},
	)
	require.NoError(t, bus.AppendRow(0, "hv", 110.0, true))
	require.NoError(t, bus.AppendRow(1, "mv", 20.0, true))
	require.NoError(t, bus.AppendRow(5, "spare", math.NaN(), false))
	doc.Set("bus", bus)

	load := gridio.NewTable(
		gridio.Column{Name: "bus", DType: gridio.DTypeInt64},
		gridio.Column{Name: "p_mw", DType: gridio.DTypeFloat64},
		gridio.Column{Name: "q_mvar", DType: gridio.DTypeFloat64},
	)
	// Duplicate labels are legal and must survive the round trip.
	require.NoError(t, load.AppendRow(0, int64(1), 0.6, math.Inf(1)))
	require.NoError(t, load.AppendRow(0, int64(1), 0.25, math.Inf(-1)))
	require.NoError(t, load.AppendRow(2, int64(5), math.NaN(), 0.0))
	doc.Set("load", load)

	// An empty table keeps its column schema.
	trafo := gridio.NewTable(
		gridio.Column{Name: "hv_bus", DType: gridio.DTypeInt64},
		gridio.Column{Name: "lv_bus", DType: gridio.DTypeInt64},
		gridio.Column{Name: "sn_mva", DType: gridio.DTypeFloat64},
	)
	doc.Set("trafo", trafo)

	nayy := gridio.NewDict()
	nayy.Set("r_ohm_per_km", 0.642)
	nayy.Set("x_ohm_per_km", 0.083)
	nayy.Set("max_i_ka", 0.142)
	lineTypes := gridio.NewDict()
	lineTypes.Set("NAYY 4x50 SE", nayy)
	stdTypes := gridio.NewDict()
	stdTypes.Set("line", lineTypes)
	doc.Set("std_types", stdTypes)

	g := gridio.NewGraph()
	attrs := gridio.NewDict()
	attrs.Set("weight", 0.17)
	g.AddNode(int64(0), nil)
	g.AddNode(int64(1), nil)
	g.AddNode(int64(5), nil)
	g.AddEdge(int64(0), int64(1), attrs)
	g.AddEdge(int64(1), int64(5), nil)
	doc.Set("topology", g)

	geo := gridio.NewGeometrySet("bus")
	geo.Add(int64(0), gridio.Point{X: 7.1, Y: 50.8})
	geo.Add(int64(1), gridio.Point{X: 7.2, Y: 50.9})
	geo.Add(int64(5), gridio.LineString{Points: []gridio.Point{{X: 7.1, Y: 50.8}, {X: 7.2, Y: 50.9}}})
	doc.Set("bus_geodata", geo)

	return doc
}

func roundTrip(t *testing.T, doc *gridio.Document, opts ...gridio.Option) *gridio.Document {
	t.Helper()
	text, err := gridio.ToJSON(doc, opts...)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text, opts...)
	require.NoError(t, err)
	got, ok := v.(*gridio.Document)
	require.True(t, ok, "decoded %T, want *gridio.Document", v)
	return got
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := newTestNetwork(t)
	got := roundTrip(t, doc)

	assert.True(t, got.Equal(doc))
	assert.Equal(t, doc.Names(), got.Names())
	assert.Equal(t, gridio.FormatVersion, got.Version())
}

func TestRoundTripPreservesDTypes(t *testing.T) {
	got := roundTrip(t, newTestNetwork(t))

	bus := got.Table("bus")
	require.NotNil(t, bus)
	assert.Equal(t, gridio.DTypeFloat64, bus.Columns[1].DType)
	assert.IsType(t, "", bus.At(0, "name"))
	assert.IsType(t, float64(0), bus.At(0, "vn_kv"))
	assert.IsType(t, true, bus.At(0, "in_service"))

	load := got.Table("load")
	require.NotNil(t, load)
	assert.IsType(t, int64(0), load.At(0, "bus"))
	assert.True(t, math.IsNaN(load.At(2, "p_mw").(float64)))
	assert.True(t, math.IsInf(load.At(0, "q_mvar").(float64), 1))
	assert.True(t, math.IsInf(load.At(1, "q_mvar").(float64), -1))
}

func TestRoundTripPreservesRowLabels(t *testing.T) {
	got := roundTrip(t, newTestNetwork(t))

	bus := got.Table("bus")
	require.NotNil(t, bus)
	assert.Equal(t, []any{int64(0), int64(1), int64(5)}, bus.Index)

	load := got.Table("load")
	require.NotNil(t, load)
	assert.Equal(t, []any{int64(0), int64(0), int64(2)}, load.Index)
}

func TestRoundTripEmptyTableKeepsSchema(t *testing.T) {
	got := roundTrip(t, newTestNetwork(t))

	trafo := got.Table("trafo")
	require.NotNil(t, trafo)
	assert.Equal(t, 0, trafo.Len())
	require.Len(t, trafo.Columns, 3)
	assert.Equal(t, "hv_bus", trafo.Columns[0].Name)
	assert.Equal(t, gridio.DTypeFloat64, trafo.Columns[2].DType)
}

func TestRoundTripDynamicColumn(t *testing.T) {
	doc := newTestNetwork(t)
	bus := doc.Table("bus")
	bus.AddColumn("max_vm_pu", gridio.DTypeFloat64, 1.05)

	got := roundTrip(t, doc)
	gotBus := got.Table("bus")
	require.NotNil(t, gotBus)
	require.Equal(t, 4, len(gotBus.Columns))
	assert.Equal(t, gridio.DTypeFloat64, gotBus.Columns[3].DType)
	assert.Equal(t, 1.05, gotBus.At(1, "max_vm_pu"))
}

func TestRoundTripContainerKinds(t *testing.T) {
	doc := gridio.NewDocument()
	extras := gridio.NewDict()
	extras.Set("tuple", gridio.NewTuple(int64(1), "two", 3.0))
	extras.Set("set", gridio.NewSet(int64(1), int64(2), int64(3)))
	extras.Set("frozen", gridio.NewFrozenSet("a", "b"))
	extras.Set("floats", gridio.Float64Array{1.5, math.NaN(), 3.0})
	extras.Set("ints", gridio.Int64Array{1, 2, 3})
	doc.Set("extras", extras)

	got := roundTrip(t, doc)
	gotExtras := got.Dict("extras")
	require.NotNil(t, gotExtras)

	tup, _ := gotExtras.Get("tuple")
	require.IsType(t, gridio.Tuple{}, tup)
	assert.Equal(t, gridio.NewTuple(int64(1), "two", 3.0), tup)

	set, _ := gotExtras.Get("set")
	require.IsType(t, gridio.Set{}, set)
	assert.True(t, set.(gridio.Set).Contains(int64(2)))

	frozen, _ := gotExtras.Get("frozen")
	require.IsType(t, gridio.FrozenSet{}, frozen)

	floats, _ := gotExtras.Get("floats")
	require.IsType(t, gridio.Float64Array{}, floats)
	assert.True(t, math.IsNaN(floats.(gridio.Float64Array)[1]))

	ints, _ := gotExtras.Get("ints")
	assert.Equal(t, gridio.Int64Array{1, 2, 3}, ints)
}

func TestRoundTripNonStringDictKeys(t *testing.T) {
	profiles := gridio.NewDict()
	profiles.Set(int64(0), "off-peak")
	profiles.Set(int64(1), "peak")
	profiles.Set(true, "flag-keyed")

	text, err := gridio.ToJSON(profiles)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)

	got, ok := v.(*gridio.Dict)
	require.True(t, ok)
	assert.Equal(t, []any{int64(0), int64(1), true}, got.Keys())
	peak, _ := got.Get(int64(1))
	assert.Equal(t, "peak", peak)
}

func TestRoundTripReservedKeysInPlainDict(t *testing.T) {
	d := gridio.NewDict()
	d.Set("_type", "not a tag")
	d.Set("value", int64(42))

	text, err := gridio.ToJSON(d)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)

	got, ok := v.(*gridio.Dict)
	require.True(t, ok)
	notTag, _ := got.Get("_type")
	assert.Equal(t, "not a tag", notTag)
}

func TestRoundTripMultiDocumentPayload(t *testing.T) {
	gridA := newTestNetwork(t)
	nets := gridio.NewDict()
	nets.Set("grid_a", gridA)
	nets.Set("grid_b", newTestNetwork(t))

	text, err := gridio.ToJSON(nets)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)

	got, ok := v.(*gridio.Dict)
	require.True(t, ok)
	a, _ := got.Get("grid_a")
	require.IsType(t, &gridio.Document{}, a)
	assert.True(t, a.(*gridio.Document).Equal(gridA))
}

func TestRoundTripDocumentSequencePayload(t *testing.T) {
	gridA := newTestNetwork(t)
	gridB := newTestNetwork(t)
	payload := []any{
		gridA,
		gridB,
		gridio.NewSet(int64(1), int64(2)),
		gridio.NewTuple("a", int64(3)),
	}

	text, err := gridio.ToJSON(payload)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)

	got, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, got, 4)

	docA, ok := got[0].(*gridio.Document)
	require.True(t, ok)
	assert.True(t, docA.Equal(gridA))
	docB, ok := got[1].(*gridio.Document)
	require.True(t, ok)
	assert.True(t, docB.Equal(gridB))

	set, ok := got[2].(gridio.Set)
	require.True(t, ok)
	assert.True(t, set.Contains(int64(1)))
	assert.Equal(t, gridio.NewTuple("a", int64(3)), got[3])
}

func TestToJSONFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.json")
	doc := newTestNetwork(t)

	require.NoError(t, gridio.ToJSONFile(path, doc))
	v, err := gridio.FromJSONFile(path)
	require.NoError(t, err)
	got, ok := v.(*gridio.Document)
	require.True(t, ok)
	assert.True(t, got.Equal(doc))

	// No temp file debris next to the target.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "net.json", entries[0].Name())
}

func TestDocumentClone(t *testing.T) {
	doc := newTestNetwork(t)
	clone, err := doc.Clone()
	require.NoError(t, err)
	require.True(t, clone.Equal(doc))

	// The clone owns its tables.
	clone.Table("bus").SetAt(0, "vn_kv", 220.0)
	assert.Equal(t, 110.0, doc.Table("bus").At(0, "vn_kv"))
}

func TestScalarFidelity(t *testing.T) {
	doc := gridio.NewDocument()
	doc.Set("int_scalar", int64(7))
	doc.Set("float_scalar", 7.0)
	doc.Set("nan_scalar", math.NaN())
	doc.Set("nothing", nil)

	got := roundTrip(t, doc)
	i, _ := got.Get("int_scalar")
	assert.Equal(t, int64(7), i)
	f, _ := got.Get("float_scalar")
	assert.Equal(t, 7.0, f)
	n, _ := got.Get("nan_scalar")
	assert.True(t, math.IsNaN(n.(float64)))
	z, ok := got.Get("nothing")
	assert.True(t, ok)
	assert.Nil(t, z)
}
