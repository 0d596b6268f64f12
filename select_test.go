// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// select_test.go — selective materialization: decoding only the entries a
// caller asks for, with schema-preserving placeholders for the rest.

package gridio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/gridio"
)

func decodeSelected(t *testing.T, entries []string, mode gridio.SelectMode) *gridio.Document {
	t.Helper()
	text, err := gridio.ToJSON(newTestNetwork(t))
	require.NoError(t, err)
	v, err := gridio.FromJSON(text, gridio.WithEntries(entries, mode))
	require.NoError(t, err)
	doc, ok := v.(*gridio.Document)
	require.True(t, ok)
	return doc
}

func TestSelectSkipUnlisted(t *testing.T) {
	doc := decodeSelected(t, []string{"bus"}, gridio.SkipUnlisted)

	bus := doc.Table("bus")
	require.NotNil(t, bus)
	assert.Equal(t, 3, bus.Len())

	// Unlisted tables stay present with their full schema and no rows.
	load := doc.Table("load")
	require.NotNil(t, load)
	assert.Equal(t, 0, load.Len())
	require.Len(t, load.Columns, 3)
	assert.Equal(t, "p_mw", load.Columns[1].Name)
	assert.Equal(t, gridio.DTypeFloat64, load.Columns[1].DType)
}

func TestSelectDropUnlisted(t *testing.T) {
	doc := decodeSelected(t, []string{"load"}, gridio.DropUnlisted)

	load := doc.Table("load")
	require.NotNil(t, load)
	assert.Equal(t, 3, load.Len())

	bus := doc.Table("bus")
	require.NotNil(t, bus)
	assert.Equal(t, 0, bus.Len())
	require.Len(t, bus.Columns, 3)
	assert.Equal(t, "vn_kv", bus.Columns[1].Name)
}

func TestSelectKeepsNonTabularEntries(t *testing.T) {
	doc := decodeSelected(t, []string{"bus"}, gridio.DropUnlisted)

	// Scalars, nested dicts and the version entry materialize regardless of
	// the selection.
	assert.Equal(t, gridio.FormatVersion, doc.Version())
	f, ok := doc.Get("f_hz")
	require.True(t, ok)
	assert.Equal(t, 50.0, f)
	require.NotNil(t, doc.Dict("std_types"))

	// Graph and geometry entries are selectable and were not selected.
	topo, _ := doc.Get("topology")
	g, ok := topo.(*gridio.Graph)
	require.True(t, ok)
	assert.Empty(t, g.Nodes)

	geoV, _ := doc.Get("bus_geodata")
	geo, ok := geoV.(*gridio.GeometrySet)
	require.True(t, ok)
	assert.Empty(t, geo.Shapes)
	assert.Equal(t, "bus", geo.For)
}

func TestSelectGraphAndGeometry(t *testing.T) {
	doc := decodeSelected(t, []string{"topology", "bus_geodata"}, gridio.SkipUnlisted)

	topo, _ := doc.Get("topology")
	g, ok := topo.(*gridio.Graph)
	require.True(t, ok)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)

	geoV, _ := doc.Get("bus_geodata")
	geo, ok := geoV.(*gridio.GeometrySet)
	require.True(t, ok)
	assert.Len(t, geo.Shapes, 3)
}

func TestSelectedDocumentReencodes(t *testing.T) {
	doc := decodeSelected(t, []string{"bus"}, gridio.SkipUnlisted)

	// A selected document is still a complete document: it re-encodes and
	// round-trips through the grammar.
	text, err := gridio.ToJSON(doc)
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)
	got, ok := v.(*gridio.Document)
	require.True(t, ok)
	assert.True(t, got.Equal(doc))
}

func TestSelectAllEntriesMatchesFullDecode(t *testing.T) {
	full := newTestNetwork(t)
	doc := decodeSelected(t, full.Names(), gridio.DropUnlisted)
	assert.True(t, doc.Equal(full))
}
