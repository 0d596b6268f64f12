// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// registry_test.go — third-party type registration: tag dispatch,
// last-write-wins re-registration, and the unknown-tag / unregistered-type
// failure taxonomy.

package gridio_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/gridio"
)

// measurement is a third-party value type the codec knows nothing about
// until a test registers it.
type measurement struct {
	Element string
	Value   float64
}

func registerMeasurement(tag string) {
	gridio.Register(tag, reflect.TypeOf(&measurement{}),
		func(e *gridio.Encoder, v any) (any, error) {
			m := v.(*measurement)
			payload := gridio.NewDict()
			payload.Set("element", m.Element)
			payload.Set("value", m.Value)
			return payload, nil
		},
		func(d *gridio.Decoder, payload any) (any, error) {
			pd, ok := payload.(*gridio.Dict)
			if !ok {
				return nil, fmt.Errorf("measurement payload is %T", payload)
			}
			m := &measurement{}
			if v, ok := pd.Get("element"); ok {
				m.Element, _ = v.(string)
			}
			if v, ok := pd.Get("value"); ok {
				m.Value, _ = v.(float64)
			}
			return m, nil
		})
}

func TestRegisterCustomType(t *testing.T) {
	registerMeasurement("test.measurement")
	assert.Contains(t, gridio.RegisteredTags(), "test.measurement")

	doc := gridio.NewDocument()
	doc.Set("m", &measurement{Element: "bus", Value: 1.02})

	got := roundTrip(t, doc)
	v, ok := got.Get("m")
	require.True(t, ok)
	m, ok := v.(*measurement)
	require.True(t, ok)
	assert.Equal(t, "bus", m.Element)
	assert.Equal(t, 1.02, m.Value)
}

func TestRegisterCustomTypeInsideTableCell(t *testing.T) {
	registerMeasurement("test.measurement.cell")

	tbl := gridio.NewTable(gridio.Column{Name: "object", DType: gridio.DTypeObject})
	tbl.ObjectColumn = "object"
	require.NoError(t, tbl.AppendRow(int64(0), &measurement{Element: "line", Value: 0.4}))
	doc := gridio.NewDocument()
	doc.Set("measurement", tbl)

	got := roundTrip(t, doc)
	cell := got.Table("measurement").At(0, "object")
	m, ok := cell.(*measurement)
	require.True(t, ok)
	assert.Equal(t, "line", m.Element)
}

type measurementV2 struct {
	Raw string
}

func TestRegisterLastWriteWins(t *testing.T) {
	tag := "test.rewire"
	registerMeasurement(tag)

	// Re-registering the tag rebinds both directions of the dispatch.
	gridio.Register(tag, reflect.TypeOf(&measurementV2{}),
		func(e *gridio.Encoder, v any) (any, error) {
			return v.(*measurementV2).Raw, nil
		},
		func(d *gridio.Decoder, payload any) (any, error) {
			s, _ := payload.(string)
			return &measurementV2{Raw: s}, nil
		})

	text, err := gridio.ToJSON(&measurementV2{Raw: "hello"})
	require.NoError(t, err)
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)
	assert.Equal(t, &measurementV2{Raw: "hello"}, v)

	// The displaced type is no longer encodable under the old tag.
	_, err = gridio.ToJSON(&measurement{Element: "x"})
	assert.ErrorIs(t, err, gridio.ErrUnregisteredType)
}

// gauge is a second third-party type for exercising type-binding ownership
// across tag re-registration.
type gauge struct {
	Pct float64
}

func registerGauge(tag string) {
	gridio.Register(tag, reflect.TypeOf(&gauge{}),
		func(e *gridio.Encoder, v any) (any, error) {
			return v.(*gauge).Pct, nil
		},
		func(d *gridio.Decoder, payload any) (any, error) {
			f, _ := payload.(float64)
			return &gauge{Pct: f}, nil
		})
}

func TestRegisterReboundTagKeepsOtherTypeBinding(t *testing.T) {
	registerGauge("test.gauge.a")
	registerGauge("test.gauge.b") // *gauge now encodes under this tag

	// Rebinding the first tag must not destroy the second tag's claim on
	// the type.
	gridio.Register("test.gauge.a", nil,
		func(e *gridio.Encoder, v any) (any, error) { return nil, nil },
		func(d *gridio.Decoder, payload any) (any, error) { return nil, nil })

	text, err := gridio.ToJSON(&gauge{Pct: 0.5})
	require.NoError(t, err)
	assert.Contains(t, text, "test.gauge.b")
	v, err := gridio.FromJSON(text)
	require.NoError(t, err)
	assert.Equal(t, &gauge{Pct: 0.5}, v)
}

func TestUnhashableDictKey(t *testing.T) {
	text := `{"_type": "dict", "_data": {"keys": [{"_type": "tuple", "_data": [1]}], "values": [0]}}`
	_, err := gridio.FromJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, gridio.ErrMalformedPayload)
}

func TestUnhashableSetElement(t *testing.T) {
	cases := map[string]string{
		"tuple in set":       `{"_type": "set", "_data": [{"_type": "tuple", "_data": [1]}]}`,
		"tuple in frozenset": `{"_type": "frozenset", "_data": [{"_type": "tuple", "_data": [1]}]}`,
		"set in set":         `{"_type": "set", "_data": [{"_type": "set", "_data": [1]}]}`,
	}
	for name, text := range cases {
		_, err := gridio.FromJSON(text)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, gridio.ErrMalformedPayload, name)
	}
}

func TestUnknownTagDeepInPayload(t *testing.T) {
	text := `{"outer": [1, {"_type": "no.such.tag", "_data": null}]}`
	_, err := gridio.FromJSON(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, gridio.ErrUnknownTag)
	assert.Contains(t, err.Error(), "no.such.tag")
}

func TestUnregisteredTypeNamesType(t *testing.T) {
	type private struct{ n int }
	_, err := gridio.ToJSON(&private{n: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, gridio.ErrUnregisteredType)
}
