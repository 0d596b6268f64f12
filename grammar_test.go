// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// grammar_test.go — white-box tests of the textual grammar: the exact
// rendering of numbers and special floats, key order, escapes, and the
// malformed-input taxonomy.

package gridio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, v any) string {
	t.Helper()
	b, err := writeText(v)
	require.NoError(t, err)
	return string(b)
}

func TestWriteNumbers(t *testing.T) {
	assert.Equal(t, "42", render(t, int64(42)))
	assert.Equal(t, "-7", render(t, int64(-7)))
	// Integral floats carry a fraction marker so they re-parse as floats.
	assert.Equal(t, "42.0", render(t, 42.0))
	assert.Equal(t, "-0.5", render(t, -0.5))
	assert.Equal(t, "NaN", render(t, math.NaN()))
	assert.Equal(t, "Infinity", render(t, math.Inf(1)))
	assert.Equal(t, "-Infinity", render(t, math.Inf(-1)))
}

func TestWriteStringEscapes(t *testing.T) {
	assert.Equal(t, `"plain"`, render(t, "plain"))
	assert.Equal(t, `"tab\there"`, render(t, "tab\there"))
	assert.Equal(t, `"quote\"backslash\\"`, render(t, `quote"backslash\`))
	assert.Equal(t, `"newline\n"`, render(t, "newline\n"))
	// Non-ASCII passes through raw.
	assert.Equal(t, `"Übung"`, render(t, "Übung"))
}

func TestWriteObjectKeyOrder(t *testing.T) {
	d := NewDict()
	d.Set("zebra", int64(1))
	d.Set("alpha", int64(2))
	d.Set("mid", int64(3))
	assert.Equal(t, `{"zebra": 1, "alpha": 2, "mid": 3}`, render(t, d))

	// Updating a key keeps its original position.
	d.Set("zebra", int64(9))
	assert.Equal(t, `{"zebra": 9, "alpha": 2, "mid": 3}`, render(t, d))
}

func TestParseNumbers(t *testing.T) {
	v, err := parseText([]byte("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = parseText([]byte("42.0"))
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	v, err = parseText([]byte("1e3"))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)

	v, err = parseText([]byte("NaN"))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.(float64)))

	v, err = parseText([]byte("[Infinity, -Infinity]"))
	require.NoError(t, err)
	arr := v.([]any)
	assert.True(t, math.IsInf(arr[0].(float64), 1))
	assert.True(t, math.IsInf(arr[1].(float64), -1))

	// Integer literals beyond int64 degrade to float64 instead of failing.
	v, err = parseText([]byte("99999999999999999999999999"))
	require.NoError(t, err)
	assert.IsType(t, float64(0), v)
}

func TestParseStringEscapes(t *testing.T) {
	v, err := parseText([]byte(`"a\tbé😀"`))
	require.NoError(t, err)
	assert.Equal(t, "a\tbé😀", v)
}

func TestParseObjectKeyOrder(t *testing.T) {
	v, err := parseText([]byte(`{"z": 1, "a": 2}`))
	require.NoError(t, err)
	d, ok := v.(*Dict)
	require.True(t, ok)
	assert.Equal(t, []any{"z", "a"}, d.Keys())
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"",
		"{",
		`{"a": 1,`,
		"[1, 2",
		`{"a": }`,
		`"unterminated`,
		"tru",
		"01x",
		"[1] trailing",
		`{"a" 1}`,
		`{1: 2}`,
	}
	for _, in := range cases {
		_, err := parseText([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedPayload, "input %q", in)
	}
}

func TestRenderParseStability(t *testing.T) {
	// A value whose text form is re-parsed must render identically again.
	d := NewDict()
	d.Set("f", 0.1)
	d.Set("i", int64(3))
	d.Set("s", "x\"y")
	d.Set("list", []any{nil, true, false})

	first := render(t, d)
	v, err := parseText([]byte(first))
	require.NoError(t, err)
	assert.Equal(t, first, render(t, v))
}

func TestTaggedEnvelopeRendering(t *testing.T) {
	tag := &Tagged{Tag: "tuple", Data: []any{int64(1), int64(2)}}
	assert.Equal(t, `{"_type": "tuple", "_data": [1, 2]}`, render(t, tag))
}
