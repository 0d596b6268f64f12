// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// writer.go — serializes a structural value to the textual interchange
// format. The grammar is a superset of JSON: NaN, Infinity and -Infinity are
// first-class number literals, mapping keys are emitted in insertion order
// (never sorted), and integers never carry a decimal point while floats
// always do, so the numeric kind survives re-parsing.

package gridio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// writeText renders a structural value as canonical interchange text. The
// same input always produces byte-identical output.
func writeText(v any) ([]byte, error) {
	var b []byte
	b, err := appendValue(b, v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func appendValue(b []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(b, "null"...), nil
	case bool:
		if x {
			return append(b, "true"...), nil
		}
		return append(b, "false"...), nil
	case int64:
		return strconv.AppendInt(b, x, 10), nil
	case float64:
		return appendFloat(b, x), nil
	case string:
		return appendString(b, x), nil
	case []any:
		return appendArray(b, x)
	case *Dict:
		return appendObject(b, x)
	case *Tagged:
		return appendTagged(b, x)
	default:
		// The encoder only ever hands structural values to the writer; a
		// different type here is a codec bug, not caller input.
		return nil, fmt.Errorf("gridio: writer received non-structural value %T", v)
	}
}

func appendFloat(b []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(b, "NaN"...)
	case math.IsInf(f, 1):
		return append(b, "Infinity"...)
	case math.IsInf(f, -1):
		return append(b, "-Infinity"...)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	b = append(b, s...)
	// Integral floats keep a trailing ".0" so the scanner restores them as
	// float64, not int64.
	if !strings.ContainsAny(s, ".eE") {
		b = append(b, ".0"...)
	}
	return b
}

const hexDigits = "0123456789abcdef"

func appendString(b []byte, s string) []byte {
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			if r < 0x20 {
				b = append(b, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
			} else {
				b = utf8.AppendRune(b, r)
			}
		}
	}
	return append(b, '"')
}

func appendArray(b []byte, items []any) ([]byte, error) {
	b = append(b, '[')
	var err error
	for i, it := range items {
		if i > 0 {
			b = append(b, ',', ' ')
		}
		if b, err = appendValue(b, it); err != nil {
			return nil, err
		}
	}
	return append(b, ']'), nil
}

func appendObject(b []byte, d *Dict) ([]byte, error) {
	b = append(b, '{')
	first := true
	var err error
	for _, k := range d.keys {
		key, ok := k.(string)
		if !ok {
			// The encoder routes non-string-keyed dicts through the tagged
			// dict form before they reach the writer.
			return nil, fmt.Errorf("gridio: writer received object with non-string key %T", k)
		}
		if !first {
			b = append(b, ',', ' ')
		}
		first = false
		b = appendString(b, key)
		b = append(b, ':', ' ')
		if b, err = appendValue(b, d.vals[k]); err != nil {
			return nil, err
		}
	}
	return append(b, '}'), nil
}

func appendTagged(b []byte, t *Tagged) ([]byte, error) {
	b = append(b, '{')
	b = appendString(b, TypeKey)
	b = append(b, ':', ' ')
	b = appendString(b, t.Tag)
	b = append(b, ',', ' ')
	b = appendString(b, DataKey)
	b = append(b, ':', ' ')
	b, err := appendValue(b, t.Data)
	if err != nil {
		return nil, err
	}
	return append(b, '}'), nil
}
