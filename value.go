// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// value.go — the structural value model: the canonical intermediate form all
// registered types are converted to and from. A structural value is one of
// nil, bool, int64, float64, string, []any, *Dict or *Tagged. The textual
// grammar (scanner.go, writer.go) operates on nothing else.

package gridio

import "fmt"

// Reserved discriminator keys of the tagged-value envelope. A plain mapping
// containing either key is encoded through the tagged dict form so the
// reserved names can never be shadowed by document data.
const (
	TypeKey = "_type"
	DataKey = "_data"
)

// Tagged pairs a registered type tag with its structural payload. It
// serializes as {"_type": tag, "_data": payload}.
type Tagged struct {
	Tag  string
	Data any
}

// Dict is an insertion-ordered mapping with scalar keys. Keys keep the order
// in which they were first set; Set on an existing key updates the value in
// place. Keys may be any scalar (string, int64, float64, bool) — non-string
// keys survive a round trip through the tagged dict form.
type Dict struct {
	keys []any
	vals map[any]any
}

// NewDict returns an empty ordered mapping.
func NewDict() *Dict {
	return &Dict{vals: make(map[any]any)}
}

// DictOf builds a Dict from alternating key/value pairs, preserving pair
// order. It panics on an odd number of arguments; it is a literal helper.
func DictOf(pairs ...any) *Dict {
	if len(pairs)%2 != 0 {
		panic("gridio: DictOf requires an even number of arguments")
	}
	d := NewDict()
	for i := 0; i < len(pairs); i += 2 {
		d.Set(pairs[i], pairs[i+1])
	}
	return d
}

// Set inserts or updates a key. Numeric keys normalize to int64/float64 so
// that Set(1, v) and Set(int64(1), v) address the same slot.
func (d *Dict) Set(key, value any) {
	if d.vals == nil {
		d.vals = make(map[any]any)
	}
	key = normalizeScalar(key)
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = value
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	v, ok := d.vals[normalizeScalar(key)]
	return v, ok
}

// Has reports whether key is present.
func (d *Dict) Has(key any) bool {
	_, ok := d.vals[normalizeScalar(key)]
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (d *Dict) Delete(key any) {
	key = normalizeScalar(key)
	if _, ok := d.vals[key]; !ok {
		return
	}
	delete(d.vals, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Rename moves the value under from to the key to, keeping the original
// insertion position. It reports whether from existed. Renaming onto an
// existing key overwrites that key's value and drops its old position.
func (d *Dict) Rename(from, to any) bool {
	from, to = normalizeScalar(from), normalizeScalar(to)
	v, ok := d.vals[from]
	if !ok {
		return false
	}
	if _, clash := d.vals[to]; clash {
		d.Delete(to)
	}
	delete(d.vals, from)
	d.vals[to] = v
	for i, k := range d.keys {
		if k == from {
			d.keys[i] = to
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Dict) Keys() []any {
	out := make([]any, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Range calls fn for each entry in insertion order until fn returns false.
func (d *Dict) Range(fn func(key, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.vals[k]) {
			return
		}
	}
}

// stringKeys reports whether every key is a plain string. Only string-keyed
// dicts may serialize as bare grammar objects.
func (d *Dict) stringKeys() bool {
	for _, k := range d.keys {
		if _, ok := k.(string); !ok {
			return false
		}
	}
	return true
}

// hasReservedKeys reports whether the dict uses a reserved envelope key.
func (d *Dict) hasReservedKeys() bool {
	return d.Has(TypeKey) || d.Has(DataKey)
}

func (d *Dict) String() string {
	s := "Dict{"
	for i, k := range d.keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v: %v", k, d.vals[k])
	}
	return s + "}"
}

// normalizeScalar folds the Go integer and float families onto the two
// numeric kinds the structural model carries, int64 and float64. Everything
// else passes through unchanged.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
