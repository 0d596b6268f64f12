// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// decode.go — the decoder walk: parses interchange text into a structural
// value, then rebuilds native values bottom-up through the registry. The
// walk recognizes the tagged-value envelope at any depth, so an unknown tag
// surfaces even when buried inside a behavioral object's attribute map.

package gridio

import (
	"fmt"
	"os"
	"time"
)

// Decoder rebuilds native values from structural values. Registered decode
// functions receive it to materialize children explicitly, which is what
// lets the selective materializer skip subtrees.
type Decoder struct {
	opts options
}

// Decode materializes the structural value sv.
func (d *Decoder) Decode(sv any) (any, error) {
	switch x := sv.(type) {
	case nil, bool, int64, float64, string:
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			v, err := d.Decode(it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *Dict:
		if tag, payload, ok := taggedParts(x); ok {
			return d.decodeTagged(tag, payload)
		}
		out := NewDict()
		for _, k := range x.keys {
			v, err := d.Decode(x.vals[k])
			if err != nil {
				return nil, err
			}
			out.Set(k, v)
		}
		return out, nil
	case *Tagged:
		return d.decodeTagged(x.Tag, x.Data)
	default:
		return nil, fmt.Errorf("%w: unexpected structural value %T", ErrMalformedPayload, sv)
	}
}

func (d *Decoder) decodeTagged(tag string, payload any) (any, error) {
	entry, ok := lookupTag(tag)
	if !ok {
		return nil, unknownTagError(tag)
	}
	return entry.decode(d, payload)
}

// taggedParts recognizes the reserved envelope shape {"_type": …, "_data": …}
// produced by the encoder. A plain mapping can never match: the encoder
// routes dicts using reserved keys through the tagged dict form.
func taggedParts(d *Dict) (string, any, bool) {
	tv, ok := d.Get(TypeKey)
	if !ok {
		return "", nil, false
	}
	tag, ok := tv.(string)
	if !ok {
		return "", nil, false
	}
	payload, ok := d.Get(DataKey)
	if !ok {
		return "", nil, false
	}
	return tag, payload, true
}

// structuralTag peeks at the tag of a structural node without materializing
// it. Returns "" for untagged nodes.
func structuralTag(sv any) string {
	switch x := sv.(type) {
	case *Dict:
		if tag, _, ok := taggedParts(x); ok {
			return tag
		}
	case *Tagged:
		return x.Tag
	}
	return ""
}

// Decode materializes a structural value with the process registry and
// default options.
func Decode(sv any, opts ...Option) (any, error) {
	d := Decoder{opts: applyOptions(opts)}
	return d.Decode(sv)
}

// FromJSON parses interchange text and rebuilds the value it carries. A
// document decoded from an older format version is migrated to the current
// version unless WithoutMigration is given. Encrypted payloads require
// WithEncryption; feeding one to FromJSON without it fails with
// ErrMalformedPayload at the parsing stage.
func FromJSON(text string, opts ...Option) (any, error) {
	o := applyOptions(opts)
	if o.passphrase != "" {
		plain, err := DecryptText(text, o.passphrase)
		if err != nil {
			return nil, err
		}
		text = plain
	}
	start := time.Now()
	sv, err := parseText([]byte(text))
	if err != nil {
		return nil, err
	}
	d := Decoder{opts: o}
	v, err := d.Decode(sv)
	if err != nil {
		return nil, err
	}
	o.metrics.RecordDecode(time.Since(start), len(text))
	return v, nil
}

// FromJSONFile reads the named file and decodes it like FromJSON.
func FromJSONFile(path string, opts ...Option) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gridio: read %s: %w", path, err)
	}
	return FromJSON(string(data), opts...)
}
