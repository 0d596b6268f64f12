// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// encode.go — the encoder walk: flattens any registered value into a
// structural value, depth-first through the registry, then renders it as
// interchange text. ToJSON/ToJSONFile are the public entry points.

package gridio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Encoder walks native values into structural values. Registered encode
// functions receive it to flatten their children; a zero Encoder is ready
// to use. Encoders only read the registry and carry no per-call state, but
// callers must not mutate a document a concurrent encode is traversing.
type Encoder struct{}

// Encode flattens v into a structural value. Values of unknown runtime type
// fail with ErrUnregisteredType naming the type.
func (e *Encoder) Encode(v any) (any, error) {
	switch x := normalizeScalar(v).(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string:
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			sv, err := e.Encode(it)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	case *Dict:
		return e.encodeDict(x)
	default:
		return e.encodeTagged(x)
	}
}

// encodeDict emits a plain grammar object for string-keyed dicts and falls
// back to the tagged dict form when keys are non-string or would collide
// with the reserved envelope keys.
func (e *Encoder) encodeDict(d *Dict) (any, error) {
	if !d.stringKeys() || d.hasReservedKeys() {
		return e.encodeTagged(d)
	}
	out := NewDict()
	for _, k := range d.keys {
		sv, err := e.Encode(d.vals[k])
		if err != nil {
			return nil, err
		}
		out.Set(k, sv)
	}
	return out, nil
}

func (e *Encoder) encodeTagged(v any) (any, error) {
	entry, ok := lookupType(typeOf(v))
	if !ok {
		return nil, unregisteredTypeError(v)
	}
	payload, err := entry.encode(e, v)
	if err != nil {
		return nil, err
	}
	return &Tagged{Tag: entry.tag, Data: payload}, nil
}

// encodeSorted encodes a slice of values and returns the structural results
// ordered by their rendered text. Sets use it so identical contents always
// serialize identically.
func (e *Encoder) encodeSorted(items []any) ([]any, error) {
	type pair struct {
		sv  any
		txt string
	}
	pairs := make([]pair, len(items))
	for i, it := range items {
		sv, err := e.Encode(it)
		if err != nil {
			return nil, err
		}
		txt, err := writeText(sv)
		if err != nil {
			return nil, err
		}
		pairs[i] = pair{sv: sv, txt: string(txt)}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].txt < pairs[j].txt })
	out := make([]any, len(pairs))
	for i, p := range pairs {
		out[i] = p.sv
	}
	return out, nil
}

// Encode flattens v into a structural value using the process registry.
func Encode(v any) (any, error) {
	var e Encoder
	return e.Encode(v)
}

// ToJSON serializes v (a document, or any registered value, or a sequence
// mixing several) to interchange text. With WithEncryption the text is
// wrapped into an encrypted envelope that no longer parses as the plain
// grammar.
func ToJSON(v any, opts ...Option) (string, error) {
	o := applyOptions(opts)
	start := time.Now()
	sv, err := Encode(v)
	if err != nil {
		return "", err
	}
	text, err := writeText(sv)
	if err != nil {
		return "", err
	}
	o.metrics.RecordEncode(time.Since(start), len(text))
	if o.passphrase != "" {
		return EncryptText(string(text), o.passphrase)
	}
	return string(text), nil
}

// ToJSONFile serializes v into the named file. The payload is written to a
// temporary file in the same directory and renamed into place, so a failed
// write never leaves a half-written file visible under its final name.
func ToJSONFile(path string, v any, opts ...Option) error {
	text, err := ToJSON(v, opts...)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".gridio-*")
	if err != nil {
		return fmt.Errorf("gridio: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("gridio: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("gridio: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("gridio: rename into %s: %w", path, err)
	}
	return nil
}
