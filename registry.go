// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// registry.go — the process-wide type registry mapping stable type tags to
// encode/decode functions. Built-in kinds register during package init;
// embedding applications register their behavioral object types the same way
// (see the control package). Registration is not synchronized with traffic:
// perform it during initialization, before any encode or decode call.

package gridio

import (
	"fmt"
	"reflect"
	"sync"
)

// EncodeFunc flattens a native value into its structural payload. Child
// values are encoded explicitly through the Encoder so the walk stays
// depth-first under the codec's control.
type EncodeFunc func(e *Encoder, v any) (any, error)

// DecodeFunc rebuilds a native value from its raw structural payload. The
// payload's children are still structural; the function materializes the
// ones it needs through the Decoder. This is what lets the selective
// materializer skip subtrees it was told to drop.
type DecodeFunc func(d *Decoder, payload any) (any, error)

type codecEntry struct {
	tag    string
	typ    reflect.Type
	encode EncodeFunc
	decode DecodeFunc
}

var (
	registryMu sync.RWMutex
	tagCodecs  = make(map[string]*codecEntry)
	typeCodecs = make(map[reflect.Type]*codecEntry)
)

// Register binds tag to an encoder/decoder pair for values of runtime type
// typ. Tags are globally unique: registering an existing tag overwrites the
// previous entry deterministically (last write wins), which is how an
// application overrides a built-in codec. typ may be nil for decode-only
// tags.
func Register(tag string, typ reflect.Type, enc EncodeFunc, dec DecodeFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	// Drop the displaced entry's type binding, but only while it still owns
	// it: another tag may have claimed the type since.
	if old, ok := tagCodecs[tag]; ok && old.typ != nil && typeCodecs[old.typ] == old {
		delete(typeCodecs, old.typ)
	}
	entry := &codecEntry{tag: tag, typ: typ, encode: enc, decode: dec}
	tagCodecs[tag] = entry
	if typ != nil {
		typeCodecs[typ] = entry
	}
}

func lookupTag(tag string) (*codecEntry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := tagCodecs[tag]
	return e, ok
}

func lookupType(t reflect.Type) (*codecEntry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := typeCodecs[t]
	return e, ok
}

// RegisteredTags returns the currently registered tags, for diagnostics.
func RegisteredTags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(tagCodecs))
	for tag := range tagCodecs {
		out = append(out, tag)
	}
	return out
}

func typeOf(v any) reflect.Type { return reflect.TypeOf(v) }

func unknownTagError(tag string) error {
	return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

func unregisteredTypeError(v any) error {
	return fmt.Errorf("%w: %s", ErrUnregisteredType, reflect.TypeOf(v))
}
