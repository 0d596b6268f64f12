// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// containers.go — container kinds that must stay distinguishable after a
// round trip: Tuple (immutable sequence), Set and FrozenSet. Sets are backed
// by deckarep/golang-set; the wrappers exist so the registry can dispatch on
// a concrete type and so set-ness versus frozenset-ness survives decoding.

package gridio

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Tuple is an immutable ordered sequence. It decodes back as a Tuple, never
// as a plain []any.
type Tuple []any

// NewTuple builds a Tuple with normalized numeric elements.
func NewTuple(items ...any) Tuple {
	out := make(Tuple, len(items))
	for i, v := range items {
		out[i] = normalizeScalar(v)
	}
	return out
}

// Set is an unordered collection of unique scalar values.
type Set struct {
	mapset.Set[any]
}

// NewSet builds a Set from the given elements.
func NewSet(items ...any) Set {
	s := mapset.NewThreadUnsafeSet[any]()
	for _, v := range items {
		s.Add(normalizeScalar(v))
	}
	return Set{s}
}

// FrozenSet is an immutable set, kept distinct from Set across a round trip.
type FrozenSet struct {
	mapset.Set[any]
}

// NewFrozenSet builds a FrozenSet from the given elements.
func NewFrozenSet(items ...any) FrozenSet {
	s := mapset.NewThreadUnsafeSet[any]()
	for _, v := range items {
		s.Add(normalizeScalar(v))
	}
	return FrozenSet{s}
}

// Float64Array is a dense numeric array with float64 dtype.
type Float64Array []float64

// Int64Array is a dense numeric array with int64 dtype.
type Int64Array []int64
