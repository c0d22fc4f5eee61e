// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import (
	"cmp"
	"maps"
	"slices"
)

// Set is an unordered set of tile coordinates.
//
// The zero value (nil) is a valid empty set for reading. Mutating methods
// require a non-nil set; use NewSet.
type Set map[Coord]struct{}

// NewSet returns a set containing the given coordinates.
func NewSet(coords ...Coord) Set {
	s := make(Set, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts c into the set.
func (s Set) Add(c Coord) {
	s[c] = struct{}{}
}

// Remove deletes c from the set.
func (s Set) Remove(c Coord) {
	delete(s, c)
}

// Has reports whether c is in the set.
func (s Set) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of tiles in the set.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of s. Cloning a nil set yields an empty,
// non-nil set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Union adds every tile of o to s.
func (s Set) Union(o Set) {
	maps.Copy(s, o)
}

// Intersect removes from s every tile not in o.
func (s Set) Intersect(o Set) {
	for c := range s {
		if !o.Has(c) {
			delete(s, c)
		}
	}
}

// Difference removes from s every tile in o.
func (s Set) Difference(o Set) {
	if len(o) < len(s) {
		for c := range o {
			delete(s, c)
		}
		return
	}
	for c := range s {
		if o.Has(c) {
			delete(s, c)
		}
	}
}

// Overlaps reports whether s and o share at least one tile.
func (s Set) Overlaps(o Set) bool {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	for c := range small {
		if large.Has(c) {
			return true
		}
	}
	return false
}

// Equal reports whether s and o contain the same tiles.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for c := range s {
		if !o.Has(c) {
			return false
		}
	}
	return true
}

// Sorted returns the tiles in row-major order (top-to-bottom, left-to-right).
func (s Set) Sorted() []Coord {
	out := slices.Collect(maps.Keys(s))
	slices.SortFunc(out, func(a, b Coord) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}
