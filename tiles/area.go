// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import "image"

// Area is a set of affected tiles plus an optional canvas-space bounding
// rectangle.
//
// Bounds, when non-empty, lies inside the union of the tiles' extents and is
// usually tighter than it. An empty Bounds means the precise extent is
// unknown; consumers must then fall back to the tile extents.
//
// A nil Tiles set marks an area that carries no tile data at all. Change
// producers must never emit such an area for a region notification.
type Area struct {
	Tiles  Set
	Bounds image.Rectangle
}

// NewArea returns an area over tiles with the given bounds.
// Empty bounds are normalized to the zero rectangle.
func NewArea(tiles Set, bounds image.Rectangle) Area {
	return Area{Tiles: tiles, Bounds: canon(bounds)}
}

// AreaOf returns an area over tiles whose bounds are the union of the tile
// extents clipped to clip. An empty clip leaves the union unclipped.
func AreaOf(tiles Set, clip image.Rectangle) Area {
	b := BoundsOf(tiles)
	if !clip.Empty() {
		b = b.Intersect(clip)
	}
	return NewArea(tiles, b)
}

// Merge unions o into a, both the tile sets and the bounding rectangles.
func (a *Area) Merge(o Area) {
	if a.Tiles == nil {
		a.Tiles = make(Set, len(o.Tiles))
	}
	a.Tiles.Union(o.Tiles)
	a.Bounds = canon(a.Bounds.Union(o.Bounds))
}

// Clone returns a deep copy of a.
func (a Area) Clone() Area {
	return Area{Tiles: a.Tiles.Clone(), Bounds: a.Bounds}
}

// IsEmpty reports whether the area contains no tiles.
func (a Area) IsEmpty() bool {
	return len(a.Tiles) == 0
}

// HasBounds reports whether the precise bounding rectangle is known.
func (a Area) HasBounds() bool {
	return !a.Bounds.Empty()
}

// Equal reports whether a and o have the same tiles and bounds.
func (a Area) Equal(o Area) bool {
	return a.Tiles.Equal(o.Tiles) && canon(a.Bounds) == canon(o.Bounds)
}

// canon maps every empty rectangle to the zero rectangle so that "absent"
// compares equal regardless of how it was produced.
func canon(r image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}
