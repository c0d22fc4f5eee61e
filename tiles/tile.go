// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import (
	"fmt"
	"image"
)

// FullSize is the side length of a tile in canvas pixels.
// At Full resolution one canvas pixel maps to one surface pixel.
const FullSize = 256

// Coord identifies a tile by column (X) and row (Y).
// Tile (0, 0) covers canvas pixels [0, FullSize) on both axes.
type Coord struct {
	X int
	Y int
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Rect returns the canvas-space extent of the tile.
func (c Coord) Rect() image.Rectangle {
	return image.Rect(c.X*FullSize, c.Y*FullSize, (c.X+1)*FullSize, (c.Y+1)*FullSize)
}

// RectAt returns the extent of the tile inside the tier surface for res.
func (c Coord) RectAt(res Resolution) image.Rectangle {
	s := res.PixelSize()
	return image.Rect(c.X*s, c.Y*s, (c.X+1)*s, (c.Y+1)*s)
}

// Resolution is one of the four render tiers.
// Tiers are ordered from finest (Full) to coarsest (Eighth).
type Resolution uint8

const (
	// Full renders one surface pixel per canvas pixel.
	Full Resolution = iota
	// Half renders one surface pixel per 2x2 canvas pixels.
	Half
	// Quarter renders one surface pixel per 4x4 canvas pixels.
	Quarter
	// Eighth renders one surface pixel per 8x8 canvas pixels.
	Eighth
)

// NumResolutions is the number of render tiers.
const NumResolutions = 4

// Resolutions returns every tier, finest first.
func Resolutions() [NumResolutions]Resolution {
	return [NumResolutions]Resolution{Full, Half, Quarter, Eighth}
}

// Valid reports whether r is one of the four tiers.
func (r Resolution) Valid() bool {
	return r <= Eighth
}

// Multiplier returns the surface-to-canvas scale of the tier (1, 1/2, 1/4, 1/8).
func (r Resolution) Multiplier() float64 {
	return 1 / float64(int(1)<<r)
}

// PixelSize returns the side length in surface pixels of a tile at this tier.
func (r Resolution) PixelSize() int {
	return FullSize >> r
}

// ScaleRect converts a canvas-space rectangle into tier-surface space.
// The result covers every surface pixel the canvas rectangle touches.
func (r Resolution) ScaleRect(rect image.Rectangle) image.Rectangle {
	if rect.Empty() {
		return image.Rectangle{}
	}
	d := 1 << r
	return image.Rect(
		floorDiv(rect.Min.X, d),
		floorDiv(rect.Min.Y, d),
		ceilDiv(rect.Max.X, d),
		ceilDiv(rect.Max.Y, d),
	)
}

// ScaleSize converts a canvas size into the size of the tier surface.
func (r Resolution) ScaleSize(size image.Point) image.Point {
	d := 1 << r
	return image.Pt(ceilDiv(max(size.X, 0), d), ceilDiv(max(size.Y, 0), d))
}

// String returns the tier name.
func (r Resolution) String() string {
	switch r {
	case Full:
		return "full"
	case Half:
		return "half"
	case Quarter:
		return "quarter"
	case Eighth:
		return "eighth"
	default:
		return fmt.Sprintf("Resolution(%d)", uint8(r))
	}
}

// ParseResolution converts a tier name produced by String back to a Resolution.
func ParseResolution(s string) (Resolution, error) {
	for _, r := range Resolutions() {
		if r.String() == s {
			return r, nil
		}
	}
	return Full, fmt.Errorf("tiles: unknown resolution %q", s)
}
