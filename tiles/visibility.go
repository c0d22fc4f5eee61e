// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// angleEpsilon is the tolerance below which a rotation is treated as a
// multiple of 90 degrees and the axis-aligned fast path is used.
const angleEpsilon = 1e-9

// TouchingRotatedRect returns the tiles of a canvas grid that overlap a
// rectangle of the given size centered at center and rotated by angle radians
// around its center.
//
// Only tiles inside the canvas grid are returned. A rectangle with a
// non-positive dimension touches nothing.
func TouchingRotatedRect(center, size f64.Vec2, angle float64, canvas image.Point) Set {
	out := Set{}
	if size[0] <= 0 || size[1] <= 0 {
		return out
	}
	grid := GridSize(canvas)
	if grid.X == 0 || grid.Y == 0 {
		return out
	}

	corners := rotatedCorners(center, size, angle)
	minX, minY := corners[0][0], corners[0][1]
	maxX, maxY := minX, minY
	for _, p := range corners[1:] {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	fs := float64(FullSize)
	x0 := clamp(int(math.Floor(minX/fs)), 0, grid.X-1)
	y0 := clamp(int(math.Floor(minY/fs)), 0, grid.Y-1)
	x1 := clamp(int(math.Ceil(maxX/fs))-1, 0, grid.X-1)
	y1 := clamp(int(math.Ceil(maxY/fs))-1, 0, grid.Y-1)
	if maxX <= 0 || maxY <= 0 || minX >= float64(grid.X)*fs || minY >= float64(grid.Y)*fs {
		return out
	}

	aligned := isAxisAligned(angle)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := Coord{X: x, Y: y}
			if aligned || overlapsRotated(c, corners, angle) {
				out.Add(c)
			}
		}
	}
	return out
}

// rotatedCorners returns the corners of the rotated rectangle in canvas space,
// in winding order.
func rotatedCorners(center, size f64.Vec2, angle float64) [4]f64.Vec2 {
	sin, cos := math.Sincos(angle)
	// Rotation about the origin followed by translation to center.
	m := f64.Aff3{
		cos, -sin, center[0],
		sin, cos, center[1],
	}
	hw, hh := size[0]/2, size[1]/2
	local := [4]f64.Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	var out [4]f64.Vec2
	for i, p := range local {
		q := apply(m, p)
		out[i] = f64.Vec2{snap(q[0]), snap(q[1])}
	}
	return out
}

// snap rounds away floating point noise from sin/cos so that a viewport
// rotated by exactly 90 degrees does not leak into a neighbouring tile.
func snap(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func apply(m f64.Aff3, p f64.Vec2) f64.Vec2 {
	return f64.Vec2{
		m[0]*p[0] + m[1]*p[1] + m[2],
		m[3]*p[0] + m[4]*p[1] + m[5],
	}
}

func isAxisAligned(angle float64) bool {
	r := math.Mod(math.Abs(angle), math.Pi/2)
	return r < angleEpsilon || math.Pi/2-r < angleEpsilon
}

// overlapsRotated runs a separating-axis test between the tile square and the
// rotated rectangle. Touching edges do not count as overlap.
func overlapsRotated(c Coord, corners [4]f64.Vec2, angle float64) bool {
	r := c.Rect()
	square := [4]f64.Vec2{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
	}
	sin, cos := math.Sincos(angle)
	axes := [4]f64.Vec2{{1, 0}, {0, 1}, {cos, sin}, {-sin, cos}}
	for _, axis := range axes {
		aMin, aMax := project(square, axis)
		bMin, bMax := project(corners, axis)
		if aMax <= bMin || bMax <= aMin {
			return false
		}
	}
	return true
}

func project(poly [4]f64.Vec2, axis f64.Vec2) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, p := range poly {
		d := p[0]*axis[0] + p[1]*axis[1]
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
