// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import "image"

// GridSize returns the number of tile columns and rows needed to cover a
// canvas of the given size. Non-positive sizes yield an empty grid.
func GridSize(canvas image.Point) image.Point {
	if canvas.X <= 0 || canvas.Y <= 0 {
		return image.Point{}
	}
	return image.Pt(ceilDiv(canvas.X, FullSize), ceilDiv(canvas.Y, FullSize))
}

// CanvasRect returns the canvas rectangle anchored at the origin.
func CanvasRect(canvas image.Point) image.Rectangle {
	return image.Rectangle{Max: canvas}.Canon()
}

// WholeCanvas returns an area covering every tile of the canvas, bounded by
// the canvas rectangle.
func WholeCanvas(canvas image.Point) Area {
	grid := GridSize(canvas)
	s := make(Set, grid.X*grid.Y)
	for y := range grid.Y {
		for x := range grid.X {
			s.Add(Coord{X: x, Y: y})
		}
	}
	return NewArea(s, CanvasRect(canvas))
}

// TouchingRect returns every tile that shares at least one pixel with r.
// Empty rectangles touch no tiles.
func TouchingRect(r image.Rectangle) Set {
	if r.Empty() {
		return Set{}
	}
	x0, y0 := floorDiv(r.Min.X, FullSize), floorDiv(r.Min.Y, FullSize)
	x1, y1 := floorDiv(r.Max.X-1, FullSize), floorDiv(r.Max.Y-1, FullSize)

	s := make(Set, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			s.Add(Coord{X: x, Y: y})
		}
	}
	return s
}

// BoundsOf returns the union of the canvas extents of every tile in s.
// The result is the chunk-aligned bounding box of the set.
func BoundsOf(s Set) image.Rectangle {
	var b image.Rectangle
	first := true
	for c := range s {
		if first {
			b = c.Rect()
			first = false
			continue
		}
		b = b.Union(c.Rect())
	}
	return b
}

// ClipToGrid removes tiles that lie outside the canvas grid.
func ClipToGrid(s Set, canvas image.Point) {
	grid := GridSize(canvas)
	for c := range s {
		if c.X < 0 || c.Y < 0 || c.X >= grid.X || c.Y >= grid.Y {
			delete(s, c)
		}
	}
}
