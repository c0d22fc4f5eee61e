// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package reconcile

import (
	"image"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/docrender/tiles"
)

// ViewportID names a registered viewport.
type ViewportID string

// Viewport is an on-screen view of the canvas.
//
// Center and Size are in canvas pixels; Angle is the rotation in radians
// around Center. Tiles touching the viewport are redrawn at Resolution.
type Viewport struct {
	Center     f64.Vec2
	Size       f64.Vec2
	Angle      float64
	Resolution tiles.Resolution

	// Deferred marks a viewport whose redraw may lag behind, such as a view
	// that is not focused. It is only refreshed by deferred passes, plus the
	// tiles that were already dirty at the last deferred pass.
	Deferred bool
}

// Tiles returns the tiles of a canvas of the given size that the viewport
// touches.
func (v Viewport) Tiles(canvas image.Point) tiles.Set {
	return tiles.TouchingRotatedRect(v.Center, v.Size, v.Angle, canvas)
}
