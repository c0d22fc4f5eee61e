// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package compose defines how tiles of a layered document are turned into
// pixels.
//
// A Compositor renders one tile at a time, either of the whole document or of
// the subtree below one member. The result is a small tagged union: a Filled
// tile carrying pixels, or Empty when the tile is fully transparent. Software
// is the reference Compositor; it evaluates visibility, opacity, blend modes,
// masks and clip-to-below on the CPU.
package compose

import (
	"image"

	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/tiles"
)

// Result is the outcome of rendering one tile. It is either Filled or Empty.
type Result interface {
	result()
}

// Filled is a rendered tile.
//
// Image covers the whole tile at the requested tier and starts at the origin.
// When the render was clipped, pixels outside the clip are undefined.
type Filled struct {
	Image *image.RGBA
}

// Empty reports that the tile is fully transparent.
type Empty struct{}

func (Filled) result() {}
func (Empty) result()  {}

// Compositor renders document tiles.
//
// Implementations must be safe for concurrent use: callers render
// independent tiles in parallel. The tree is only read.
type Compositor interface {
	// RenderTile composites every visible member of the document for tile c at
	// tier res. clip is a canvas-space rectangle; when it is not empty only
	// pixels inside it need to be produced.
	RenderTile(tree doc.Tree, c tiles.Coord, res tiles.Resolution, clip image.Rectangle) Result

	// RenderSubtree composites the content of root for tile c at tier res, as
	// shown by its own thumbnail: the member's own visibility, opacity, blend
	// mode and mask are not applied.
	RenderSubtree(tree doc.Tree, root doc.MemberID, c tiles.Coord, res tiles.Resolution) Result
}

// Releaser is implemented by compositors that recycle tile buffers.
// Callers hand back a Result once they no longer read its pixels.
type Releaser interface {
	Release(res tiles.Resolution, r Result)
}

// Release hands r back to comp when comp implements Releaser.
func Release(comp Compositor, res tiles.Resolution, r Result) {
	if rel, ok := comp.(Releaser); ok {
		rel.Release(res, r)
	}
}
