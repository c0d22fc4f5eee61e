// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"image"
	"math"

	"github.com/gogpu/docrender/tiles"
)

// DefaultSize is the default length of a thumbnail's longer side.
const DefaultSize = 48

// smoothingThreshold is the destination-per-source pixel ratio below which
// thumbnails are resampled with a smoothing filter.
const smoothingThreshold = 1.5

// ThumbnailSize returns the buffer size of a thumbnail for content of the
// given size: the longer side is size and the shorter side keeps the aspect
// ratio, never below one pixel. Empty content yields the zero size.
func ThumbnailSize(content image.Point, size int) image.Point {
	if content.X <= 0 || content.Y <= 0 || size <= 0 {
		return image.Point{}
	}
	if content.X >= content.Y {
		short := int(math.Round(float64(size) * float64(content.Y) / float64(content.X)))
		return image.Pt(size, max(short, 1))
	}
	short := int(math.Round(float64(size) * float64(content.X) / float64(content.Y)))
	return image.Pt(max(short, 1), size)
}

// tierForScale picks the render tier for a thumbnail drawn at scale
// thumbnail pixels per canvas pixel.
func tierForScale(scale float64) tiles.Resolution {
	switch {
	case scale > 1.0/2:
		return tiles.Full
	case scale > 1.0/4:
		return tiles.Half
	case scale > 1.0/8:
		return tiles.Quarter
	default:
		return tiles.Eighth
	}
}

// tierForTiles picks the tier at which tight bounds are measured, from the
// number of tiles the content's chunk-aligned bounds span.
func tierForTiles(n int) tiles.Resolution {
	switch {
	case n > 64:
		return tiles.Eighth
	case n > 16:
		return tiles.Quarter
	case n > 8:
		return tiles.Half
	default:
		return tiles.Full
	}
}

// chunkArea returns the number of tiles covered by the chunk-aligned
// bounding box of s.
func chunkArea(s tiles.Set) int {
	b := tiles.BoundsOf(s)
	return (b.Dx() / tiles.FullSize) * (b.Dy() / tiles.FullSize)
}
