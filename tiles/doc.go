// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tiles defines the tile grid shared by every docrender output.
//
// The canvas is divided into square tiles of FullSize canvas pixels. Tiles are
// the unit of dirty tracking and redraw. The grid is the same at every
// resolution tier: a tile rendered at tier R covers the same canvas region but
// has FullSize*R.Multiplier() pixels per side, so a tile set computed once
// applies to all four tier surfaces.
//
// # Areas
//
// An Area pairs a tile Set with an optional canvas-space bounding rectangle.
// An empty rectangle means "absent": merging areas unions both parts and an
// absent rectangle never shrinks a present one.
//
// # Thread Safety
//
// Set and Area are plain values with map storage. They are NOT safe for
// concurrent mutation.
package tiles
