// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package doc

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/gogpu/docrender/internal/cache"
	"github.com/gogpu/docrender/tiles"
)

// lodCacheSize bounds the downsampled tiles kept per raster.
const lodCacheSize = 512

// Raster is sparse tiled pixel content.
//
// Only tiles that have been painted are stored. Each stored tile is a
// FullSize x FullSize premultiplied RGBA image. Downsampled versions for the
// coarser tiers are computed lazily and kept in a bounded LRU cache until the
// tile is painted again. Per-tile content bounds are cached the same way,
// without a bound.
//
// Raster is safe for concurrent reads; painting must not overlap with
// rendering, per the single-writer contract of the pipeline.
type Raster struct {
	mu     sync.Mutex
	tiles  map[tiles.Coord]*image.RGBA
	lods   *cache.LRU[lodKey, *image.RGBA]
	bounds map[tiles.Coord]image.Rectangle
}

type lodKey struct {
	coord tiles.Coord
	res   tiles.Resolution
}

// NewRaster returns an empty raster.
func NewRaster() *Raster {
	return &Raster{
		tiles:  make(map[tiles.Coord]*image.RGBA),
		lods:   cache.NewLRU[lodKey, *image.RGBA](lodCacheSize),
		bounds: make(map[tiles.Coord]image.Rectangle),
	}
}

// Fill replaces the pixels of rect with c and returns the affected area.
// Filling with a fully transparent color erases; tiles left without content
// are dropped.
func (r *Raster) Fill(rect image.Rectangle, c color.Color) tiles.Area {
	r.mu.Lock()
	defer r.mu.Unlock()

	rect = rect.Canon()
	affected := tiles.TouchingRect(rect)
	if rect.Empty() {
		return tiles.NewArea(affected, image.Rectangle{})
	}

	_, _, _, a := c.RGBA()
	src := image.NewUniform(c)
	for coord := range affected {
		tile, ok := r.tiles[coord]
		if !ok {
			if a == 0 {
				continue
			}
			tile = image.NewRGBA(image.Rect(0, 0, tiles.FullSize, tiles.FullSize))
			r.tiles[coord] = tile
		}
		origin := coord.Rect().Min
		local := rect.Intersect(coord.Rect()).Sub(origin)
		draw.Draw(tile, local, src, image.Point{}, draw.Src)
		r.invalidate(coord)

		if a == 0 && contentBounds(tile).Empty() {
			delete(r.tiles, coord)
		}
	}
	return tiles.NewArea(affected, rect)
}

// DrawImage composites img over the raster with its top-left corner at pt and
// returns the affected area.
func (r *Raster) DrawImage(img image.Image, pt image.Point) tiles.Area {
	r.mu.Lock()
	defer r.mu.Unlock()

	rect := img.Bounds().Sub(img.Bounds().Min).Add(pt)
	affected := tiles.TouchingRect(rect)
	for coord := range affected {
		tile, ok := r.tiles[coord]
		if !ok {
			tile = image.NewRGBA(image.Rect(0, 0, tiles.FullSize, tiles.FullSize))
		}
		origin := coord.Rect().Min
		local := rect.Intersect(coord.Rect()).Sub(origin)
		srcPt := local.Min.Add(origin).Sub(pt).Add(img.Bounds().Min)
		draw.Draw(tile, local, img, srcPt, draw.Over)
		r.invalidate(coord)

		if !ok && !contentBounds(tile).Empty() {
			r.tiles[coord] = tile
		}
	}
	return tiles.NewArea(affected, rect)
}

// Clear erases every tile.
func (r *Raster) Clear() tiles.Area {
	r.mu.Lock()
	defer r.mu.Unlock()

	populated := make(tiles.Set, len(r.tiles))
	for c := range r.tiles {
		populated.Add(c)
	}
	area := tiles.AreaOf(populated, image.Rectangle{})
	clear(r.tiles)
	r.lods.Clear()
	clear(r.bounds)
	return area
}

// PopulatedTiles implements Content.
func (r *Raster) PopulatedTiles() tiles.Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := make(tiles.Set, len(r.tiles))
	for c := range r.tiles {
		s.Add(c)
	}
	return s
}

// CommittedTile implements Content.
func (r *Raster) CommittedTile(c tiles.Coord, res tiles.Resolution) (*image.RGBA, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tile, ok := r.tiles[c]
	if !ok {
		return nil, false
	}
	if res == tiles.Full {
		return tile, true
	}

	key := lodKey{coord: c, res: res}
	if lod, ok := r.lods.Get(key); ok {
		return lod, true
	}

	px := res.PixelSize()
	small := imaging.Resize(tile, px, px, imaging.Box)
	lod := image.NewRGBA(image.Rect(0, 0, px, px))
	draw.Draw(lod, lod.Bounds(), small, small.Bounds().Min, draw.Src)
	r.lods.Put(key, lod)
	return lod, true
}

// TightBounds implements Content.
//
// Per-tile bounds are exact and cached; res only controls how far the result
// is snapped outward to the tier's pixel grid.
func (r *Raster) TightBounds(res tiles.Resolution) image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out image.Rectangle
	for c, tile := range r.tiles {
		b, ok := r.bounds[c]
		if !ok {
			b = contentBounds(tile)
			if !b.Empty() {
				b = b.Add(c.Rect().Min)
			}
			r.bounds[c] = b
		}
		out = out.Union(b)
	}
	if out.Empty() {
		return image.Rectangle{}
	}
	return snapOut(out, 1<<res)
}

func (r *Raster) invalidate(c tiles.Coord) {
	delete(r.bounds, c)
	for _, res := range tiles.Resolutions() {
		r.lods.Delete(lodKey{coord: c, res: res})
	}
}

// contentBounds returns the bounds of the non-transparent pixels of img.
func contentBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for x := 0; x < len(row); x += 4 {
			if row[x+3] == 0 {
				continue
			}
			px := b.Min.X + x/4
			minX, maxX = min(minX, px), max(maxX, px+1)
			minY, maxY = min(minY, y), max(maxY, y+1)
		}
	}
	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// snapOut grows r so that every edge lies on a multiple of step.
func snapOut(r image.Rectangle, step int) image.Rectangle {
	if step <= 1 {
		return r
	}
	floor := func(v int) int {
		q := v / step
		if v%step != 0 && v < 0 {
			q--
		}
		return q * step
	}
	ceil := func(v int) int { return -floor(-v) }
	return image.Rect(floor(r.Min.X), floor(r.Min.Y), ceil(r.Max.X), ceil(r.Max.Y))
}

var _ Content = (*Raster)(nil)
