package parallel

import (
	"image"
	"sync"

	"github.com/gogpu/docrender/tiles"
)

// TilePool provides reuse of tile-sized RGBA buffers via sync.Pool.
//
// There is one pool per resolution tier since each tier has its own tile
// side length. Buffers handed out by Get are fully transparent.
//
// Thread safety: TilePool is safe for concurrent use.
type TilePool struct {
	pools [tiles.NumResolutions]sync.Pool
}

// NewTilePool creates a new tile pool.
func NewTilePool() *TilePool {
	p := &TilePool{}
	for _, res := range tiles.Resolutions() {
		side := res.PixelSize()
		p.pools[res].New = func() any {
			return image.NewRGBA(image.Rect(0, 0, side, side))
		}
	}
	return p
}

// Get returns a cleared buffer sized for a tile at res.
func (p *TilePool) Get(res tiles.Resolution) *image.RGBA {
	img := p.pools[res].Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put returns a buffer to the pool. Buffers of the wrong size are dropped.
func (p *TilePool) Put(res tiles.Resolution, img *image.RGBA) {
	if img == nil || !res.Valid() {
		return
	}
	side := res.PixelSize()
	if img.Bounds() != image.Rect(0, 0, side, side) {
		return
	}
	p.pools[res].Put(img)
}
