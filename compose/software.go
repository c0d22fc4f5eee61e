// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compose

import (
	"image"
	"math"

	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/internal/blend"
	"github.com/gogpu/docrender/internal/parallel"
	"github.com/gogpu/docrender/tiles"
)

// Software is a CPU Compositor.
//
// Children of a folder are composited bottom-most first. A member with
// ClipToBelow is clipped to the alpha of the nearest member below it that
// does not clip; it is hidden when that member is hidden. Masks scale a
// member by mask luminance before opacity is applied.
//
// Tile buffers come from an internal pool; callers that are done with a
// Filled result may return it with Release.
type Software struct {
	pool *parallel.TilePool
}

// NewSoftware creates a software compositor.
func NewSoftware() *Software {
	return &Software{pool: parallel.NewTilePool()}
}

// RenderTile implements Compositor.
func (s *Software) RenderTile(tree doc.Tree, c tiles.Coord, res tiles.Resolution, clip image.Rectangle) Result {
	region := image.Rect(0, 0, res.PixelSize(), res.PixelSize())
	if !clip.Empty() {
		region = region.Intersect(res.ScaleRect(clip).Sub(c.RectAt(res).Min))
		if region.Empty() {
			return Empty{}
		}
	}
	root, ok := tree.Member(tree.Root())
	if !ok {
		return Empty{}
	}
	return s.finish(res, s.renderFolder(tree, root, c, res, region), region)
}

// RenderSubtree implements Compositor.
func (s *Software) RenderSubtree(tree doc.Tree, root doc.MemberID, c tiles.Coord, res tiles.Resolution) Result {
	m, ok := tree.Member(root)
	if !ok {
		return Empty{}
	}
	region := image.Rect(0, 0, res.PixelSize(), res.PixelSize())
	return s.finish(res, s.renderContent(tree, m, c, res, region), region)
}

// Release implements Releaser.
func (s *Software) Release(res tiles.Resolution, r Result) {
	if f, ok := r.(Filled); ok {
		s.pool.Put(res, f.Image)
	}
}

func (s *Software) finish(res tiles.Resolution, img *image.RGBA, region image.Rectangle) Result {
	if img == nil {
		return Empty{}
	}
	if transparent(img, region) {
		s.pool.Put(res, img)
		return Empty{}
	}
	return Filled{Image: img}
}

// renderContent renders the unmodified content of m: a copy of the committed
// tile for a layer, the composited children for a folder. It returns nil when
// nothing was drawn.
func (s *Software) renderContent(tree doc.Tree, m *doc.Member, c tiles.Coord, res tiles.Resolution, region image.Rectangle) *image.RGBA {
	if m.IsFolder() {
		return s.renderFolder(tree, m, c, res, region)
	}
	if m.Content == nil {
		return nil
	}
	src, ok := m.Content.CommittedTile(c, res)
	if !ok {
		return nil
	}
	dst := s.pool.Get(res)
	for y := region.Min.Y; y < region.Max.Y; y++ {
		copy(row(dst, region, y), row(src, region, y))
	}
	return dst
}

func (s *Software) renderFolder(tree doc.Tree, folder *doc.Member, c tiles.Coord, res tiles.Resolution, region image.Rectangle) *image.RGBA {
	var acc, base *image.RGBA
	baseVisible := false
	defer func() {
		if base != nil {
			s.pool.Put(res, base)
		}
	}()

	for _, id := range folder.Children {
		m, ok := tree.Member(id)
		if !ok {
			continue
		}
		if !m.ClipToBelow {
			if base != nil {
				s.pool.Put(res, base)
				base = nil
			}
			baseVisible = m.Visible
		}
		if !m.Visible || (m.ClipToBelow && !baseVisible) {
			continue
		}

		px := s.renderContent(tree, m, c, res, region)
		if px == nil {
			continue
		}
		if m.MaskActive() {
			if !s.applyMask(px, m.Mask, c, res, region) {
				s.pool.Put(res, px)
				continue
			}
		}
		if m.ClipToBelow {
			if base == nil {
				s.pool.Put(res, px)
				continue
			}
			for y := region.Min.Y; y < region.Max.Y; y++ {
				blend.ClipAlpha(row(px, region, y), row(base, region, y))
			}
		}

		if acc == nil {
			acc = s.pool.Get(res)
		}
		fn := blendFunc(m.BlendMode)
		op := opacityByte(m.Opacity)
		for y := region.Min.Y; y < region.Max.Y; y++ {
			blend.Composite(row(acc, region, y), row(px, region, y), fn, op)
		}

		if m.ClipToBelow {
			s.pool.Put(res, px)
		} else {
			base = px
		}
	}
	return acc
}

// applyMask scales px by the mask tile. It reports false when the mask hides
// the whole tile.
func (s *Software) applyMask(px *image.RGBA, mask doc.Content, c tiles.Coord, res tiles.Resolution, region image.Rectangle) bool {
	tile, ok := mask.CommittedTile(c, res)
	if !ok {
		return false
	}
	for y := region.Min.Y; y < region.Max.Y; y++ {
		blend.ApplyMask(row(px, region, y), row(tile, region, y))
	}
	return true
}

// blendFunc maps a layer blend mode to its pixel function. doc.BlendMode and
// blend.Mode share their ordering.
func blendFunc(m doc.BlendMode) blend.Func {
	return blend.For(blend.Mode(m))
}

func opacityByte(op float64) byte {
	return byte(math.Round(min(max(op, 0), 1) * 255))
}

// row returns the pixels of img on line y limited to region.
func row(img *image.RGBA, region image.Rectangle, y int) []byte {
	return img.Pix[img.PixOffset(region.Min.X, y):img.PixOffset(region.Max.X, y)]
}

func transparent(img *image.RGBA, region image.Rectangle) bool {
	for y := region.Min.Y; y < region.Max.Y; y++ {
		px := row(img, region, y)
		for i := 3; i < len(px); i += 4 {
			if px[i] != 0 {
				return false
			}
		}
	}
	return true
}

var (
	_ Compositor = (*Software)(nil)
	_ Releaser   = (*Software)(nil)
)
