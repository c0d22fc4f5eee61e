// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpupresent

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/docrender/tiles"
)

// Common errors returned by Presenter operations.
var (
	// ErrClosed is returned when operations are attempted on a closed presenter.
	ErrClosed = errors.New("gpupresent: presenter is closed")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpupresent: nil DeviceProvider")

	// ErrNilSource is returned when a nil Source is passed.
	ErrNilSource = errors.New("gpupresent: nil Source")

	// ErrNoCreator is returned when the first Flush has no TextureCreator.
	ErrNoCreator = errors.New("gpupresent: no TextureCreator")
)

// Source provides the composited surface of a tier. *docrender.Pipeline
// implements Source.
type Source interface {
	Surface(res tiles.Resolution) *image.RGBA
}

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Presenter mirrors one tier surface into a GPU texture.
//
// Presenter is NOT safe for concurrent use.
type Presenter struct {
	provider gpucontext.DeviceProvider
	src      Source
	res      tiles.Resolution

	texture    gpucontext.Texture
	oldTexture gpucontext.Texture // awaiting deferred destruction
	texSize    image.Point

	dirty    []image.Rectangle
	dirtyAll bool
	staging  []byte
	closed   bool
}

// New creates a presenter for tier res of src.
// The provider should come from gogpu.App.GPUContextProvider().
func New(provider gpucontext.DeviceProvider, src Source, res tiles.Resolution) (*Presenter, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if src == nil {
		return nil, ErrNilSource
	}
	if !res.Valid() {
		return nil, fmt.Errorf("gpupresent: invalid resolution %v", res)
	}
	return &Presenter{
		provider: provider,
		src:      src,
		res:      res,
		dirtyAll: true, // first Flush uploads everything
	}, nil
}

// Resolution returns the tier the presenter mirrors.
func (p *Presenter) Resolution() tiles.Resolution {
	return p.res
}

// Invalidate marks the rectangles reported for the presenter's tier for
// upload on the next Flush. Rectangles of other tiers are ignored.
func (p *Presenter) Invalidate(rects map[tiles.Resolution][]image.Rectangle) {
	if p.dirtyAll {
		return
	}
	p.dirty = append(p.dirty, rects[p.res]...)
}

// InvalidateAll marks the whole surface for upload on the next Flush.
func (p *Presenter) InvalidateAll() {
	p.dirtyAll = true
	p.dirty = p.dirty[:0]
}

// IsDirty reports whether the next Flush uploads anything.
func (p *Presenter) IsDirty() bool {
	return p.dirtyAll || len(p.dirty) > 0
}

// Flush uploads pending changes and returns the current texture. The
// texture is created through creator on the first Flush and after the
// surface changed size; creator may be nil otherwise.
func (p *Presenter) Flush(creator gpucontext.TextureCreator) (gpucontext.Texture, error) {
	if p.closed {
		return nil, ErrClosed
	}
	surf := p.src.Surface(p.res)
	size := surf.Bounds().Size()

	// The old texture may still be referenced by in-flight command buffers;
	// it is destroyed after the replacement has been written.
	if p.texture != nil && size != p.texSize {
		p.retire()
		p.texture = nil
	}

	if p.texture == nil {
		if creator == nil {
			return nil, ErrNoCreator
		}
		tex, err := creator.NewTextureFromRGBA(size.X, size.Y, p.convert(surf, surf.Bounds()))
		if err != nil {
			return nil, fmt.Errorf("gpupresent: NewTextureFromRGBA failed: %w", err)
		}
		// Surfaces hold premultiplied alpha.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		p.texture = tex
		p.texSize = size
		p.destroyOld()
		p.clean()
		return p.texture, nil
	}

	if !p.IsDirty() {
		return p.texture, nil
	}
	if err := p.upload(surf); err != nil {
		return nil, err
	}
	p.clean()
	return p.texture, nil
}

func (p *Presenter) upload(surf *image.RGBA) error {
	ru, regional := p.texture.(gpucontext.TextureRegionUpdater)
	if regional && !p.dirtyAll {
		for _, r := range p.dirty {
			r = r.Intersect(surf.Bounds())
			if r.Empty() {
				continue
			}
			if err := ru.UpdateRegion(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), p.convert(surf, r)); err != nil {
				return fmt.Errorf("gpupresent: region update failed: %w", err)
			}
		}
		return nil
	}
	if u, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := u.UpdateData(p.convert(surf, surf.Bounds())); err != nil {
			return fmt.Errorf("gpupresent: texture update failed: %w", err)
		}
	}
	return nil
}

// convert packs r of surf into the staging buffer in the provider's
// surface byte order.
func (p *Presenter) convert(surf *image.RGBA, r image.Rectangle) []byte {
	n := r.Dx() * r.Dy() * 4
	if cap(p.staging) < n {
		p.staging = make([]byte, n)
	}
	buf := p.staging[:n]
	bgra := p.bgra()
	row := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := surf.Pix[surf.PixOffset(r.Min.X, y):][:row]
		dst := buf[(y-r.Min.Y)*row:][:row]
		if !bgra {
			copy(dst, src)
			continue
		}
		for i := 0; i < row; i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
		}
	}
	return buf
}

func (p *Presenter) bgra() bool {
	switch p.provider.SurfaceFormat() {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

func (p *Presenter) clean() {
	p.dirtyAll = false
	p.dirty = p.dirty[:0]
}

func (p *Presenter) retire() {
	p.destroyOld()
	p.oldTexture = p.texture
}

func (p *Presenter) destroyOld() {
	if p.oldTexture == nil {
		return
	}
	if d, ok := p.oldTexture.(textureDestroyer); ok {
		d.Destroy()
	}
	p.oldTexture = nil
}

// Texture returns the current texture without flushing, or nil before the
// first Flush.
func (p *Presenter) Texture() gpucontext.Texture {
	return p.texture
}

// RenderTo flushes and draws the texture at (x, y).
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    pr.RenderTo(dc.AsTextureDrawer(), 0, 0)
//	})
func (p *Presenter) RenderTo(dc gpucontext.TextureDrawer, x, y float32) error {
	if p.closed {
		return ErrClosed
	}
	tex, err := p.Flush(dc.TextureCreator())
	if err != nil {
		return err
	}
	return dc.DrawTexture(tex, x, y)
}

// Close releases the textures. Close is idempotent.
func (p *Presenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.destroyOld()
	if d, ok := p.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	p.texture = nil
	p.src = nil
	p.provider = nil
	return nil
}
