// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"image"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/tiles"
)

// pass is one redraw pass over the accumulated areas.
type pass struct {
	cache  *Cache
	tree   doc.Tree
	comp   compose.Compositor
	jobs   []job
	events Events
}

// document redraws the pending tiles of the whole-document thumbnail,
// recreating it first when the canvas aspect changed. The thumbnail is not
// created until some area of the document has changed.
func (p *pass) document() {
	c := p.cache
	canvas := tiles.CanvasRect(p.tree.Size())
	size := ThumbnailSize(canvas.Size(), c.size)
	if size == (image.Point{}) {
		c.document = nil
		return
	}

	area := c.docArea
	if c.document == nil && area.IsEmpty() {
		return
	}
	if c.document == nil || c.document.Bounds().Size() != size {
		c.document = image.NewRGBA(image.Rectangle{Max: size})
		area = tiles.WholeCanvas(canvas.Size())
	}
	if area.IsEmpty() {
		return
	}

	dirty := area.Tiles.Clone()
	tiles.ClipToGrid(dirty, canvas.Size())
	p.schedule(c.document, canvas, dirty, area.Bounds, func(tc tiles.Coord, res tiles.Resolution) source {
		return rendered(p.comp, res, p.comp.RenderTile(p.tree, tc, res, image.Rectangle{}))
	})
	p.events = append(p.events, Event{Kind: DocumentChanged})
}

// member settles the bounds of one thumbnail and schedules its redraw.
func (p *pass) member(k key, pending tiles.Area) {
	c := p.cache
	m, ok := p.tree.Member(k.id)
	if !ok || (k.target == TargetMask && !m.HasMask()) {
		p.remove(k)
		return
	}

	old, cached := c.bounds[k]
	bounds := old
	if !cached || !pending.HasBounds() || !pending.Bounds.In(old) {
		bounds = p.tightBounds(m, k.target)
	}

	if bounds.Empty() {
		p.remove(k)
		return
	}

	thumb := c.thumbs[k]
	dirty := pending.Tiles
	clip := pending.Bounds
	changed := !cached || bounds != old || thumb == nil
	if changed {
		size := ThumbnailSize(bounds.Size(), c.size)
		kind := changedKind(k.target)
		if thumb == nil || thumb.Bounds().Size() != size {
			thumb = image.NewRGBA(image.Rectangle{Max: size})
			kind = Resized
		} else {
			clear(thumb.Pix)
		}
		c.thumbs[k] = thumb
		c.bounds[k] = bounds
		// The mapping into the buffer moved, so everything is redrawn.
		dirty = tiles.TouchingRect(bounds)
		clip = image.Rectangle{}
		p.events = append(p.events, Event{Kind: kind, Member: k.id, Target: k.target})
		c.log.Debug("preview: bounds changed", "member", k.id, "target", k.target, "bounds", bounds, "size", size)
	} else {
		p.events = append(p.events, Event{Kind: changedKind(k.target), Member: k.id, Target: k.target})
	}

	dirty = dirty.Clone()
	dirty.Intersect(tiles.TouchingRect(bounds))
	p.schedule(thumb, bounds, dirty, clip, p.fetcher(m, k.target))
}

func changedKind(t Target) EventKind {
	if t == TargetMask {
		return MaskChanged
	}
	return MemberChanged
}

// remove drops a thumbnail and its cached bounds.
func (p *pass) remove(k key) {
	c := p.cache
	if _, ok := c.thumbs[k]; ok {
		p.events = append(p.events, Event{Kind: Removed, Member: k.id, Target: k.target})
	}
	delete(c.thumbs, k)
	delete(c.bounds, k)
}

// prune drops state of members that left the tree or lost their mask.
func (p *pass) prune() {
	c := p.cache
	stale := func(k key) bool {
		m, ok := p.tree.Member(k.id)
		return !ok || (k.target == TargetMask && !m.HasMask())
	}
	for k := range c.bounds {
		if stale(k) {
			p.remove(k)
		}
	}
	for k := range c.thumbs {
		if stale(k) {
			p.remove(k)
		}
	}
}

// tightBounds measures the content bounds of a member for target, limited
// to the canvas.
func (p *pass) tightBounds(m *doc.Member, target Target) image.Rectangle {
	canvas := tiles.CanvasRect(p.tree.Size())
	if target == TargetMask {
		return measure(m.Mask).Intersect(canvas)
	}
	return p.contentBounds(m).Intersect(canvas)
}

// contentBounds is the tight bounds of a layer, or the union over the visible
// children of a folder.
func (p *pass) contentBounds(m *doc.Member) image.Rectangle {
	if !m.IsFolder() {
		return measure(m.Content)
	}
	var b image.Rectangle
	for _, id := range m.Children {
		child, ok := p.tree.Member(id)
		if !ok || !child.Visible {
			continue
		}
		b = b.Union(p.contentBounds(child))
	}
	return b
}

func measure(content doc.Content) image.Rectangle {
	if content == nil {
		return image.Rectangle{}
	}
	res := tierForTiles(chunkArea(content.PopulatedTiles()))
	return content.TightBounds(res)
}
