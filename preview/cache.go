// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package preview maintains the thumbnails of a layered document: one per
// member for its content, one per masked member for its mask, and one for the
// whole document.
//
// Dirty areas accumulate across batches and are only consumed by a redraw
// pass, so hosts can throttle thumbnail work. A redraw pass first settles the
// tight content bounds of every touched thumbnail, recreating buffers whose
// bounds changed, and then redraws only the dirty tiles of each buffer.
package preview

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"maps"
	"slices"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/gather"
	"github.com/gogpu/docrender/internal/logx"
	"github.com/gogpu/docrender/tiles"
)

// Executor runs independent work items and returns once all completed.
// *parallel.WorkerPool satisfies it.
type Executor interface {
	ExecuteAll(work []func())
}

type serial struct{}

func (serial) ExecuteAll(work []func()) {
	for _, fn := range work {
		fn()
	}
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	size   int
	exec   Executor
	logger *slog.Logger
}

// WithSize sets the length of the longer thumbnail side. Non-positive values
// keep DefaultSize.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithExecutor fetches tile content through e.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		if e != nil {
			o.exec = e
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

type key struct {
	id     doc.MemberID
	target Target
}

// Cache owns every thumbnail buffer and the state needed to update them
// incrementally.
//
// Cache is NOT safe for concurrent use.
type Cache struct {
	size int
	exec Executor
	log  *slog.Logger

	// Accumulated dirty areas, reset by each redraw pass.
	docArea tiles.Area
	images  map[doc.MemberID]tiles.Area
	masks   map[doc.MemberID]tiles.Area

	bounds   map[key]image.Rectangle
	thumbs   map[key]*image.RGBA
	document *image.RGBA
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	o := options{size: DefaultSize, exec: serial{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		size:   o.size,
		exec:   o.exec,
		log:    logx.Or(o.logger),
		images: make(map[doc.MemberID]tiles.Area),
		masks:  make(map[doc.MemberID]tiles.Area),
		bounds: make(map[key]image.Rectangle),
		thumbs: make(map[key]*image.RGBA),
	}
}

// Thumbnail returns the thumbnail buffer of a member. It returns false when
// the member has no content for target.
func (c *Cache) Thumbnail(id doc.MemberID, target Target) (*image.RGBA, bool) {
	img, ok := c.thumbs[key{id, target}]
	return img, ok
}

// Bounds returns the cached tight content bounds of a member, in canvas
// pixels.
func (c *Cache) Bounds(id doc.MemberID, target Target) (image.Rectangle, bool) {
	b, ok := c.bounds[key{id, target}]
	return b, ok
}

// Document returns the whole-document thumbnail, or nil before the first
// redraw pass.
func (c *Cache) Document() *image.RGBA {
	return c.document
}

// Pending returns a copy of the accumulated, not yet redrawn image-preview
// area of a member.
func (c *Cache) Pending(id doc.MemberID, target Target) tiles.Area {
	if target == TargetMask {
		return c.masks[id].Clone()
	}
	return c.images[id].Clone()
}

// Update merges the areas of a batch into the accumulators and, when redraw
// is set, brings every affected thumbnail up to date.
//
// ctx is only checked before any state changes.
func (c *Cache) Update(ctx context.Context, tree doc.Tree, comp compose.Compositor, areas gather.Areas, redraw bool) (Events, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.docArea.Merge(areas.Main)
	accumulate(c.images, areas.Images)
	accumulate(c.masks, areas.Masks)
	if !redraw {
		return nil, nil
	}

	p := &pass{cache: c, tree: tree, comp: comp}
	p.document()
	for _, id := range sortedIDs(c.images) {
		p.member(key{id, TargetMain}, c.images[id])
	}
	for _, id := range sortedIDs(c.masks) {
		p.member(key{id, TargetMask}, c.masks[id])
	}
	p.flush()
	p.prune()

	c.docArea = tiles.Area{}
	clear(c.images)
	clear(c.masks)
	return p.events, nil
}

func accumulate(dst, src map[doc.MemberID]tiles.Area) {
	for id, a := range src {
		acc := dst[id]
		acc.Merge(a)
		dst[id] = acc
	}
}

func sortedIDs(m map[doc.MemberID]tiles.Area) []doc.MemberID {
	return slices.SortedFunc(maps.Keys(m), func(a, b doc.MemberID) int {
		return bytes.Compare(a[:], b[:])
	})
}
