// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package reconcile keeps the on-screen canvas surfaces in sync with the
// document while redrawing as little as possible.
//
// A Reconciler owns one surface per resolution tier and, per tier, the set of
// tiles known to be dirty but not yet redrawn. Each Update redraws only dirty
// tiles that some viewport can currently see; everything else is carried
// forward until a viewport reaches it.
//
// Deferred viewports get a weaker guarantee. Outside deferred passes they
// only see tiles that were already dirty when the last deferred pass ran, so
// fresh edits under a deferred viewport wait for the next deferred pass.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"maps"
	"slices"

	"golang.org/x/image/draw"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/internal/logx"
	"github.com/gogpu/docrender/tiles"
)

// ErrInvalidResolution is returned when a viewport names an unknown tier.
var ErrInvalidResolution = errors.New("reconcile: invalid resolution")

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

// Option configures a Reconciler.
type Option func(*options)

type options struct {
	exec   Executor
	logger *slog.Logger
}

// WithExecutor renders tiles through e. The default renders them one after
// another on the calling goroutine.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		o.exec = e
	}
}

// WithLogger sets the logger used for per-tier diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Changes lists the surface rectangles rewritten by one Update, per tier, in
// tier-surface pixels.
type Changes struct {
	Rects map[tiles.Resolution][]image.Rectangle
}

// IsEmpty reports whether no surface changed.
func (c Changes) IsEmpty() bool {
	for _, r := range c.Rects {
		if len(r) > 0 {
			return false
		}
	}
	return true
}

// Stats describes the last Update.
type Stats struct {
	// Redrawn counts tiles rendered, summed over tiers.
	Redrawn int
	// Pending counts tiles left dirty, summed over tiers.
	Pending int
}

// Reconciler tracks main-canvas dirty tiles across batches and redraws the
// visible ones into per-tier surfaces.
//
// Reconciler is NOT safe for concurrent use. Update must not overlap with
// any other method.
type Reconciler struct {
	size      image.Point
	surfaces  [tiles.NumResolutions]*image.RGBA
	pending   [tiles.NumResolutions]tiles.Set
	snapshot  [tiles.NumResolutions]tiles.Set
	viewports map[ViewportID]Viewport

	exec  Executor
	log   *slog.Logger
	stats Stats
}

// New creates a reconciler for a canvas of the given size.
func New(size image.Point, opts ...Option) *Reconciler {
	o := options{exec: serial{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.exec == nil {
		o.exec = serial{}
	}

	r := &Reconciler{
		viewports: make(map[ViewportID]Viewport),
		exec:      o.exec,
		log:       logx.Or(o.logger),
	}
	for _, res := range tiles.Resolutions() {
		r.pending[res] = tiles.NewSet()
		r.snapshot[res] = tiles.NewSet()
	}
	r.Resize(size)
	return r
}

// Size returns the canvas size.
func (r *Reconciler) Size() image.Point {
	return r.size
}

// Resize reallocates every surface for a new canvas size. Surfaces start
// transparent and nothing is marked dirty; the caller is expected to feed
// the whole-canvas area of the resize through Update.
func (r *Reconciler) Resize(size image.Point) {
	r.size = size
	for _, res := range tiles.Resolutions() {
		r.surfaces[res] = image.NewRGBA(image.Rectangle{Max: res.ScaleSize(size)})
		tiles.ClipToGrid(r.pending[res], size)
		tiles.ClipToGrid(r.snapshot[res], size)
	}
}

// Surface returns the output surface of tier res. The surface is replaced by
// Resize; callers must not keep it across a resize.
func (r *Reconciler) Surface(res tiles.Resolution) *image.RGBA {
	return r.surfaces[res]
}

// SetViewport registers or updates a viewport.
func (r *Reconciler) SetViewport(id ViewportID, vp Viewport) error {
	if !vp.Resolution.Valid() {
		return fmt.Errorf("%w: viewport %q: %v", ErrInvalidResolution, id, vp.Resolution)
	}
	r.viewports[id] = vp
	return nil
}

// RemoveViewport unregisters a viewport. Unknown identifiers are ignored.
func (r *Reconciler) RemoveViewport(id ViewportID) {
	delete(r.viewports, id)
}

// Viewports returns a copy of the registered viewports.
func (r *Reconciler) Viewports() map[ViewportID]Viewport {
	return maps.Clone(r.viewports)
}

// Pending returns a copy of the tiles of tier res that are dirty but not yet
// redrawn.
func (r *Reconciler) Pending(res tiles.Resolution) tiles.Set {
	return r.pending[res].Clone()
}

// Snapshot returns a copy of the tiles of tier res that were pending at the
// last deferred pass and have not been redrawn since.
func (r *Reconciler) Snapshot(res tiles.Resolution) tiles.Set {
	return r.snapshot[res].Clone()
}

// Stats returns statistics of the last Update.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

// Update merges the main area of a batch into the dirty state and redraws
// every dirty tile some viewport can see. With serviceDeferred set, deferred
// viewports are treated like the others and the deferred snapshot is retaken.
//
// ctx is only checked before any state changes.
func (r *Reconciler) Update(ctx context.Context, tree doc.Tree, comp compose.Compositor, main tiles.Area, serviceDeferred bool) (Changes, error) {
	if err := ctx.Err(); err != nil {
		return Changes{}, err
	}

	out := Changes{Rects: make(map[tiles.Resolution][]image.Rectangle)}
	r.stats = Stats{}

	for _, res := range tiles.Resolutions() {
		pending := r.pending[res]

		candidate := pending.Clone()
		candidate.Union(main.Tiles)
		if candidate.Len() == 0 {
			continue
		}

		redraw := candidate
		redraw.Intersect(r.visible(res, serviceDeferred))

		// A carried-over tile may have been affected by edits whose bounds
		// are no longer in main.Bounds.
		carriedOver := pending.Overlaps(redraw)

		pending.Union(main.Tiles)
		pending.Difference(redraw)
		r.snapshot[res].Difference(redraw)
		if serviceDeferred {
			r.snapshot[res] = pending.Clone()
		}

		r.stats.Redrawn += redraw.Len()
		r.stats.Pending += pending.Len()
		r.log.Debug("reconcile: tier",
			"res", res,
			"redraw", redraw.Len(),
			"pending", pending.Len(),
			"snapshot", r.snapshot[res].Len(),
			"carried_over", carriedOver)

		if redraw.Len() == 0 {
			continue
		}
		var clip image.Rectangle
		if !carriedOver && main.HasBounds() {
			clip = main.Bounds
		}
		if rects := r.compose(tree, comp, res, redraw, clip); len(rects) > 0 {
			out.Rects[res] = rects
		}
	}
	return out, nil
}

// visible returns the tiles of tier res that may be redrawn this pass.
func (r *Reconciler) visible(res tiles.Resolution, serviceDeferred bool) tiles.Set {
	vis := tiles.NewSet()
	for _, vp := range r.viewports {
		if vp.Resolution != res {
			continue
		}
		t := vp.Tiles(r.size)
		if vp.Deferred && !serviceDeferred {
			t.Intersect(r.snapshot[res])
		}
		vis.Union(t)
	}
	return vis
}

// compose renders redraw in parallel and applies the results to the tier
// surface on the calling goroutine.
func (r *Reconciler) compose(tree doc.Tree, comp compose.Compositor, res tiles.Resolution, redraw tiles.Set, clip image.Rectangle) []image.Rectangle {
	coords := redraw.Sorted()
	results := make([]compose.Result, len(coords))
	work := make([]func(), len(coords))
	for i, c := range coords {
		work[i] = func() {
			results[i] = comp.RenderTile(tree, c, res, clip)
		}
	}
	r.exec.ExecuteAll(work)

	surface := r.surfaces[res]
	var scaledClip image.Rectangle
	if !clip.Empty() {
		scaledClip = res.ScaleRect(clip)
	}

	rects := make([]image.Rectangle, 0, len(coords))
	for i, c := range coords {
		tile := c.RectAt(res)
		dst := tile.Intersect(surface.Bounds())
		if !scaledClip.Empty() {
			dst = dst.Intersect(scaledClip)
		}
		if dst.Empty() {
			compose.Release(comp, res, results[i])
			continue
		}

		switch f := results[i].(type) {
		case compose.Filled:
			draw.Draw(surface, dst, f.Image, dst.Min.Sub(tile.Min), draw.Src)
		default:
			draw.Draw(surface, dst, image.Transparent, image.Point{}, draw.Src)
		}
		compose.Release(comp, res, results[i])
		rects = append(rects, dst)
	}
	return slices.Clip(rects)
}
