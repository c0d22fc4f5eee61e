// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package docrender

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/gather"
	"github.com/gogpu/docrender/internal/parallel"
	"github.com/gogpu/docrender/preview"
	"github.com/gogpu/docrender/reconcile"
	"github.com/gogpu/docrender/tiles"
)

// RunOptions selects the optional work of one batch.
type RunOptions struct {
	// RedrawPreviews redraws thumbnails. When false, dirty preview areas
	// accumulate until a later batch sets it.
	RedrawPreviews bool

	// ServiceDeferred treats deferred viewports like the others and retakes
	// the deferred snapshot.
	ServiceDeferred bool
}

// Stats summarizes one batch.
type Stats struct {
	Changes  int           // notifications in the batch
	Dirty    int           // tiles in the gathered main area
	Redrawn  int           // tiles recomposed over all tiers
	Pending  int           // tiles left dirty over all tiers
	Events   int           // thumbnails changed
	Duration time.Duration // wall time of the batch
}

// Result is the outcome of one batch.
type Result struct {
	// Rects lists, per tier, the surface rectangles that were rewritten.
	Rects map[tiles.Resolution][]image.Rectangle

	// Events names the thumbnails that changed, in a deterministic order.
	Events preview.Events

	Stats Stats
}

// Pipeline runs batches of change notifications through the gather,
// reconcile and preview stages.
//
// Pipeline is single-writer: Run and RunAsync must not overlap, and the
// document must not be edited while a batch is running.
type Pipeline struct {
	tree     doc.Tree
	comp     compose.Compositor
	pool     *parallel.WorkerPool
	recon    *reconcile.Reconciler
	previews *preview.Cache
	log      *slog.Logger
	closed   atomic.Bool
}

// New creates a pipeline for tree. Surfaces are sized to the current canvas
// and start transparent; feed [Load] through Run to draw existing content.
func New(tree doc.Tree, comp compose.Compositor, opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	pool := parallel.NewWorkerPool(o.workers)
	p := &Pipeline{
		tree: tree,
		comp: comp,
		pool: pool,
		recon: reconcile.New(tree.Size(),
			reconcile.WithExecutor(pool),
			reconcile.WithLogger(log)),
		previews: preview.New(
			preview.WithExecutor(pool),
			preview.WithSize(o.previewSize),
			preview.WithLogger(log)),
		log: log,
	}
	log.Info("docrender: pipeline created",
		"size", tree.Size(),
		"workers", pool.Workers())
	return p
}

// Load returns the notifications that mark the whole canvas dirty, for the
// first batch over a document that already has content.
func Load(tree doc.Tree) []doc.Change {
	return []doc.Change{doc.CanvasResized{Size: tree.Size()}}
}

// Run processes one batch. Invalid batches are rejected before any state
// changes. ctx is checked once, before the batch starts; a started batch
// always runs to completion.
func (p *Pipeline) Run(ctx context.Context, changes []doc.Change, opts RunOptions) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	areas, err := gather.Gather(p.tree, changes, gather.WithLogger(p.log))
	if err != nil {
		return nil, fmt.Errorf("docrender: gather: %w", err)
	}

	if size := p.tree.Size(); resized(changes) && size != p.recon.Size() {
		p.log.Info("docrender: canvas resized", "from", p.recon.Size(), "to", size)
		p.recon.Resize(size)
	}

	run := context.WithoutCancel(ctx)
	rc, err := p.recon.Update(run, p.tree, p.comp, areas.Main, opts.ServiceDeferred)
	if err != nil {
		return nil, fmt.Errorf("docrender: reconcile: %w", err)
	}
	events, err := p.previews.Update(run, p.tree, p.comp, areas, opts.RedrawPreviews)
	if err != nil {
		return nil, fmt.Errorf("docrender: preview: %w", err)
	}

	rs := p.recon.Stats()
	res := &Result{
		Rects:  rc.Rects,
		Events: events,
		Stats: Stats{
			Changes:  len(changes),
			Dirty:    areas.Main.Tiles.Len(),
			Redrawn:  rs.Redrawn,
			Pending:  rs.Pending,
			Events:   len(events),
			Duration: time.Since(start),
		},
	}
	p.log.Debug("docrender: batch",
		"changes", res.Stats.Changes,
		"dirty", res.Stats.Dirty,
		"redrawn", res.Stats.Redrawn,
		"pending", res.Stats.Pending,
		"events", res.Stats.Events,
		"elapsed", res.Stats.Duration)
	return res, nil
}

// Pending is the hand-back of an asynchronous batch.
type Pending struct {
	f *parallel.Future[*Result]
}

// RunAsync starts Run on its own goroutine. The caller must not start
// another batch before the returned Pending completes.
func (p *Pipeline) RunAsync(ctx context.Context, changes []doc.Change, opts RunOptions) *Pending {
	return &Pending{f: parallel.Go(func() (*Result, error) {
		return p.Run(ctx, changes, opts)
	})}
}

// Done is closed when the batch has finished.
func (pd *Pending) Done() <-chan struct{} {
	return pd.f.Done()
}

// Wait blocks until the batch finishes or ctx is done. Giving up on ctx does
// not stop the batch.
func (pd *Pending) Wait(ctx context.Context) (*Result, error) {
	return pd.f.Wait(ctx)
}

// SetViewport registers or updates a viewport.
func (p *Pipeline) SetViewport(id reconcile.ViewportID, vp reconcile.Viewport) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.recon.SetViewport(id, vp)
}

// RemoveViewport unregisters a viewport.
func (p *Pipeline) RemoveViewport(id reconcile.ViewportID) {
	p.recon.RemoveViewport(id)
}

// Viewports returns a copy of the registered viewports.
func (p *Pipeline) Viewports() map[reconcile.ViewportID]reconcile.Viewport {
	return p.recon.Viewports()
}

// Surface returns the composited surface of tier res.
func (p *Pipeline) Surface(res tiles.Resolution) *image.RGBA {
	return p.recon.Surface(res)
}

// Thumbnail returns the thumbnail of a member's image or mask.
func (p *Pipeline) Thumbnail(id doc.MemberID, target preview.Target) (*image.RGBA, bool) {
	return p.previews.Thumbnail(id, target)
}

// DocumentThumbnail returns the whole-document thumbnail, or nil before the
// first preview redraw.
func (p *Pipeline) DocumentThumbnail() *image.RGBA {
	return p.previews.Document()
}

// Close stops the worker pool. Close is idempotent.
//
// Close may overlap a batch started with RunAsync: a batch that already
// passed its closed check runs to completion on the calling goroutine, and
// one that had not returns ErrClosed.
func (p *Pipeline) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.pool.Close()
	p.log.Info("docrender: pipeline closed")
	return nil
}

func resized(changes []doc.Change) bool {
	for _, ch := range changes {
		if _, ok := ch.(doc.CanvasResized); ok {
			return true
		}
	}
	return false
}
