// Package docrender keeps the composited image of a layered raster document
// in sync with edits, redrawing only what changed.
//
// # Overview
//
// A document is a tree of layers and folders (see package doc). Every edit
// produces a [doc.Change]. A [Pipeline] takes a batch of changes and runs
// three stages over it:
//
//   - gather turns the batch into dirty tile areas (main image, per-member
//     images and masks)
//   - reconcile recomposes the dirty tiles that some viewport can see, for
//     every resolution tier, and defers the rest
//   - preview keeps member, mask and document thumbnails current
//
// # Quick Start
//
//	d := doc.NewDocument(image.Pt(2048, 2048))
//	p := docrender.New(d, compose.NewSoftware())
//	defer p.Close()
//
//	p.SetViewport("main", reconcile.Viewport{
//		Center: f64.Vec2{1024, 1024},
//		Size:   f64.Vec2{2048, 2048},
//	})
//
//	id, created, _ := d.AddLayer(d.Root(), "ink")
//	stroke, _ := d.Fill(id, image.Rect(100, 100, 300, 140), color.Black)
//
//	res, err := p.Run(ctx, []doc.Change{created, stroke}, docrender.RunOptions{
//		RedrawPreviews: true,
//	})
//
// res.Rects lists the canvas rectangles that were rewritten per tier and
// res.Events names the thumbnails that changed.
//
// # Tiles and tiers
//
// The canvas is split into 256x256 tiles. Lower tiers (half, quarter, eighth)
// share the same tile grid with proportionally smaller tile buffers, so a
// tile coordinate means the same canvas region at every tier.
//
// # Concurrency
//
// A Pipeline is single-writer: Run and RunAsync must not overlap. Tile
// compositing inside one run fans out over an internal worker pool. Surfaces
// and thumbnails may be read between runs.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route diagnostics to
// a [log/slog] handler.
package docrender
