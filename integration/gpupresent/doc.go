// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpupresent uploads a composited docrender surface to a GPU
// texture for display in a gogpu window.
//
// The data flow is:
//
//	Pipeline.Run -> tier surface (CPU) -> GPU texture -> window
//
// # Usage
//
//	pr, err := gpupresent.New(app.GPUContextProvider(), pipe, tiles.Full)
//	defer pr.Close()
//
//	res, _ := pipe.Run(ctx, changes, opts)
//	pr.Invalidate(res.Rects)
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    pr.RenderTo(dc.AsTextureDrawer(), 0, 0)
//	})
//
// Only the rectangles reported for the presenter's tier are uploaded, when
// the texture supports region updates. Without reported rectangles no
// upload happens at all.
//
// # Thread Safety
//
// Presenter is NOT safe for concurrent use. Call it from the goroutine that
// runs the pipeline, between batches.
package gpupresent
