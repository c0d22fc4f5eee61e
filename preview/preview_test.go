// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/gather"
	"github.com/gogpu/docrender/tiles"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// harness runs changes through gather and the cache.
type harness struct {
	t     *testing.T
	d     *doc.Document
	cache *Cache
	comp  compose.Compositor
}

func newHarness(t *testing.T, size image.Point, opts ...Option) *harness {
	t.Helper()
	return &harness{t: t, d: doc.NewDocument(size), cache: New(opts...), comp: compose.NewSoftware()}
}

func (h *harness) run(redraw bool, changes ...doc.Change) Events {
	h.t.Helper()
	areas, err := gather.Gather(h.d, changes)
	if err != nil {
		h.t.Fatalf("Gather() error = %v", err)
	}
	ev, err := h.cache.Update(context.Background(), h.d, h.comp, areas, redraw)
	if err != nil {
		h.t.Fatalf("Update() error = %v", err)
	}
	return ev
}

func (h *harness) layer(parent doc.MemberID) (doc.MemberID, doc.Change) {
	h.t.Helper()
	id, ch, err := h.d.AddLayer(parent, "layer")
	if err != nil {
		h.t.Fatal(err)
	}
	return id, ch
}

func (h *harness) fill(id doc.MemberID, r image.Rectangle, c color.Color) doc.Change {
	h.t.Helper()
	ch, err := h.d.Fill(id, r, c)
	if err != nil {
		h.t.Fatal(err)
	}
	return ch
}

// countingContent counts TightBounds calls.
type countingContent struct {
	doc.Content
	calls atomic.Int32
}

func (c *countingContent) TightBounds(res tiles.Resolution) image.Rectangle {
	c.calls.Add(1)
	return c.Content.TightBounds(res)
}

// =============================================================================
// Sizing Tests
// =============================================================================

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		content image.Point
		size    int
		want    image.Point
	}{
		{image.Pt(100, 50), 48, image.Pt(48, 24)},
		{image.Pt(50, 100), 48, image.Pt(24, 48)},
		{image.Pt(48, 48), 48, image.Pt(48, 48)},
		{image.Pt(1000, 1), 48, image.Pt(48, 1)},
		{image.Pt(300, 200), 64, image.Pt(64, 43)},
		{image.Pt(0, 5), 48, image.Point{}},
		{image.Pt(5, 5), 0, image.Point{}},
	}

	for _, tt := range tests {
		if got := ThumbnailSize(tt.content, tt.size); got != tt.want {
			t.Errorf("ThumbnailSize(%v, %d) = %v, want %v", tt.content, tt.size, got, tt.want)
		}
	}
}

func TestTierSelection(t *testing.T) {
	scales := []struct {
		scale float64
		want  tiles.Resolution
	}{
		{1, tiles.Full},
		{0.51, tiles.Full},
		{0.5, tiles.Half},
		{0.26, tiles.Half},
		{0.25, tiles.Quarter},
		{0.13, tiles.Quarter},
		{0.125, tiles.Eighth},
		{0.01, tiles.Eighth},
	}
	for _, tt := range scales {
		if got := tierForScale(tt.scale); got != tt.want {
			t.Errorf("tierForScale(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}

	counts := []struct {
		n    int
		want tiles.Resolution
	}{
		{1, tiles.Full},
		{8, tiles.Full},
		{9, tiles.Half},
		{16, tiles.Half},
		{17, tiles.Quarter},
		{64, tiles.Quarter},
		{65, tiles.Eighth},
	}
	for _, tt := range counts {
		if got := tierForTiles(tt.n); got != tt.want {
			t.Errorf("tierForTiles(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestSmoothingFilterSelection(t *testing.T) {
	tests := []struct {
		name   string
		frame  image.Rectangle
		smooth bool
	}{
		{"downscaled canvas", image.Rect(0, 0, 4096, 4096), true},
		{"small content upscaled", image.Rect(0, 0, 10, 10), false},
		{"near one to one", image.Rect(0, 0, 40, 40), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pass{cache: New()}
			dst := image.NewRGBA(image.Rect(0, 0, 48, 48))
			p.schedule(dst, tt.frame, tiles.NewSet(tiles.Coord{}), image.Rectangle{}, nil)
			if len(p.jobs) != 1 {
				t.Fatalf("scheduled %d jobs, want 1", len(p.jobs))
			}
			if p.jobs[0].smooth != tt.smooth {
				t.Errorf("smooth = %v, want %v", p.jobs[0].smooth, tt.smooth)
			}
		})
	}
}

// =============================================================================
// Member Thumbnail Tests
// =============================================================================

func TestCache_FirstRedraw(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	stroke := h.fill(id, image.Rect(0, 0, 100, 50), red)

	ev := h.run(true, created, stroke)

	if !ev.Has(Resized, id, TargetMain) {
		t.Errorf("events = %v, want Resized for the layer", ev)
	}
	if !ev.Has(DocumentChanged, doc.MemberID{}, TargetMain) {
		t.Errorf("events = %v, want DocumentChanged", ev)
	}
	if b, ok := h.cache.Bounds(id, TargetMain); !ok || b != image.Rect(0, 0, 100, 50) {
		t.Errorf("Bounds() = %v, %v, want (0,0)-(100,50)", b, ok)
	}
	thumb, ok := h.cache.Thumbnail(id, TargetMain)
	if !ok {
		t.Fatal("no thumbnail")
	}
	if got := thumb.Bounds().Size(); got != image.Pt(48, 24) {
		t.Errorf("thumbnail size = %v, want 48x24", got)
	}
	if got := thumb.RGBAAt(24, 12); got != red {
		t.Errorf("thumbnail pixel = %v, want red", got)
	}
}

func TestCache_ContainmentShortcut(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	h.run(true, created, h.fill(id, image.Rect(10, 10, 200, 200), red))

	cached, _ := h.cache.Bounds(id, TargetMain)
	raster, err := h.d.Raster(id)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := h.d.Member(id)
	counting := &countingContent{Content: raster}
	m.Content = counting

	strokes := []image.Rectangle{
		image.Rect(20, 20, 40, 40),
		image.Rect(10, 10, 200, 200),
		image.Rect(150, 30, 199, 199),
	}
	for _, r := range strokes {
		ev := h.run(true, doc.LayerAreaChanged{Member: id, Area: raster.Fill(r, blue)})

		if n := counting.calls.Load(); n != 0 {
			t.Fatalf("stroke %v inside cached bounds recomputed tight bounds %d times", r, n)
		}
		if got, _ := h.cache.Bounds(id, TargetMain); got != cached {
			t.Errorf("Bounds() = %v, want cached %v", got, cached)
		}
		if recomputed := raster.TightBounds(tiles.Full); recomputed != cached {
			t.Errorf("recomputed bounds %v differ from cached %v", recomputed, cached)
		}
		if ev.Has(Resized, id, TargetMain) {
			t.Error("stroke inside bounds resized the thumbnail")
		}
		if !ev.Has(MemberChanged, id, TargetMain) {
			t.Errorf("events = %v, want MemberChanged", ev)
		}
	}
}

func TestCache_GrowthRecomputesBounds(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	h.run(true, created, h.fill(id, image.Rect(0, 0, 100, 100), red))

	ev := h.run(true, h.fill(id, image.Rect(100, 0, 300, 100), red))

	if b, _ := h.cache.Bounds(id, TargetMain); b != image.Rect(0, 0, 300, 100) {
		t.Errorf("Bounds() = %v, want (0,0)-(300,100)", b)
	}
	if !ev.Has(Resized, id, TargetMain) {
		t.Errorf("events = %v, want Resized", ev)
	}
	thumb, _ := h.cache.Thumbnail(id, TargetMain)
	if got := thumb.Bounds().Size(); got != image.Pt(48, 16) {
		t.Errorf("thumbnail size = %v, want 48x16", got)
	}
}

func TestCache_EraseEverythingRemoves(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	h.run(true, created, h.fill(id, image.Rect(0, 0, 100, 100), red))

	// The erased rectangle reaches past the cached bounds, so they are
	// measured again and found empty.
	ev := h.run(true, h.fill(id, image.Rect(0, 0, 120, 120), color.Transparent))

	if !ev.Has(Removed, id, TargetMain) {
		t.Errorf("events = %v, want Removed", ev)
	}
	if _, ok := h.cache.Thumbnail(id, TargetMain); ok {
		t.Error("thumbnail of empty layer still present")
	}
}

func TestCache_FolderBoundsUnionVisibleChildren(t *testing.T) {
	h := newHarness(t, image.Pt(1024, 1024))
	folder, fc, err := h.d.AddFolder(h.d.Root(), "group")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := h.layer(folder)
	b, _ := h.layer(folder)
	h.fill(a, image.Rect(0, 0, 10, 10), red)
	h.fill(b, image.Rect(500, 500, 600, 600), blue)

	h.run(true, fc)
	if got, _ := h.cache.Bounds(folder, TargetMain); got != image.Rect(0, 0, 600, 600) {
		t.Errorf("folder bounds = %v, want (0,0)-(600,600)", got)
	}
	thumb, _ := h.cache.Thumbnail(folder, TargetMain)
	if got := thumb.RGBAAt(0, 0); got.R == 0 {
		t.Errorf("folder thumbnail corner = %v, want red content", got)
	}

	hide, err := h.d.SetVisible(b, false)
	if err != nil {
		t.Fatal(err)
	}
	h.run(true, hide)
	if got, _ := h.cache.Bounds(folder, TargetMain); got != image.Rect(0, 0, 10, 10) {
		t.Errorf("folder bounds after hiding = %v, want (0,0)-(10,10)", got)
	}
}

func TestCache_DeleteFolderChild(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	folder, fc, err := h.d.AddFolder(h.d.Root(), "group")
	if err != nil {
		t.Fatal(err)
	}
	keep, _ := h.layer(folder)
	gone, _ := h.layer(folder)
	h.fill(keep, image.Rect(0, 0, 50, 50), red)
	h.fill(gone, image.Rect(300, 300, 400, 400), blue)
	h.run(true, fc)

	if _, ok := h.cache.Bounds(gone, TargetMain); !ok {
		t.Fatal("child bounds not cached before deletion")
	}

	del, err := h.d.Delete(gone)
	if err != nil {
		t.Fatal(err)
	}
	ev := h.run(true, del)

	if _, ok := h.cache.Bounds(gone, TargetMain); ok {
		t.Error("deleted child's bounds were not pruned")
	}
	if _, ok := h.cache.Thumbnail(gone, TargetMain); ok {
		t.Error("deleted child's thumbnail was not pruned")
	}
	if !ev.Has(Removed, gone, TargetMain) {
		t.Errorf("events = %v, want Removed for the deleted child", ev)
	}
	if got, _ := h.cache.Bounds(folder, TargetMain); got != image.Rect(0, 0, 50, 50) {
		t.Errorf("folder bounds = %v, want (0,0)-(50,50)", got)
	}
}

func TestCache_MaskThumbnail(t *testing.T) {
	h := newHarness(t, image.Pt(512, 256))
	id, created := h.layer(h.d.Root())
	attach, err := h.d.AttachMask(id)
	if err != nil {
		t.Fatal(err)
	}

	ev := h.run(true, created, attach)
	if !ev.Has(Resized, id, TargetMask) {
		t.Errorf("events = %v, want Resized for the mask", ev)
	}
	mask, ok := h.cache.Thumbnail(id, TargetMask)
	if !ok {
		t.Fatal("no mask thumbnail")
	}
	if got := mask.Bounds().Size(); got != image.Pt(48, 24) {
		t.Errorf("mask thumbnail size = %v, want 48x24", got)
	}
	if got := mask.RGBAAt(10, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("mask pixel = %v, want white", got)
	}

	detach, err := h.d.DetachMask(id)
	if err != nil {
		t.Fatal(err)
	}
	ev = h.run(true, detach)
	if !ev.Has(Removed, id, TargetMask) {
		t.Errorf("events = %v, want Removed for the mask", ev)
	}
}

func TestCache_NearestFilterKeepsEdges(t *testing.T) {
	h := newHarness(t, image.Pt(256, 256))
	id, created := h.layer(h.d.Root())
	h.fill(id, image.Rect(0, 0, 5, 10), red)
	h.fill(id, image.Rect(5, 0, 10, 10), blue)

	h.run(true, created)

	thumb, _ := h.cache.Thumbnail(id, TargetMain)
	for x := range thumb.Bounds().Dx() {
		got := thumb.RGBAAt(x, 20)
		if got != red && got != blue {
			t.Fatalf("pixel %d = %v, want pure red or blue", x, got)
		}
	}
}

// =============================================================================
// Document Thumbnail Tests
// =============================================================================

func TestCache_DocumentThumbnail(t *testing.T) {
	h := newHarness(t, image.Pt(1024, 512))
	id, created := h.layer(h.d.Root())

	h.run(true, created, h.fill(id, image.Rect(0, 0, 1024, 512), red))

	img := h.cache.Document()
	if img == nil {
		t.Fatal("no document thumbnail")
	}
	if got := img.Bounds().Size(); got != image.Pt(48, 24) {
		t.Errorf("document thumbnail size = %v, want 48x24", got)
	}
	if got := img.RGBAAt(24, 12); got != red {
		t.Errorf("document pixel = %v, want red", got)
	}

	ev := h.run(true, h.fill(id, image.Rect(0, 0, 1024, 512), color.Transparent))
	if !ev.Has(DocumentChanged, doc.MemberID{}, TargetMain) {
		t.Errorf("events = %v, want DocumentChanged", ev)
	}
	if got := img.RGBAAt(24, 12); got.A != 0 {
		t.Errorf("document pixel after erase = %v, want transparent", got)
	}
}

func TestCache_DocumentFollowsResize(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	h.run(true, doc.CanvasResized{Size: h.d.Size()})
	if got := h.cache.Document().Bounds().Size(); got != image.Pt(48, 48) {
		t.Fatalf("document thumbnail = %v, want 48x48", got)
	}

	h.run(true, h.d.Resize(image.Pt(512, 128)))
	if got := h.cache.Document().Bounds().Size(); got != image.Pt(48, 12) {
		t.Errorf("document thumbnail after resize = %v, want 48x12", got)
	}
}

// =============================================================================
// Accumulation Tests
// =============================================================================

func TestCache_LaggingPreviews(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	h.run(true, created, h.fill(id, image.Rect(0, 0, 10, 10), red))

	first := h.fill(id, image.Rect(300, 0, 310, 10), red)
	if ev := h.run(false, first); len(ev) != 0 {
		t.Errorf("events without redraw = %v, want none", ev)
	}
	second := h.fill(id, image.Rect(0, 300, 10, 310), red)
	h.run(false, second)

	pending := h.cache.Pending(id, TargetMain)
	if !pending.Tiles.Has(tiles.Coord{X: 1, Y: 0}) || !pending.Tiles.Has(tiles.Coord{X: 0, Y: 1}) {
		t.Errorf("accumulator = %v, want both strokes", pending.Tiles.Sorted())
	}
	if b, _ := h.cache.Bounds(id, TargetMain); b != image.Rect(0, 0, 10, 10) {
		t.Errorf("bounds changed without redraw: %v", b)
	}

	ev := h.run(true)
	if !ev.Has(Resized, id, TargetMain) && !ev.Has(MemberChanged, id, TargetMain) {
		t.Errorf("events = %v, want the layer redrawn", ev)
	}
	if b, _ := h.cache.Bounds(id, TargetMain); b != image.Rect(0, 0, 310, 310) {
		t.Errorf("Bounds() = %v, want (0,0)-(310,310)", b)
	}
	if h.cache.Pending(id, TargetMain).Tiles.Len() != 0 {
		t.Error("accumulator not reset after redraw")
	}
}

func TestCache_EmptyBatch(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))
	id, created := h.layer(h.d.Root())
	h.run(true, created, h.fill(id, image.Rect(0, 0, 10, 10), red))

	if ev := h.run(true); len(ev) != 0 {
		t.Errorf("empty batch events = %v, want none", ev)
	}
}

func TestCache_EmptyFirstBatch(t *testing.T) {
	h := newHarness(t, image.Pt(512, 512))

	if ev := h.run(true); len(ev) != 0 {
		t.Errorf("empty first batch events = %v, want none", ev)
	}
	if h.cache.Document() != nil {
		t.Error("empty first batch created the document thumbnail")
	}

	ev := h.run(true, doc.CanvasResized{Size: h.d.Size()})
	if !ev.Has(DocumentChanged, doc.MemberID{}, TargetMain) {
		t.Errorf("events = %v, want DocumentChanged", ev)
	}
	if h.cache.Document() == nil {
		t.Error("no document thumbnail after the first non-empty batch")
	}
}

func TestCache_CanceledContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := doc.NewDocument(image.Pt(64, 64))
	areas := gather.Areas{Main: tiles.WholeCanvas(d.Size())}
	if _, err := c.Update(ctx, d, compose.NewSoftware(), areas, true); !errors.Is(err, context.Canceled) {
		t.Fatalf("Update() error = %v, want context.Canceled", err)
	}
	if c.Document() != nil {
		t.Error("canceled Update drew the document thumbnail")
	}
}

func TestEventKindString(t *testing.T) {
	if got := Resized.String(); got != "resized" {
		t.Errorf("Resized.String() = %q", got)
	}
	if got := EventKind(42).String(); got != "EventKind(42)" {
		t.Errorf("EventKind(42).String() = %q", got)
	}
	if TargetMask.String() != "mask" || TargetMain.String() != "main" {
		t.Error("unexpected Target names")
	}
}
