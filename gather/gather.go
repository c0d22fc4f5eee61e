// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gather turns the change notifications of one edit batch into the
// areas that must be recomposited.
//
// Three kinds of areas come out of a batch: the main area for the composited
// canvas, one image-preview area per member whose thumbnail is affected, and
// one mask-preview area per member whose mask thumbnail is affected. The root
// folder never receives an image-preview area; the whole-document thumbnail
// follows the main area instead.
package gather

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/internal/logx"
	"github.com/gogpu/docrender/tiles"
)

// ErrMissingTiles is returned when a region notification carries no tile
// set. It signals a broken change producer, not a recoverable state.
var ErrMissingTiles = errors.New("gather: region change without tiles")

// Areas is the output of one batch.
type Areas struct {
	Main   tiles.Area
	Images map[doc.MemberID]tiles.Area
	Masks  map[doc.MemberID]tiles.Area
}

// IsEmpty reports whether nothing at all was affected.
func (a Areas) IsEmpty() bool {
	return a.Main.IsEmpty() && len(a.Images) == 0 && len(a.Masks) == 0
}

// Option configures Gather.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Gather computes the affected areas of a batch of changes against tree,
// which must reflect the document after every change was applied.
//
// Notifications that name members no longer present in the tree are skipped.
// When any region notification lacks a tile set, Gather returns an error
// wrapping ErrMissingTiles and no areas.
func Gather(tree doc.Tree, changes []doc.Change, opts ...Option) (Areas, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(changes); err != nil {
		return Areas{}, err
	}

	g := &gatherer{
		tree:   tree,
		log:    logx.Or(o.logger),
		canvas: tiles.CanvasRect(tree.Size()),
		out: Areas{
			Main:   tiles.NewArea(tiles.NewSet(), image.Rectangle{}),
			Images: make(map[doc.MemberID]tiles.Area),
			Masks:  make(map[doc.MemberID]tiles.Area),
		},
	}
	for _, ch := range changes {
		g.apply(ch)
	}
	return g.out, nil
}

func validate(changes []doc.Change) error {
	for i, ch := range changes {
		switch ch := ch.(type) {
		case doc.LayerAreaChanged:
			if ch.Area.Tiles == nil {
				return fmt.Errorf("%w: change %d, layer %s", ErrMissingTiles, i, ch.Member)
			}
		case doc.MaskAreaChanged:
			if ch.Area.Tiles == nil {
				return fmt.Errorf("%w: change %d, mask of %s", ErrMissingTiles, i, ch.Member)
			}
		}
	}
	return nil
}

type gatherer struct {
	tree   doc.Tree
	log    *slog.Logger
	canvas image.Rectangle
	out    Areas
}

func (g *gatherer) apply(ch doc.Change) {
	switch ch := ch.(type) {
	case doc.LayerAreaChanged:
		area := g.bounded(ch.Area)
		g.out.Main.Merge(area)
		g.addToPath(ch.Member, area, true)

	case doc.MaskAreaChanged:
		area := g.bounded(ch.Area)
		g.out.Main.Merge(area)
		g.addToPath(ch.Member, area, false)
		g.addMask(ch.Member, area)

	case doc.MemberCreated:
		g.addSubtree(ch.Member)

	case doc.MemberDeleted:
		whole := g.whole()
		g.out.Main.Merge(whole)
		g.addToPath(ch.Parent, whole, true)

	case doc.MemberMoved:
		g.addSubtree(ch.Member)
		if ch.From != ch.To {
			g.addToPath(ch.From, g.whole(), true)
		}

	case doc.CanvasResized:
		whole := g.whole()
		g.out.Main.Merge(whole)
		g.tree.Walk(func(m *doc.Member) bool {
			g.addImage(m.ID, whole)
			if m.HasMask() {
				g.addMask(m.ID, whole)
			}
			return true
		})

	case doc.MaskAttached:
		whole := g.whole()
		g.out.Main.Merge(whole)
		g.addToPath(ch.Member, whole, false)
		g.addMask(ch.Member, whole)

	case doc.MaskVisibilityChanged:
		m, ok := g.member(ch.Member)
		if !ok {
			return
		}
		ext := g.extent(m, false)
		g.out.Main.Merge(ext)
		g.addToPath(ch.Member, ext, false)

	case doc.PropertyChanged:
		m, ok := g.member(ch.Member)
		if !ok {
			return
		}
		ext := g.extent(m, true)
		g.out.Main.Merge(ext)
		g.addToPath(ch.Member, ext, false)

	default:
		g.log.Debug("gather: ignoring unknown change", "type", fmt.Sprintf("%T", ch))
	}
}

// addSubtree invalidates the full extent of a member and of every
// descendant, each along its own path.
func (g *gatherer) addSubtree(id doc.MemberID) {
	m, ok := g.member(id)
	if !ok {
		return
	}
	ext := g.extent(m, true)
	g.out.Main.Merge(ext)
	g.addToPath(m.ID, ext, true)
	if m.HasMask() {
		g.addMask(m.ID, g.areaOf(m.Mask.PopulatedTiles()))
	}
	for _, c := range m.Children {
		g.addSubtree(c)
	}
}

// addToPath merges area into the image previews of the member's ancestors,
// and of the member itself when self is set. The root is skipped.
func (g *gatherer) addToPath(id doc.MemberID, area tiles.Area, self bool) {
	path := g.tree.Path(id)
	if path == nil {
		g.log.Debug("gather: skipping stale member", "member", id)
		return
	}
	if !self {
		path = path[1:]
	}
	for _, p := range path {
		g.addImage(p, area)
	}
}

func (g *gatherer) addImage(id doc.MemberID, area tiles.Area) {
	if id == g.tree.Root() {
		return
	}
	acc := g.out.Images[id]
	acc.Merge(area)
	g.out.Images[id] = acc
}

func (g *gatherer) addMask(id doc.MemberID, area tiles.Area) {
	if _, ok := g.tree.Member(id); !ok {
		return
	}
	acc := g.out.Masks[id]
	acc.Merge(area)
	g.out.Masks[id] = acc
}

func (g *gatherer) member(id doc.MemberID) (*doc.Member, bool) {
	m, ok := g.tree.Member(id)
	if !ok {
		g.log.Debug("gather: skipping stale member", "member", id)
	}
	return m, ok
}

// bounded fills in missing bounds with the tile extents, so that merging
// with a precise rectangle cannot shrink the area below its tiles.
func (g *gatherer) bounded(a tiles.Area) tiles.Area {
	if a.HasBounds() {
		return a
	}
	return tiles.AreaOf(a.Tiles, g.canvas)
}

// extent returns the area covered by the current content of m. With
// useMask set, an active mask limits the extent to the mask's tiles.
func (g *gatherer) extent(m *doc.Member, useMask bool) tiles.Area {
	return g.areaOf(g.extentTiles(m, useMask))
}

func (g *gatherer) extentTiles(m *doc.Member, useMask bool) tiles.Set {
	s := tiles.NewSet()
	if m.IsFolder() {
		for _, id := range m.Children {
			if c, ok := g.tree.Member(id); ok {
				s.Union(g.extentTiles(c, true))
			}
		}
	} else if m.Content != nil {
		s.Union(m.Content.PopulatedTiles())
	}
	if useMask && m.MaskActive() {
		s.Intersect(m.Mask.PopulatedTiles())
	}
	return s
}

// areaOf clips s to the canvas grid and bounds it by the canvas.
func (g *gatherer) areaOf(s tiles.Set) tiles.Area {
	s = s.Clone()
	tiles.ClipToGrid(s, g.canvas.Size())
	return tiles.AreaOf(s, g.canvas)
}

func (g *gatherer) whole() tiles.Area {
	return tiles.WholeCanvas(g.canvas.Size())
}
