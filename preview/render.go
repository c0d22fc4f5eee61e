// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/tiles"
)

// source is the content of one tile at one tier. A nil img means the tile is
// fully transparent.
type source struct {
	img     *image.RGBA
	release func()
}

func rendered(comp compose.Compositor, res tiles.Resolution, r compose.Result) source {
	f, ok := r.(compose.Filled)
	if !ok {
		return source{}
	}
	return source{img: f.Image, release: func() { compose.Release(comp, res, r) }}
}

func committed(content doc.Content, tc tiles.Coord, res tiles.Resolution) source {
	if content == nil {
		return source{}
	}
	img, ok := content.CommittedTile(tc, res)
	if !ok {
		return source{}
	}
	return source{img: img}
}

type fetchFunc func(tc tiles.Coord, res tiles.Resolution) source

// fetcher returns how tiles of a member thumbnail are obtained: folders are
// recomposited, layers and masks read their committed tiles directly.
func (p *pass) fetcher(m *doc.Member, target Target) fetchFunc {
	switch {
	case target == TargetMask:
		return func(tc tiles.Coord, res tiles.Resolution) source {
			return committed(m.Mask, tc, res)
		}
	case m.IsFolder():
		id := m.ID
		return func(tc tiles.Coord, res tiles.Resolution) source {
			return rendered(p.comp, res, p.comp.RenderSubtree(p.tree, id, tc, res))
		}
	default:
		return func(tc tiles.Coord, res tiles.Resolution) source {
			return committed(m.Content, tc, res)
		}
	}
}

// job draws one tile into one thumbnail.
type job struct {
	dst    *image.RGBA
	dr     image.Rectangle
	sr     image.Rectangle
	coord  tiles.Coord
	res    tiles.Resolution
	smooth bool
	fetch  fetchFunc
	src    source
}

// schedule queues the redraw of the dirty tiles of a thumbnail showing the
// canvas rectangle frame. A non-empty clip limits the redraw to that canvas
// rectangle.
func (p *pass) schedule(dst *image.RGBA, frame image.Rectangle, dirty tiles.Set, clip image.Rectangle, fetch fetchFunc) {
	size := dst.Bounds().Size()
	sx := float64(size.X) / float64(frame.Dx())
	sy := float64(size.Y) / float64(frame.Dy())
	scale := min(sx, sy)
	res := tierForScale(scale)
	smooth := scale/res.Multiplier() < smoothingThreshold

	for _, tc := range dirty.Sorted() {
		r := tc.Rect().Intersect(frame)
		if !clip.Empty() {
			r = r.Intersect(clip)
		}
		if r.Empty() {
			continue
		}
		dr := mapRect(r.Sub(frame.Min), sx, sy).Intersect(dst.Bounds())
		if dr.Empty() {
			continue
		}
		p.jobs = append(p.jobs, job{
			dst:    dst,
			dr:     dr,
			sr:     res.ScaleRect(r.Sub(tc.Rect().Min)),
			coord:  tc,
			res:    res,
			smooth: smooth,
			fetch:  fetch,
		})
	}
}

// flush fetches the content of every queued job through the executor and
// draws the results on the calling goroutine.
func (p *pass) flush() {
	if len(p.jobs) == 0 {
		return
	}
	work := make([]func(), len(p.jobs))
	for i := range p.jobs {
		j := &p.jobs[i]
		work[i] = func() {
			j.src = j.fetch(j.coord, j.res)
		}
	}
	p.cache.exec.ExecuteAll(work)

	for i := range p.jobs {
		j := &p.jobs[i]
		switch {
		case j.src.img == nil:
			draw.Draw(j.dst, j.dr, image.Transparent, image.Point{}, draw.Src)
		case j.smooth:
			draw.ApproxBiLinear.Scale(j.dst, j.dr, j.src.img, j.sr, draw.Src, nil)
		default:
			draw.NearestNeighbor.Scale(j.dst, j.dr, j.src.img, j.sr, draw.Src, nil)
		}
		if j.src.release != nil {
			j.src.release()
		}
	}
	p.jobs = nil
}

// mapRect scales a canvas rectangle into thumbnail pixels. Edges are rounded
// so that neighboring tiles meet exactly; a rectangle that would vanish is
// widened to one pixel.
func mapRect(r image.Rectangle, sx, sy float64) image.Rectangle {
	round := func(v int, s float64) int { return int(math.Round(float64(v) * s)) }
	out := image.Rect(round(r.Min.X, sx), round(r.Min.Y, sy), round(r.Max.X, sx), round(r.Max.Y, sy))
	if out.Dx() == 0 {
		out.Min.X = int(math.Floor(float64(r.Min.X) * sx))
		out.Max.X = int(math.Ceil(float64(r.Max.X) * sx))
	}
	if out.Dy() == 0 {
		out.Min.Y = int(math.Floor(float64(r.Min.Y) * sy))
		out.Max.Y = int(math.Ceil(float64(r.Max.Y) * sy))
	}
	return out
}
