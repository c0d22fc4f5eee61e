// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package doc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/google/uuid"

	"github.com/gogpu/docrender/tiles"
)

// Errors returned by Document edits.
var (
	// ErrNotFound is returned when an identifier does not name a member.
	ErrNotFound = errors.New("doc: member not found")

	// ErrNotFolder is returned when a folder was required.
	ErrNotFolder = errors.New("doc: member is not a folder")

	// ErrNotLayer is returned when a layer was required.
	ErrNotLayer = errors.New("doc: member is not a layer")

	// ErrRoot is returned when an edit would remove or move the root folder.
	ErrRoot = errors.New("doc: cannot edit the root folder")

	// ErrCycle is returned when a folder would be moved into its own subtree.
	ErrCycle = errors.New("doc: move would create a cycle")

	// ErrNoMask is returned when a mask edit targets a member without a mask.
	ErrNoMask = errors.New("doc: member has no mask")
)

// Document is an in-memory layered document.
//
// Members live in a flat table keyed by MemberID; structure is expressed by
// Parent and Children identifier lists. Every edit returns the Change
// notification describing it, ready to be passed to the pipeline.
//
// Document is NOT safe for concurrent use.
type Document struct {
	size    image.Point
	root    MemberID
	members map[MemberID]*Member
}

// NewDocument creates an empty document with a root folder.
func NewDocument(size image.Point) *Document {
	root := &Member{
		ID:      NewMemberID(),
		Kind:    KindFolder,
		Name:    "root",
		Visible: true,
		Opacity: 1,
	}
	return &Document{
		size:    size,
		root:    root.ID,
		members: map[MemberID]*Member{root.ID: root},
	}
}

// Size implements Tree.
func (d *Document) Size() image.Point {
	return d.size
}

// Root implements Tree.
func (d *Document) Root() MemberID {
	return d.root
}

// Member implements Tree.
func (d *Document) Member(id MemberID) (*Member, bool) {
	m, ok := d.members[id]
	return m, ok
}

// Path implements Tree.
func (d *Document) Path(id MemberID) []MemberID {
	var path []MemberID
	for cur := id; ; {
		m, ok := d.members[cur]
		if !ok {
			return nil
		}
		path = append(path, cur)
		if cur == d.root {
			return path
		}
		cur = m.Parent
	}
}

// Walk implements Tree.
func (d *Document) Walk(fn func(*Member) bool) {
	d.walk(d.members[d.root], fn)
}

func (d *Document) walk(folder *Member, fn func(*Member) bool) bool {
	for _, id := range folder.Children {
		m := d.members[id]
		if !fn(m) {
			return false
		}
		if m.IsFolder() && !d.walk(m, fn) {
			return false
		}
	}
	return true
}

// Len returns the number of members, including the root.
func (d *Document) Len() int {
	return len(d.members)
}

// AddLayer appends an empty visible layer on top of parent.
func (d *Document) AddLayer(parent MemberID, name string) (MemberID, Change, error) {
	return d.add(parent, name, KindLayer)
}

// AddFolder appends an empty visible folder on top of parent.
func (d *Document) AddFolder(parent MemberID, name string) (MemberID, Change, error) {
	return d.add(parent, name, KindFolder)
}

func (d *Document) add(parent MemberID, name string, kind Kind) (MemberID, Change, error) {
	p, err := d.folder(parent)
	if err != nil {
		return uuid.Nil, nil, err
	}
	m := &Member{
		ID:      NewMemberID(),
		Kind:    kind,
		Name:    name,
		Parent:  parent,
		Visible: true,
		Opacity: 1,
	}
	if kind == KindLayer {
		m.Content = NewRaster()
	}
	d.members[m.ID] = m
	p.Children = append(p.Children, m.ID)
	return m.ID, MemberCreated{Member: m.ID}, nil
}

// Delete removes a member and its whole subtree.
func (d *Document) Delete(id MemberID) (Change, error) {
	if id == d.root {
		return nil, ErrRoot
	}
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	parent := d.members[m.Parent]
	parent.Children = slices.DeleteFunc(parent.Children, func(c MemberID) bool { return c == id })
	d.drop(m)
	return MemberDeleted{Member: id, Parent: m.Parent}, nil
}

func (d *Document) drop(m *Member) {
	for _, c := range m.Children {
		d.drop(d.members[c])
	}
	delete(d.members, m.ID)
}

// Move re-parents a member into folder to at position index (0 = bottom).
// An index outside the children range appends on top.
func (d *Document) Move(id, to MemberID, index int) (Change, error) {
	if id == d.root {
		return nil, ErrRoot
	}
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	dst, err := d.folder(to)
	if err != nil {
		return nil, err
	}
	if slices.Contains(d.Path(to), id) {
		return nil, fmt.Errorf("%w: %s into %s", ErrCycle, id, to)
	}

	from := d.members[m.Parent]
	from.Children = slices.DeleteFunc(from.Children, func(c MemberID) bool { return c == id })
	if index < 0 || index > len(dst.Children) {
		index = len(dst.Children)
	}
	dst.Children = slices.Insert(dst.Children, index, id)
	m.Parent = to
	return MemberMoved{Member: id, From: from.ID, To: to}, nil
}

// SetOpacity changes the opacity of a member, clamped to [0, 1].
func (d *Document) SetOpacity(id MemberID, opacity float64) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	m.Opacity = min(max(opacity, 0), 1)
	return PropertyChanged{Member: id, Property: PropertyOpacity}, nil
}

// SetVisible shows or hides a member.
func (d *Document) SetVisible(id MemberID, visible bool) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	m.Visible = visible
	return PropertyChanged{Member: id, Property: PropertyVisibility}, nil
}

// SetBlendMode changes the blend mode of a member.
func (d *Document) SetBlendMode(id MemberID, mode BlendMode) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	m.BlendMode = mode
	return PropertyChanged{Member: id, Property: PropertyBlendMode}, nil
}

// SetClipToBelow toggles clipping to the member below.
func (d *Document) SetClipToBelow(id MemberID, clip bool) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	m.ClipToBelow = clip
	return PropertyChanged{Member: id, Property: PropertyClipToBelow}, nil
}

// AttachMask gives a member a visible mask that reveals the whole canvas.
func (d *Document) AttachMask(id MemberID) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	mask := NewRaster()
	mask.Fill(tiles.CanvasRect(d.size), color.White)
	m.Mask = mask
	m.MaskVisible = true
	return MaskAttached{Member: id}, nil
}

// DetachMask removes the mask of a member.
func (d *Document) DetachMask(id MemberID) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if m.Mask == nil {
		return nil, ErrNoMask
	}
	m.Mask = nil
	m.MaskVisible = false
	return MaskAttached{Member: id}, nil
}

// SetMaskVisible enables or disables the mask of a member.
func (d *Document) SetMaskVisible(id MemberID, visible bool) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if m.Mask == nil {
		return nil, ErrNoMask
	}
	m.MaskVisible = visible
	return MaskVisibilityChanged{Member: id}, nil
}

// Resize changes the canvas size. Content outside the new canvas is kept.
func (d *Document) Resize(size image.Point) Change {
	d.size = size
	return CanvasResized{Size: size}
}

// Fill paints rect of a layer with c. A transparent color erases.
func (d *Document) Fill(id MemberID, rect image.Rectangle, c color.Color) (Change, error) {
	r, err := d.raster(id)
	if err != nil {
		return nil, err
	}
	return LayerAreaChanged{Member: id, Area: r.Fill(rect, c)}, nil
}

// FillMask paints rect of a member's mask with c.
func (d *Document) FillMask(id MemberID, rect image.Rectangle, c color.Color) (Change, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	mask, ok := m.Mask.(*Raster)
	if !ok {
		return nil, ErrNoMask
	}
	return MaskAreaChanged{Member: id, Area: mask.Fill(rect, c)}, nil
}

// Raster returns the raster content of a layer.
func (d *Document) Raster(id MemberID) (*Raster, error) {
	return d.raster(id)
}

func (d *Document) raster(id MemberID) (*Raster, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	r, ok := m.Content.(*Raster)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLayer, id)
	}
	return r, nil
}

func (d *Document) lookup(id MemberID) (*Member, error) {
	m, ok := d.members[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

func (d *Document) folder(id MemberID) (*Member, error) {
	m, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if !m.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, id)
	}
	return m, nil
}

var _ Tree = (*Document)(nil)
