// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package doc

import (
	"fmt"
	"image"
	"strings"

	"github.com/google/uuid"

	"github.com/gogpu/docrender/tiles"
)

// MemberID is the stable identifier of a layer or folder.
type MemberID = uuid.UUID

// NewMemberID returns a fresh random identifier.
func NewMemberID() MemberID {
	return uuid.New()
}

// Kind distinguishes leaf layers from folders.
type Kind uint8

const (
	// KindLayer is a leaf with pixel content.
	KindLayer Kind = iota
	// KindFolder groups children and composites them as a unit.
	KindFolder
)

// String returns "layer" or "folder".
func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "layer"
}

// BlendMode selects how a member composites onto what is below it.
type BlendMode uint8

// Blend modes supported by the document model.
const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

var blendNames = [...]string{
	"normal", "multiply", "screen", "overlay", "darken", "lighten",
	"color-dodge", "color-burn", "hard-light", "soft-light", "difference",
	"exclusion", "hue", "saturation", "color", "luminosity",
}

// String returns the kebab-case name of the mode.
func (m BlendMode) String() string {
	if int(m) < len(blendNames) {
		return blendNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// ParseBlendMode converts a name produced by String back to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range blendNames {
		if name == s {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("doc: unknown blend mode %q", s)
}

// Member is one node of the document tree.
//
// Members returned by a Tree are read-only snapshots: callers must not modify
// them. Children are listed bottom-most first.
type Member struct {
	ID       MemberID
	Kind     Kind
	Name     string
	Parent   MemberID
	Children []MemberID

	Visible     bool
	Opacity     float64
	BlendMode   BlendMode
	ClipToBelow bool

	// Content is the pixel content of a layer. Nil for folders.
	Content Content

	// Mask restricts where the member is drawn. Nil when the member has none.
	Mask        Content
	MaskVisible bool
}

// IsFolder reports whether the member is a folder.
func (m *Member) IsFolder() bool {
	return m.Kind == KindFolder
}

// HasMask reports whether a mask is attached.
func (m *Member) HasMask() bool {
	return m.Mask != nil
}

// MaskActive reports whether the mask should constrain rendering.
func (m *Member) MaskActive() bool {
	return m.Mask != nil && m.MaskVisible
}

// Tree is a read-only view of the document structure.
type Tree interface {
	// Size returns the canvas size in pixels.
	Size() image.Point

	// Root returns the identifier of the root folder. The root has no
	// thumbnail of its own; the whole-document thumbnail stands in for it.
	Root() MemberID

	// Member returns the member with the given identifier.
	Member(id MemberID) (*Member, bool)

	// Path returns the chain from the member up to the root, member first and
	// root last. It returns nil when the member does not exist.
	Path(id MemberID) []MemberID

	// Walk calls fn for every member except the root in depth-first order.
	// Walking stops when fn returns false.
	Walk(fn func(*Member) bool)
}

// Content is the committed pixel content of a layer or a mask.
type Content interface {
	// TightBounds returns the smallest canvas-space rectangle containing every
	// non-transparent pixel, measured at tier res. Coarser tiers are cheaper
	// and may overestimate by up to one tier pixel per side. The empty
	// rectangle means there is no content.
	TightBounds(res tiles.Resolution) image.Rectangle

	// PopulatedTiles returns every tile holding committed content.
	PopulatedTiles() tiles.Set

	// CommittedTile returns the committed pixels of tile c rendered at tier
	// res, premultiplied, with bounds starting at the origin. It returns false
	// when the tile holds no content. The image must not be modified.
	CommittedTile(c tiles.Coord, res tiles.Resolution) (*image.RGBA, bool)
}
