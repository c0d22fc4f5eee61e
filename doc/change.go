// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package doc

import (
	"fmt"
	"image"

	"github.com/gogpu/docrender/tiles"
)

// Change is a notification describing one applied edit.
//
// The concrete types below form a closed set; consumers type-switch on them.
type Change interface {
	change()
}

// LayerAreaChanged reports that pixels of a layer changed inside Area.
type LayerAreaChanged struct {
	Member MemberID
	Area   tiles.Area
}

// MaskAreaChanged reports that pixels of a member's mask changed inside Area.
type MaskAreaChanged struct {
	Member MemberID
	Area   tiles.Area
}

// MemberCreated reports a new member, including a member re-inserted by undo.
type MemberCreated struct {
	Member MemberID
}

// MemberDeleted reports removal of a member and its subtree from Parent.
type MemberDeleted struct {
	Member MemberID
	Parent MemberID
}

// MemberMoved reports that a member changed position, possibly to another folder.
type MemberMoved struct {
	Member MemberID
	From   MemberID
	To     MemberID
}

// CanvasResized reports a new canvas size.
type CanvasResized struct {
	Size image.Point
}

// MaskAttached reports that a mask was added to or removed from a member.
type MaskAttached struct {
	Member MemberID
}

// MaskVisibilityChanged reports that a member's mask was enabled or disabled.
type MaskVisibilityChanged struct {
	Member MemberID
}

// Property identifies a compositing property of a member.
type Property uint8

const (
	// PropertyOpacity is the member opacity.
	PropertyOpacity Property = iota
	// PropertyBlendMode is the member blend mode.
	PropertyBlendMode
	// PropertyClipToBelow is the clip-to-member-below flag.
	PropertyClipToBelow
	// PropertyVisibility is the member visibility.
	PropertyVisibility
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropertyOpacity:
		return "opacity"
	case PropertyBlendMode:
		return "blend-mode"
	case PropertyClipToBelow:
		return "clip-to-below"
	case PropertyVisibility:
		return "visibility"
	default:
		return fmt.Sprintf("Property(%d)", uint8(p))
	}
}

// PropertyChanged reports that a compositing property of a member changed.
// Only how the member composites into its ancestors is affected; its own
// pixels are not.
type PropertyChanged struct {
	Member   MemberID
	Property Property
}

func (LayerAreaChanged) change()      {}
func (MaskAreaChanged) change()       {}
func (MemberCreated) change()         {}
func (MemberDeleted) change()         {}
func (MemberMoved) change()           {}
func (CanvasResized) change()         {}
func (MaskAttached) change()          {}
func (MaskVisibilityChanged) change() {}
func (PropertyChanged) change()       {}
