// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"fmt"

	"github.com/gogpu/docrender/doc"
)

// Target selects which thumbnail of a member is meant.
type Target uint8

const (
	// TargetMain is the thumbnail of the member's content.
	TargetMain Target = iota
	// TargetMask is the thumbnail of the member's mask.
	TargetMask
)

// String returns "main" or "mask".
func (t Target) String() string {
	if t == TargetMask {
		return "mask"
	}
	return "main"
}

// EventKind classifies thumbnail notifications.
type EventKind uint8

const (
	// DocumentChanged reports a redraw of the whole-document thumbnail.
	DocumentChanged EventKind = iota
	// MemberChanged reports a redraw of a member's main thumbnail in place.
	MemberChanged
	// MaskChanged reports a redraw of a member's mask thumbnail in place.
	MaskChanged
	// Resized reports that a thumbnail buffer was recreated with a new size.
	Resized
	// Removed reports that a thumbnail no longer exists.
	Removed
)

var eventNames = [...]string{"document-changed", "member-changed", "mask-changed", "resized", "removed"}

// String returns the kebab-case name of the kind.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is a thumbnail notification for the host.
// Member is the zero UUID for DocumentChanged.
type Event struct {
	Kind   EventKind
	Member doc.MemberID
	Target Target
}

// Events is the ordered list of notifications of one Update.
type Events []Event

// Has reports whether an event of kind k for member and target is present.
func (e Events) Has(k EventKind, member doc.MemberID, target Target) bool {
	for _, ev := range e {
		if ev.Kind == k && ev.Member == member && ev.Target == target {
			return true
		}
	}
	return false
}
