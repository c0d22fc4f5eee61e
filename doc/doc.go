// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package doc describes the layered document that docrender draws.
//
// The rendering pipeline never owns the document. It reads a Tree snapshot
// (member lookup, ancestor paths, enumeration) and consumes Change
// notifications produced by whatever engine applied an edit. Pixel content of
// a layer or mask is reached through the Content handle.
//
// Document and Raster are reference implementations of these interfaces: an
// arena-style member table keyed by MemberID, with parent and children kept
// as identifier lists, and a sparse tiled raster. They are used by the tests
// and by cmd/docreplay, and are suitable for hosts that do not already have a
// document model.
package doc
