// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tiles

import "golang.org/x/exp/constraints"

// floorDiv divides rounding toward negative infinity.
// Tile lookups for negative canvas coordinates rely on this.
func floorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ceilDiv divides rounding toward positive infinity.
func ceilDiv[T constraints.Signed](a, b T) T {
	return -floorDiv(-a, b)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
