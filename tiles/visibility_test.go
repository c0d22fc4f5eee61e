package tiles

import (
	"image"
	"math"
	"testing"

	"golang.org/x/image/math/f64"
)

// =============================================================================
// Viewport Visibility
// =============================================================================

func TestTouchingRotatedRect_AxisAligned(t *testing.T) {
	canvas := image.Pt(1024, 1024)

	tests := []struct {
		name   string
		center f64.Vec2
		size   f64.Vec2
		angle  float64
		want   []Coord
	}{
		{
			name:   "inside first tile",
			center: f64.Vec2{64, 64}, size: f64.Vec2{100, 100},
			want: []Coord{{0, 0}},
		},
		{
			name:   "exactly one tile",
			center: f64.Vec2{128, 128}, size: f64.Vec2{256, 256},
			want: []Coord{{0, 0}},
		},
		{
			name:   "straddling four tiles",
			center: f64.Vec2{256, 256}, size: f64.Vec2{10, 10},
			want: []Coord{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		},
		{
			name:   "rotated 90 degrees swaps axes",
			center: f64.Vec2{128, 128}, size: f64.Vec2{512, 100}, angle: math.Pi / 2,
			want: []Coord{{0, 0}, {0, 1}},
		},
		{
			name:   "clamped to canvas",
			center: f64.Vec2{0, 0}, size: f64.Vec2{100, 100},
			want: []Coord{{0, 0}},
		},
		{
			name:   "entirely outside",
			center: f64.Vec2{-500, -500}, size: f64.Vec2{100, 100},
			want: nil,
		},
		{
			name:   "degenerate size",
			center: f64.Vec2{100, 100}, size: f64.Vec2{0, 100},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TouchingRotatedRect(tt.center, tt.size, tt.angle, canvas)
			if !got.Equal(NewSet(tt.want...)) {
				t.Errorf("got %v, want %v", got.Sorted(), tt.want)
			}
		})
	}
}

func TestTouchingRotatedRect_Diagonal(t *testing.T) {
	// A long thin strip rotated 45 degrees through the center of a 3x3 grid
	// touches the diagonal tiles but not the opposite corners.
	canvas := image.Pt(3*FullSize, 3*FullSize)
	center := f64.Vec2{1.5 * FullSize, 1.5 * FullSize}
	got := TouchingRotatedRect(center, f64.Vec2{3 * FullSize, 4}, math.Pi/4, canvas)

	for _, c := range []Coord{{0, 0}, {1, 1}, {2, 2}} {
		if !got.Has(c) {
			t.Errorf("diagonal tile %v missing from %v", c, got.Sorted())
		}
	}
	for _, c := range []Coord{{2, 0}, {0, 2}} {
		if got.Has(c) {
			t.Errorf("off-diagonal tile %v should not be visible", c)
		}
	}
}
