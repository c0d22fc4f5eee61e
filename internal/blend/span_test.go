package blend

import "testing"

func TestComposite_Opacity(t *testing.T) {
	dst := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	src := []byte{255, 255, 255, 255, 255, 0, 0, 255}

	Composite(dst, src, For(Normal), 128)

	want := []byte{128, 128, 128, 128, 128, 0, 0, 128}
	for i := range dst {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestComposite_ZeroOpacity(t *testing.T) {
	dst := []byte{1, 2, 3, 4}
	Composite(dst, []byte{255, 255, 255, 255}, For(Normal), 0)
	if dst[0] != 1 || dst[3] != 4 {
		t.Errorf("dst = %v, want unchanged", dst)
	}
}

func TestApplyMask(t *testing.T) {
	tests := []struct {
		name string
		mask [4]byte
		want byte
	}{
		{"white reveals", [4]byte{255, 255, 255, 255}, 200},
		{"black hides", [4]byte{0, 0, 0, 255}, 0},
		{"transparent hides", [4]byte{0, 0, 0, 0}, 0},
		{"half gray", [4]byte{128, 128, 128, 255}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px := []byte{200, 200, 200, 200}
			ApplyMask(px, tt.mask[:])
			if diff(px[3], tt.want) > 1 {
				t.Errorf("alpha = %d, want %d", px[3], tt.want)
			}
		})
	}
}

func TestClipAlpha(t *testing.T) {
	px := []byte{255, 0, 0, 255, 255, 0, 0, 255}
	below := []byte{0, 0, 0, 255, 0, 0, 0, 0}

	ClipAlpha(px, below)

	if px[3] != 255 {
		t.Errorf("pixel over opaque below: alpha = %d, want 255", px[3])
	}
	if px[7] != 0 || px[4] != 0 {
		t.Errorf("pixel over empty below = %v, want cleared", px[4:])
	}
}
