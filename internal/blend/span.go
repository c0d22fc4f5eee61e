package blend

// Composite blends a row or tile of premultiplied RGBA pixels from src onto
// dst using fn. opacity scales the source before blending; 255 leaves it
// unchanged and 0 makes Composite a no-op.
//
// dst and src must have the same length, a multiple of 4.
func Composite(dst, src []byte, fn Func, opacity byte) {
	if opacity == 0 {
		return
	}
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		sr, sg, sb, sa := src[i], src[i+1], src[i+2], src[i+3]
		if opacity != 255 {
			sr, sg, sb, sa = mulDiv255(sr, opacity), mulDiv255(sg, opacity), mulDiv255(sb, opacity), mulDiv255(sa, opacity)
		}
		if sa == 0 && sr == 0 && sg == 0 && sb == 0 {
			continue
		}
		dst[i], dst[i+1], dst[i+2], dst[i+3] = fn(sr, sg, sb, sa, dst[i], dst[i+1], dst[i+2], dst[i+3])
	}
}

// ApplyMask scales every pixel of px by the coverage of the matching mask
// pixel. Coverage is the luminance of the premultiplied mask color, so
// transparent and black mask pixels hide while white reveals.
func ApplyMask(px, mask []byte) {
	n := min(len(px), len(mask)) &^ 3
	for i := 0; i < n; i += 4 {
		cov := maskCoverage(mask[i], mask[i+1], mask[i+2])
		if cov == 255 {
			continue
		}
		px[i] = mulDiv255(px[i], cov)
		px[i+1] = mulDiv255(px[i+1], cov)
		px[i+2] = mulDiv255(px[i+2], cov)
		px[i+3] = mulDiv255(px[i+3], cov)
	}
}

// ClipAlpha keeps px only where below is opaque (Porter-Duff source-in
// against the alpha of below).
func ClipAlpha(px, below []byte) {
	n := min(len(px), len(below)) &^ 3
	for i := 0; i < n; i += 4 {
		a := below[i+3]
		if a == 255 {
			continue
		}
		px[i] = mulDiv255(px[i], a)
		px[i+1] = mulDiv255(px[i+1], a)
		px[i+2] = mulDiv255(px[i+2], a)
		px[i+3] = mulDiv255(px[i+3], a)
	}
}

func maskCoverage(r, g, b byte) byte {
	// BT.601 weights in 8.8 fixed point: 77 + 150 + 29 = 256.
	return byte((uint32(r)*77 + uint32(g)*150 + uint32(b)*29 + 128) >> 8)
}
