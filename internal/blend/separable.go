package blend

import "math"

// separable lifts a per-channel mode function B(Cs, Cb), defined on
// unpremultiplied values in [0, 1], to a premultiplied pixel Func.
func separable(fn func(s, d float32) float32) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		as, ad := float32(sa)/255, float32(da)/255
		mix := func(s, d byte) byte {
			ps, pd := float32(s)/255, float32(d)/255
			b := fn(ps/as, pd/ad)
			return toByte((1-as)*pd + (1-ad)*ps + as*ad*b)
		}
		return mix(sr, dr), mix(sg, dg), mix(sb, db), addClamp(sa, mulDiv255(da, 255-sa))
	}
}

func multiply(s, d float32) float32 { return s * d }

func screen(s, d float32) float32 { return s + d - s*d }

func overlay(s, d float32) float32 { return hardLight(d, s) }

func darken(s, d float32) float32 { return min(s, d) }

func lighten(s, d float32) float32 { return max(s, d) }

func colorDodge(s, d float32) float32 {
	switch {
	case d == 0:
		return 0
	case s >= 1:
		return 1
	default:
		return min(1, d/(1-s))
	}
}

func colorBurn(s, d float32) float32 {
	switch {
	case d >= 1:
		return 1
	case s <= 0:
		return 0
	default:
		return 1 - min(1, (1-d)/s)
	}
}

func hardLight(s, d float32) float32 {
	if s <= 0.5 {
		return multiply(2*s, d)
	}
	return screen(2*s-1, d)
}

func softLight(s, d float32) float32 {
	if s <= 0.5 {
		return d - (1-2*s)*d*(1-d)
	}
	var dx float32
	if d <= 0.25 {
		dx = ((16*d-12)*d + 4) * d
	} else {
		dx = float32(math.Sqrt(float64(d)))
	}
	return d + (2*s-1)*(dx-d)
}

func difference(s, d float32) float32 {
	if s > d {
		return s - d
	}
	return d - s
}

func exclusion(s, d float32) float32 { return s + d - 2*s*d }
