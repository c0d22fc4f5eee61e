package blend

// rgb is an unpremultiplied color with channels in [0, 1].
type rgb [3]float32

// nonSeparable lifts a whole-color mode function to a premultiplied Func.
func nonSeparable(fn func(s, d rgb) rgb) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		as, ad := float32(sa)/255, float32(da)/255
		ps := rgb{float32(sr) / 255, float32(sg) / 255, float32(sb) / 255}
		pd := rgb{float32(dr) / 255, float32(dg) / 255, float32(db) / 255}
		b := fn(rgb{ps[0] / as, ps[1] / as, ps[2] / as}, rgb{pd[0] / ad, pd[1] / ad, pd[2] / ad})

		var out [3]byte
		for i := range out {
			out[i] = toByte((1-as)*pd[i] + (1-ad)*ps[i] + as*ad*b[i])
		}
		return out[0], out[1], out[2], addClamp(sa, mulDiv255(da, 255-sa))
	}
}

func hue(s, d rgb) rgb        { return setLum(setSat(s, sat(d)), lum(d)) }
func saturation(s, d rgb) rgb { return setLum(setSat(d, sat(s)), lum(d)) }
func colorMode(s, d rgb) rgb  { return setLum(s, lum(d)) }
func luminosity(s, d rgb) rgb { return setLum(d, lum(s)) }

// lum uses the BT.601 weights of the W3C definition.
func lum(c rgb) float32 {
	return 0.30*c[0] + 0.59*c[1] + 0.11*c[2]
}

func sat(c rgb) float32 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

func setLum(c rgb, l float32) rgb {
	d := l - lum(c)
	return clipColor(rgb{c[0] + d, c[1] + d, c[2] + d})
}

func clipColor(c rgb) rgb {
	l := lum(c)
	n := min(c[0], c[1], c[2])
	x := max(c[0], c[1], c[2])
	if n < 0 {
		for i := range c {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
	}
	if x > 1 {
		for i := range c {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

// setSat rescales c so that max-min equals s, keeping the channel order.
func setSat(c rgb, s float32) rgb {
	lo, mid, hi := 0, 1, 2
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	if c[mid] > c[hi] {
		mid, hi = hi, mid
	}
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}

	var out rgb
	if c[hi] > c[lo] {
		out[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
		out[hi] = s
	}
	return out
}
