package blend

// mulDiv255 returns a*b/255 rounded to nearest, without division.
//
// Formula: t = a*b + 128; (t + (t >> 8)) >> 8
func mulDiv255(a, b byte) byte {
	t := uint16(a)*uint16(b) + 128
	return byte((t + (t >> 8)) >> 8)
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// toByte converts a normalized value to a byte, rounding and clamping.
func toByte(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
