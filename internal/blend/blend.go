// Package blend implements premultiplied RGBA blend modes for layer
// compositing.
//
// All operations work on premultiplied 8-bit channels. Separable and
// non-separable modes follow W3C Compositing and Blending Level 1: the mode
// function B(Cs, Cb) is evaluated on unpremultiplied colors and combined as
//
//	Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Cs, Cb)
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import "fmt"

// Mode selects how a source layer combines with the backdrop.
// The order matches the layer blend modes of the document model.
type Mode uint8

const (
	Normal     Mode = iota // S + D*(1-Sa)
	Multiply               // Cs * Cb
	Screen                 // 1 - (1-Cs)*(1-Cb)
	Overlay                // HardLight with swapped layers
	Darken                 // min(Cs, Cb)
	Lighten                // max(Cs, Cb)
	ColorDodge             // Cb / (1 - Cs)
	ColorBurn              // 1 - (1 - Cb) / Cs
	HardLight              // Multiply or Screen depending on source
	SoftLight              // Soft version of HardLight
	Difference             // |Cs - Cb|
	Exclusion              // Cs + Cb - 2*Cs*Cb

	Hue        // hue of source, saturation and luminosity of backdrop
	Saturation // saturation of source, hue and luminosity of backdrop
	Color      // hue and saturation of source, luminosity of backdrop
	Luminosity // luminosity of source, hue and saturation of backdrop

	numModes
)

// Func blends one premultiplied source pixel onto one premultiplied
// destination pixel.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

var funcs = [numModes]Func{
	Normal:     sourceOver,
	Multiply:   separable(multiply),
	Screen:     separable(screen),
	Overlay:    separable(overlay),
	Darken:     separable(darken),
	Lighten:    separable(lighten),
	ColorDodge: separable(colorDodge),
	ColorBurn:  separable(colorBurn),
	HardLight:  separable(hardLight),
	SoftLight:  separable(softLight),
	Difference: separable(difference),
	Exclusion:  separable(exclusion),
	Hue:        nonSeparable(hue),
	Saturation: nonSeparable(saturation),
	Color:      nonSeparable(colorMode),
	Luminosity: nonSeparable(luminosity),
}

// For returns the blend function of mode. Unknown modes fall back to Normal.
func For(mode Mode) Func {
	if mode >= numModes {
		return sourceOver
	}
	return funcs[mode]
}

// String returns a readable name for the mode.
func (m Mode) String() string {
	names := [numModes]string{
		"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
		"ColorDodge", "ColorBurn", "HardLight", "SoftLight", "Difference",
		"Exclusion", "Hue", "Saturation", "Color", "Luminosity",
	}
	if m < numModes {
		return names[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// sourceOver is Porter-Duff source-over: S + D*(1-Sa).
func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}
	inv := 255 - sa
	return addClamp(sr, mulDiv255(dr, inv)),
		addClamp(sg, mulDiv255(dg, inv)),
		addClamp(sb, mulDiv255(db, inv)),
		addClamp(sa, mulDiv255(da, inv))
}
