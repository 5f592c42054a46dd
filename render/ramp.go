// Package render turns analysis fields into colored raster images.
//
// Values are mapped linearly onto a hue range (HSV with full saturation and
// value) by a Ramp. The sentinels -1 (solid) and -2 (observer) get fixed
// colors. PNG draws one filled square per cell with fogleman/gg.
package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MathMap maps v from [fromMin, fromMax] onto [toMin, toMax].
// A zero-width source range maps everything to toMin.
func MathMap(v, fromMin, fromMax, toMin, toMax float64) float64 {
	delta := fromMax - fromMin
	if delta == 0 {
		return toMin
	}

	return toMin + (toMax-toMin)/delta*(v-fromMin)
}

// Ramp maps values in [Min, Max] to hues in [MinHue, MaxHue].
// Hues are fractions of a full turn: 0 red, 1/3 green, 2/3 blue.
type Ramp struct {
	Min, Max       float64
	MinHue, MaxHue float64
}

// DefaultRamp spans [lo, hi] from blue (low) to red (high).
func DefaultRamp(lo, hi float64) Ramp {
	return Ramp{Min: lo, Max: hi, MinHue: 2.0 / 3, MaxHue: 0}
}

// Color returns the ramp color of v.
func (r Ramp) Color(v float64) color.NRGBA {
	return HueToRGB(MathMap(v, r.Min, r.Max, r.MinHue, r.MaxHue))
}

// HueToRGB converts a hue with saturation and value at 100% to an opaque color.
func HueToRGB(h float64) color.NRGBA {
	h -= math.Floor(h)
	r, g, b := colorful.Hsv(h*360, 1, 1).RGB255()

	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
