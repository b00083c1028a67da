// Package heat colors table cells by the magnitude of their value.
package heat

import (
	"math"

	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/lucasb-eyer/go-colorful"
)

// Ramp is a pair of endpoint colors blended in Lab space.
type Ramp struct {
	From colorful.Color
	To   colorful.Color
}

var (
	growthRamp   = mustRamp("#f1f8e9", "#2e7d32")
	discountRamp = mustRamp("#fff3e0", "#c62828")
)

func mustRamp(from, to string) Ramp {
	f, err := colorful.Hex(from)
	if err != nil {
		panic(err)
	}
	t, err := colorful.Hex(to)
	if err != nil {
		panic(err)
	}
	return Ramp{From: f, To: t}
}

// RampFor returns the ramp used for mode.
func RampFor(mode curve.Mode) Ramp {
	if mode == curve.PresentValue {
		return discountRamp
	}
	return growthRamp
}

// Intensity maps value into [0,1]: the distance from the principal end of
// the range. In Future Value mode the principal is the minimum, in Present
// Value mode it is the maximum. A degenerate range yields 0.
func Intensity(value, min, max float64, mode curve.Mode) float64 {
	span := max - min
	if !(span > 0) || math.IsNaN(value) {
		return 0
	}
	t := (value - min) / span
	if mode == curve.PresentValue {
		t = (max - value) / span
	}
	return math.Max(0, math.Min(1, t))
}

// ColorFor returns the #rrggbb background for a cell holding value, given
// the range of the whole column.
func ColorFor(value, min, max float64, mode curve.Mode) string {
	r := RampFor(mode)
	switch t := Intensity(value, min, max, mode); t {
	case 0:
		return r.From.Hex()
	case 1:
		return r.To.Hex()
	default:
		return r.From.BlendLab(r.To, t).Clamped().Hex()
	}
}

// TextColorFor returns black or white, whichever reads better on background.
// Unparseable backgrounds get black.
func TextColorFor(background string) string {
	c, err := colorful.Hex(background)
	if err != nil {
		return "#000000"
	}
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.179 {
		return "#000000"
	}
	return "#ffffff"
}
