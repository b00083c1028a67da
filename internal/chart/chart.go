// Package chart draws stored curves as a multi-series line chart with a
// horizontal reference line at the principal.
package chart

import (
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/store"
)

// ReferenceColor is used for the principal reference line.
const ReferenceColor = "#9e9e9e"

// Series is one line on the chart.
type Series struct {
	Name   string
	Color  string
	Points []curve.Point
}

// Options control chart geometry and the reference line.
type Options struct {
	Title     string
	Width     int
	Height    int
	Principal float64
	// Years is the horizon used for the reference line when there are no series.
	Years int
}

// FromCurves converts stored curves into chart series, keeping legend order.
func FromCurves(curves []store.Curve) []Series {
	series := make([]Series, 0, len(curves))
	for _, c := range curves {
		series = append(series, Series{Name: c.Label, Color: c.Color, Points: c.Points})
	}
	return series
}

// horizon returns the last year shown on the x axis.
func horizon(series []Series, fallback int) int {
	last := 0
	for _, s := range series {
		if n := len(s.Points); n > 0 && s.Points[n-1].Year > last {
			last = s.Points[n-1].Year
		}
	}
	if last == 0 {
		last = fallback
	}
	if last < 1 {
		last = 1
	}
	return last
}

// valueRange returns a non-degenerate y range covering every point and the
// reference line.
func valueRange(series []Series, principal float64) (min, max float64) {
	min, max = principal, principal
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		lo, hi := curve.Bounds(s.Points)
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
	}
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = max * 0.05
		if pad == 0 {
			pad = 1
		}
	}
	return min - pad, max + pad
}
