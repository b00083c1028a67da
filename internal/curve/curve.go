// Package curve computes compound-interest curves: the growth of a principal
// (Future Value) or its discounting (Present Value) year by year under annual
// compounding.
package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/compound-curves/pkg/format"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
)

// Mode selects between growing and discounting a principal.
type Mode int

const (
	// FutureValue compounds the principal forward: P * (1+r)^n.
	FutureValue Mode = iota
	// PresentValue discounts the principal: P / (1+r)^n.
	PresentValue
)

// String returns the short token used on the wire and in config files.
func (m Mode) String() string {
	switch m {
	case FutureValue:
		return "fv"
	case PresentValue:
		return "pv"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Title returns the human-readable name of the mode.
func (m Mode) Title() string {
	if m == PresentValue {
		return "Present Value"
	}
	return "Future Value"
}

// ParseMode accepts "fv"/"pv" as well as the spelled-out names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fv", "future", "future value", "future_value", "futurevalue":
		return FutureValue, nil
	case "pv", "present", "present value", "present_value", "presentvalue":
		return PresentValue, nil
	}
	return FutureValue, fmt.Errorf("unknown calculation mode %q, expected fv or pv", s)
}

// Point is the value of the curve at the end of a given year.
type Point struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}

// Compute returns years+1 points for year 0..years, rounded to cents.
// Inputs are assumed to be within the widget bounds.
func Compute(mode Mode, principal float64, years int, rate float64) []Point {
	raw := Raw(mode, principal, years, rate)
	points := make([]Point, len(raw))
	for n, v := range raw {
		points[n] = Point{Year: n, Value: mathutil.Round(v)}
	}
	return points
}

// Raw returns the unrounded curve values indexed by year.
func Raw(mode Mode, principal float64, years int, rate float64) []float64 {
	if years < 0 {
		years = 0
	}
	values := make([]float64, years+1)
	for n := range values {
		factor := math.Pow(1+rate, float64(n))
		if mode == PresentValue {
			values[n] = principal / factor
		} else {
			values[n] = principal * factor
		}
	}
	return values
}

// Label is the default legend label for a curve computed from these inputs,
// e.g. "FV €100.00 @ 5.0% / 10y".
func Label(mode Mode, principal float64, years int, rate float64) string {
	return fmt.Sprintf("%s %s @ %s / %dy",
		strings.ToUpper(mode.String()), format.Currency(principal), format.Percent(rate), years)
}

// Final returns the value of the last point, or 0 for an empty curve.
func Final(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}

// Bounds returns the smallest and largest value in points.
func Bounds(points []Point) (min, max float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min, max = points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return min, max
}
