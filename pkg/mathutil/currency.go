// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero, using the shortest decimal representation of
// val so that inputs such as 1.005 round to 1.01.
func Round(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	rounded, _ := decimal.NewFromFloat(val).Round(constants.DecimalPlaces).Float64()
	return rounded
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PercentToRate converts a percentage such as 5.0 into a rate such as 0.05.
func PercentToRate(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// RateToPercent converts a rate such as 0.05 into a percentage such as 5.0.
func RateToPercent(rate float64) float64 {
	return rate * constants.PercentageMultiplier
}
