// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/store"
)

// FindCurve finds a stored curve by label in the snapshot slice.
// Returns a pointer to the curve if found, nil otherwise.
func FindCurve(curves []store.Curve, label string) *store.Curve {
	for i := range curves {
		if curves[i].Label == label {
			return &curves[i]
		}
	}
	return nil
}

// Values returns the value of every point in year order.
func Values(points []curve.Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
