package validation

import "math"

// ClampFloat limits v to [min, max]. NaN clamps to min.
func ClampFloat(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampInt limits v to [min, max].
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
