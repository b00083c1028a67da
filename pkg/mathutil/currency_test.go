package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number away from zero", -1.235, -1.24},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Very small negative", -0.001, 0.00},
		{"Exactly one cent", 0.01, 0.01},
		{"Nearly two cents", 0.019, 0.02},
		{"Binary midpoint artifact", 1.005, 1.01},
		{"Compounded value", 162.8894626777442, 162.89},
		{"Discounted value", 61.39132535407592, 61.39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.004, 100.0, 0.01) {
		t.Error("expected values within a cent to match")
	}
	if WithinTolerance(100.02, 100.0, 0.01) {
		t.Error("expected values two cents apart not to match")
	}
}

func TestPercentConversions(t *testing.T) {
	if got := PercentToRate(5); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("PercentToRate(5) = %v, expected 0.05", got)
	}
	if got := RateToPercent(0.2); math.Abs(got-20) > 1e-12 {
		t.Errorf("RateToPercent(0.2) = %v, expected 20", got)
	}
}
