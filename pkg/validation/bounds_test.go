package validation

import (
	"math"
	"testing"
)

func TestClampFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"below", -5, 0},
		{"lower edge", 0, 0},
		{"inside", 0.07, 0.07},
		{"upper edge", 0.2, 0.2},
		{"above", 0.35, 0.2},
		{"not a number", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 0.2},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampFloat(tt.value, 0, 0.2); got != tt.expected {
				t.Errorf("ClampFloat(%v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(0, 1, 50); got != 1 {
		t.Errorf("ClampInt(0) = %d, expected 1", got)
	}
	if got := ClampInt(75, 1, 50); got != 50 {
		t.Errorf("ClampInt(75) = %d, expected 50", got)
	}
	if got := ClampInt(30, 1, 50); got != 30 {
		t.Errorf("ClampInt(30) = %d, expected 30", got)
	}
}
