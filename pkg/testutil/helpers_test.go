package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/store"
)

func TestFindCurve(t *testing.T) {
	curves := []store.Curve{
		{ID: "a", Label: "FV €100.00 @ 5.0% / 10y"},
		{ID: "b", Label: "FV €100.00 @ 8.0% / 10y"},
		{ID: "c", Label: "Duplicate"},
		{ID: "d", Label: "Duplicate"},
	}

	tests := []struct {
		name       string
		searchName string
		expectedID string
	}{
		{"Find first curve", "FV €100.00 @ 5.0% / 10y", "a"},
		{"Find second curve", "FV €100.00 @ 8.0% / 10y", "b"},
		{"Duplicate returns first match", "Duplicate", "c"},
		{"Non-existent label", "PV €100.00 @ 5.0% / 10y", ""},
		{"Empty label", "", ""},
		{"Partial label", "FV", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindCurve(curves, tt.searchName)
			if tt.expectedID == "" {
				if result != nil {
					t.Errorf("FindCurve() expected nil for %q but got %s", tt.searchName, result.ID)
				}
				return
			}
			if result == nil {
				t.Fatalf("FindCurve() expected to find %q but got nil", tt.searchName)
			}
			if result.ID != tt.expectedID {
				t.Errorf("FindCurve() returned id %s, expected %s", result.ID, tt.expectedID)
			}
		})
	}
}

func TestFindCurveReturnsPointer(t *testing.T) {
	curves := []store.Curve{{ID: "a", Label: "only"}}

	found := FindCurve(curves, "only")
	if found != &curves[0] {
		t.Errorf("FindCurve() should return pointer to original element")
	}
	if FindCurve(nil, "only") != nil {
		t.Errorf("FindCurve() with nil slice should return nil")
	}
}

func TestValues(t *testing.T) {
	got := Values(curve.Compute(curve.FutureValue, 100, 2, 0.1))
	if diff := cmp.Diff([]float64{100, 110, 121}, got); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	if got := Values(nil); len(got) != 0 {
		t.Errorf("Values(nil) = %v, expected empty", got)
	}
}
