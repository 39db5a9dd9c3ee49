package analysis

import (
	"math"
	"testing"
)

func TestLinearFit_ExactLine(t *testing.T) {
	x := []float64{0.0005, 0.0010, 0.0015, 0.0020, 0.0025}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 500*v + 0.1
	}

	slope, intercept := linearFit(x, y)
	if math.Abs(slope-500) > 1e-9 {
		t.Errorf("slope: got %v, want 500", slope)
	}
	if math.Abs(intercept-0.1) > 1e-9 {
		t.Errorf("intercept: got %v, want 0.1", intercept)
	}
	if r2 := rSquared(x, y, slope, intercept); math.Abs(r2-1.0) > 1e-9 {
		t.Errorf("r2: got %v, want 1.0", r2)
	}
}

func TestRSquared_ZeroVarianceIsZero(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{20, 20, 20}

	slope, intercept := linearFit(x, y)
	if slope != 0 {
		t.Errorf("slope of constant series: got %v, want 0", slope)
	}
	r2 := rSquared(x, y, slope, intercept)
	if r2 != 0 {
		t.Errorf("r2 of zero-variance series: got %v, want 0", r2)
	}
	if math.IsNaN(r2) {
		t.Error("r2 must never be NaN")
	}
}

func TestLinearFit_DegenerateX(t *testing.T) {
	slope, intercept := linearFit([]float64{2, 2}, []float64{1, 3})
	if slope != 0 || intercept != 2 {
		t.Errorf("degenerate x: got slope=%v intercept=%v, want 0 and 2", slope, intercept)
	}
}
