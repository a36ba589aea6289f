package drift

import (
	"math"
	"testing"
)

func TestRegressDegenerateInputs(t *testing.T) {
	if s, i, r := regress(nil, nil); s != 0 || i != 0 || r != 0 {
		t.Fatalf("expected zeros for empty input, got %v %v %v", s, i, r)
	}
	if s, i, r := regress([]float64{1}, []float64{2}); s != 0 || i != 0 || r != 0 {
		t.Fatalf("expected zeros for a single point, got %v %v %v", s, i, r)
	}
	if s, i, r := regress([]float64{1, 2}, []float64{3}); s != 0 || i != 0 || r != 0 {
		t.Fatalf("expected zeros for mismatched lengths, got %v %v %v", s, i, r)
	}

	s, i, r := regress([]float64{10, 10, 10}, []float64{1, 2, 3})
	if s != 0 || math.Abs(i-2) > 1e-12 || r != 0 {
		t.Fatalf("expected flat fit at the mean for constant times, got %v %v %v", s, i, r)
	}
}

func TestRegressPerfectLine(t *testing.T) {
	times := []float64{0, 10, 20, 30}
	delays := make([]float64, len(times))
	for i, x := range times {
		delays[i] = 3*x + 7
	}

	slope, intercept, r2 := regress(times, delays)
	if math.Abs(slope-3) > 1e-9 {
		t.Fatalf("expected slope 3, got %v", slope)
	}
	if math.Abs(intercept-7) > 1e-9 {
		t.Fatalf("expected intercept 7, got %v", intercept)
	}
	if math.Abs(r2-1) > 1e-9 {
		t.Fatalf("expected R2 1, got %v", r2)
	}
}

func TestRegressConstantDelays(t *testing.T) {
	slope, intercept, r2 := regress([]float64{0, 1, 2, 3}, []float64{5, 5, 5, 5})
	if math.Abs(slope) > 1e-12 {
		t.Fatalf("expected zero slope, got %v", slope)
	}
	if math.Abs(intercept-5) > 1e-12 {
		t.Fatalf("expected intercept 5, got %v", intercept)
	}
	// Zero residuals over zero variance reads as a perfect flat fit.
	if r2 != 1 {
		t.Fatalf("expected R2 1, got %v", r2)
	}
}
