package drift

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// regress fits delay against time with ordinary least squares and returns
// the slope in ms/s, the intercept in ms, and the coefficient of
// determination clamped to [0, 1]. Fewer than two points or a
// zero-variance time axis are degenerate no-drift results.
func regress(times, delays []float64) (slope, intercept, r2 float64) {
	if len(times) < 2 || len(times) != len(delays) {
		return 0, 0, 0
	}
	if stat.Variance(times, nil) < 1e-12 {
		return 0, stat.Mean(delays, nil), 0
	}

	intercept, slope = stat.LinearRegression(times, delays, nil, false)
	r2 = stat.RSquared(times, delays, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// Zero residuals over zero total variance: a perfectly flat fit.
		r2 = 1
	}
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	return slope, intercept, r2
}
