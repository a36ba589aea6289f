package correlate

import "math"

// FitPeak refines an integer correlation peak to sub-sample precision by
// fitting a parabola through the peak and its immediate neighbors. corr
// must be a centered lag-domain correlation. A peak at either edge of
// the array cannot be interpolated and keeps its integer offset.
func FitPeak(corr []float64, peakIdx, sampleRate int) Result {
	center := len(corr) / 2
	if peakIdx <= 0 || peakIdx >= len(corr)-1 {
		return NewResult(float64(-(peakIdx - center)), sampleRate, corr[peakIdx]*100.0)
	}

	y0, y1, y2 := corr[peakIdx-1], corr[peakIdx], corr[peakIdx+1]
	a := (y0+y2)/2.0 - y1
	b := (y2 - y0) / 2.0

	delta := 0.0
	refined := y1
	if math.Abs(a) > 1e-10 {
		delta = clamp(-b/(2.0*a), -1.0, 1.0)
		refined = y1 - b*b/(4.0*a)
	}

	res := NewResult(-(float64(peakIdx-center) + delta), sampleRate, refined*100.0)
	res.PeakFitted = true
	return res
}

// FindAndFitPeak locates the maximum of a centered correlation and
// refines it with FitPeak. An empty correlation yields a zero result.
func FindAndFitPeak(corr []float64, sampleRate int) Result {
	if len(corr) == 0 {
		return NewResult(0, sampleRate, 0)
	}
	return FitPeak(corr, maxIndex(corr), sampleRate)
}
