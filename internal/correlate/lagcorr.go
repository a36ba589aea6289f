package correlate

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"lockstep/internal/audio"
)

// binWeight reshapes one bin of the cross-power spectrum before the
// inverse transform. cross is the reference bin times the conjugate of
// the secondary bin; the raw bins are passed alongside for weightings
// that need the individual spectra.
type binWeight func(cross, refBin, secBin complex128) complex128

func plainWeight(cross, _, _ complex128) complex128 { return cross }

// envelopeWeight is phase transform weighting that zeroes near-silent
// bins instead of passing them through unnormalized.
func envelopeWeight(cross, _, _ complex128) complex128 {
	if mag := cmplx.Abs(cross); mag > 1e-9 {
		return cross / complex(mag, 0)
	}
	return 0
}

// lagCorrelation cross-correlates ref against sec through the frequency
// domain and rotates the result so that zero lag sits at index len/2.
// The output length is the power of two covering len(ref)+len(sec)-1.
func lagCorrelation(cache *fftCache, ref, sec []float64, weight binWeight) []float64 {
	n := len(ref) + len(sec) - 1
	fftLen := nextPowerOfTwo(n)

	a := make([]complex128, fftLen)
	for i, v := range ref {
		a[i] = complex(v, 0)
	}
	b := make([]complex128, fftLen)
	for i, v := range sec {
		b[i] = complex(v, 0)
	}
	cache.forward(a)
	cache.forward(b)

	cross := make([]complex128, fftLen)
	for i := range cross {
		cross[i] = weight(a[i]*cmplx.Conj(b[i]), a[i], b[i])
	}
	cache.inverse(cross)

	scale := 1.0 / float64(fftLen)
	centered := make([]float64, fftLen)
	half := fftLen / 2
	for i, v := range cross {
		centered[(i+half)%fftLen] = real(v) * scale
	}
	return centered
}

// delayFromPeak converts a peak index in a centered correlation into the
// delay of the secondary stream in samples.
func delayFromPeak(peakIdx, length int) float64 {
	lag := peakIdx - length/2
	return float64(-lag)
}

// absValues returns the elementwise absolute values of xs.
func absValues(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = math.Abs(v)
	}
	return out
}

// maxIndex returns the index of the largest value in xs, 0 when xs is
// empty.
func maxIndex(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range xs {
		total += v
	}
	return total / float64(len(xs))
}

func zeroMean(xs []float64) {
	mean := meanOf(xs)
	for i := range xs {
		xs[i] -= mean
	}
}

// checkPair validates that two chunks can be correlated with each other.
func checkPair(ref, sec *audio.Chunk) error {
	if ref == nil || sec == nil || len(ref.Samples()) == 0 || len(sec.Samples()) == 0 {
		return errors.New("empty audio chunk")
	}
	if ref.SampleRate != sec.SampleRate {
		return fmt.Errorf("sample rate mismatch: reference %d Hz, secondary %d Hz", ref.SampleRate, sec.SampleRate)
	}
	return nil
}
