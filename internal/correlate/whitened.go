package correlate

import (
	"math/cmplx"

	"lockstep/internal/audio"
)

// whitened normalizes each spectrum to unit magnitude per bin before
// cross-multiplying. Close in spirit to the phase transform, but it
// whitens the inputs instead of the product, which keeps bins where
// only one stream has energy from blowing up.
type whitened struct {
	fft *fftCache
}

func newWhitened() *whitened { return &whitened{fft: newFFTCache()} }

func (w *whitened) Name() string { return "Whitened" }

func whitenedWeight(_, refBin, secBin complex128) complex128 {
	if mag := cmplx.Abs(refBin); mag > 1e-9 {
		refBin /= complex(mag, 0)
	}
	if mag := cmplx.Abs(secBin); mag > 1e-9 {
		secBin /= complex(mag, 0)
	}
	return refBin * cmplx.Conj(secBin)
}

func (w *whitened) Correlate(ref, sec *audio.Chunk) (Result, error) {
	corr, err := w.RawCorrelation(ref, sec)
	if err != nil {
		return Result{}, err
	}
	magnitudes := absValues(corr)
	peak := maxIndex(magnitudes)
	confidence := linearConfidence(measurePeak(magnitudes, peak))
	return NewResult(delayFromPeak(peak, len(corr)), ref.SampleRate, confidence), nil
}

func (w *whitened) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	if err := checkPair(ref, sec); err != nil {
		return nil, err
	}
	return lagCorrelation(w.fft, ref.Samples(), sec.Samples(), whitenedWeight), nil
}
