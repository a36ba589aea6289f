package correlate

import (
	"math/cmplx"

	"lockstep/internal/audio"
)

// gccPHAT is generalized cross-correlation with phase transform
// weighting. Every cross-spectrum bin is normalized to unit magnitude,
// which discards level differences and sharpens the correlation peak to
// nearly an impulse. The default strategy.
type gccPHAT struct {
	fft *fftCache
}

func newGCCPHAT() *gccPHAT { return &gccPHAT{fft: newFFTCache()} }

func (g *gccPHAT) Name() string { return "GCC-PHAT" }

func phatWeight(cross, _, _ complex128) complex128 {
	if mag := cmplx.Abs(cross); mag > 1e-9 {
		return cross / complex(mag, 0)
	}
	return cross
}

func (g *gccPHAT) Correlate(ref, sec *audio.Chunk) (Result, error) {
	corr, err := g.RawCorrelation(ref, sec)
	if err != nil {
		return Result{}, err
	}
	magnitudes := absValues(corr)
	peak := maxIndex(magnitudes)
	confidence := linearConfidence(measurePeak(magnitudes, peak))
	return NewResult(delayFromPeak(peak, len(corr)), ref.SampleRate, confidence), nil
}

func (g *gccPHAT) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	if err := checkPair(ref, sec); err != nil {
		return nil, err
	}
	return lagCorrelation(g.fft, ref.Samples(), sec.Samples(), phatWeight), nil
}
