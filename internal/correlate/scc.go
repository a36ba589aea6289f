package correlate

import (
	"math"

	"lockstep/internal/audio"
)

// scc is standard cross-correlation, energy normalized so that a perfect
// match peaks at 1. The fastest strategy and the most literal: it
// compares waveforms directly, so it wants both streams to carry the
// same mix at similar levels.
type scc struct {
	fft *fftCache
}

func newSCC() *scc { return &scc{fft: newFFTCache()} }

func (s *scc) Name() string { return "SCC" }

func (s *scc) Correlate(ref, sec *audio.Chunk) (Result, error) {
	corr, err := s.RawCorrelation(ref, sec)
	if err != nil {
		return Result{}, err
	}
	peak := maxIndex(corr)
	return NewResult(delayFromPeak(peak, len(corr)), ref.SampleRate, corr[peak]*100.0), nil
}

func (s *scc) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	if err := checkPair(ref, sec); err != nil {
		return nil, err
	}
	refSamples, secSamples := ref.Samples(), sec.Samples()
	corr := lagCorrelation(s.fft, refSamples, secSamples, plainWeight)

	norm := math.Sqrt(energy(refSamples) * energy(secSamples))
	if norm > 1e-10 {
		for i := range corr {
			corr[i] /= norm
		}
	}
	return corr, nil
}

func energy(xs []float64) float64 {
	total := 0.0
	for _, v := range xs {
		total += v * v
	}
	return total
}
