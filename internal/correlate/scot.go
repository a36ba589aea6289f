package correlate

import (
	"math"

	"lockstep/internal/audio"
)

// gccSCOT weights the cross spectrum with the smoothed coherence
// transform, the geometric mean of both power spectra. Softer whitening
// than the phase transform; it tolerates narrowband noise better.
type gccSCOT struct {
	fft *fftCache
}

func newSCOT() *gccSCOT { return &gccSCOT{fft: newFFTCache()} }

func (g *gccSCOT) Name() string { return "GCC-SCOT" }

func scotWeight(cross, refBin, secBin complex128) complex128 {
	refPower := real(refBin)*real(refBin) + imag(refBin)*imag(refBin)
	secPower := real(secBin)*real(secBin) + imag(secBin)*imag(secBin)
	w := math.Sqrt(refPower*secPower) + 1e-9
	return cross / complex(w, 0)
}

func (g *gccSCOT) Correlate(ref, sec *audio.Chunk) (Result, error) {
	corr, err := g.RawCorrelation(ref, sec)
	if err != nil {
		return Result{}, err
	}
	magnitudes := absValues(corr)
	peak := maxIndex(magnitudes)
	confidence := clamp(magnitudes[peak]/(meanOf(magnitudes)+1e-9)*10.0, 0, 100)
	return NewResult(delayFromPeak(peak, len(corr)), ref.SampleRate, confidence), nil
}

func (g *gccSCOT) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	if err := checkPair(ref, sec); err != nil {
		return nil, err
	}
	return lagCorrelation(g.fft, ref.Samples(), sec.Samples(), scotWeight), nil
}
