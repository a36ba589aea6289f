package correlate

import (
	"errors"

	"lockstep/internal/audio"
)

// onset correlates onset strength envelopes instead of waveforms. It
// survives remixes and codec differences that destroy waveform
// correlation, at the cost of frame-level resolution.
type onset struct {
	fft  *fftCache
	stft *stft
}

func newOnset() *onset {
	return &onset{fft: newFFTCache(), stft: newSTFT(stftFrameSize, stftHop)}
}

func (o *onset) Name() string { return "Onset" }

func (o *onset) Correlate(ref, sec *audio.Chunk) (Result, error) {
	if err := checkPair(ref, sec); err != nil {
		return Result{}, err
	}
	refEnv := onsetEnvelope(o.stft.magnitude(ref.Samples()))
	secEnv := onsetEnvelope(o.stft.magnitude(sec.Samples()))
	if len(refEnv) == 0 || len(secEnv) == 0 {
		return Result{}, errors.New("audio too short for onset detection")
	}
	zeroMean(refEnv)
	zeroMean(secEnv)

	corr := lagCorrelation(o.fft, refEnv, secEnv, envelopeWeight)
	magnitudes := absValues(corr)
	peak := maxIndex(magnitudes)
	confidence := sigmoidConfidence(measurePeak(magnitudes, peak))

	delayFrames := delayFromPeak(peak, len(corr))
	return NewResult(delayFrames*float64(o.stft.hop), ref.SampleRate, confidence), nil
}

func (o *onset) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	return nil, errors.New("onset correlation resolves frames, not samples")
}
