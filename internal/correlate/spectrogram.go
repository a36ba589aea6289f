package correlate

import (
	"errors"

	"lockstep/internal/audio"
)

const spectrogramMelBands = 64

// spectrogram correlates mel loudness envelopes. Like onset correlation
// it compares how energy evolves rather than raw waveforms, but it
// follows the overall loudness contour, so it holds up on material with
// few sharp transients.
type spectrogram struct {
	fft     *fftCache
	stft    *stft
	mel     *melBank
	melRate int
}

func newSpectrogram() *spectrogram {
	return &spectrogram{fft: newFFTCache(), stft: newSTFT(stftFrameSize, stftHop)}
}

func (s *spectrogram) Name() string { return "Spectrogram" }

func (s *spectrogram) bank(sampleRate int) *melBank {
	if s.mel == nil || s.melRate != sampleRate {
		s.mel = newMelBank(spectrogramMelBands, s.stft.frameSize, sampleRate)
		s.melRate = sampleRate
	}
	return s.mel
}

func (s *spectrogram) Correlate(ref, sec *audio.Chunk) (Result, error) {
	if err := checkPair(ref, sec); err != nil {
		return Result{}, err
	}
	bank := s.bank(ref.SampleRate)
	refEnv := melEnvelope(s.stft.power(ref.Samples()), bank)
	secEnv := melEnvelope(s.stft.power(sec.Samples()), bank)
	if len(refEnv) == 0 || len(secEnv) == 0 {
		return Result{}, errors.New("audio too short for spectrogram analysis")
	}

	corr := lagCorrelation(s.fft, refEnv, secEnv, envelopeWeight)
	magnitudes := absValues(corr)
	peak := maxIndex(magnitudes)
	confidence := linearConfidence(measurePeak(magnitudes, peak))

	delayFrames := delayFromPeak(peak, len(corr))
	return NewResult(delayFrames*float64(s.stft.hop), ref.SampleRate, confidence), nil
}

func (s *spectrogram) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	return nil, errors.New("spectrogram correlation resolves frames, not samples")
}
