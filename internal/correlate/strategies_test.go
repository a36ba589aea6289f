package correlate_test

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"lockstep/internal/audio"
	"lockstep/internal/correlate"
)

func noiseSignal(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// texturedSignal is noise with stepped loudness, giving the envelope and
// feature strategies structure to lock onto.
func texturedSignal(n int, seed uint64) []float64 {
	levels := []float64{0.1, 0.9, 0.3, 1.0, 0.2, 0.7, 0.5, 0.95, 0.15, 0.8}
	out := noiseSignal(n, seed)
	for i := range out {
		out[i] *= levels[(i/2000)%len(levels)]
	}
	return out
}

// delayedChunks pairs a reference chunk with a copy whose content plays
// delay samples later (earlier when delay is negative).
func delayedChunks(signal []float64, delay, sampleRate int) (*audio.Chunk, *audio.Chunk) {
	n := len(signal)
	sec := make([]float64, n)
	if delay >= 0 {
		copy(sec[delay:], signal[:n-delay])
	} else {
		copy(sec, signal[-delay:])
	}
	ref := &audio.Chunk{Raw: signal, SampleRate: sampleRate}
	return ref, &audio.Chunk{Raw: sec, SampleRate: sampleRate}
}

func checkInvariants(t *testing.T, res correlate.Result, sampleRate int) {
	t.Helper()
	wantRaw := res.DelaySamples / float64(sampleRate) * 1000.0
	if math.Abs(res.DelayMsRaw-wantRaw) > 1e-9 {
		t.Fatalf("raw delay out of step with samples: %v vs %v", res.DelayMsRaw, wantRaw)
	}
	if res.DelayMsRounded != int64(math.Round(res.DelayMsRaw)) {
		t.Fatalf("rounded delay out of step with raw: %d vs %v", res.DelayMsRounded, res.DelayMsRaw)
	}
}

func sampleKinds() []correlate.Kind {
	return []correlate.Kind{correlate.KindSCC, correlate.KindGCCPHAT, correlate.KindSCOT, correlate.KindWhitened}
}

func TestSampleStrategiesDetectDelay(t *testing.T) {
	signal := noiseSignal(8000, 1)
	for _, kind := range sampleKinds() {
		for _, delay := range []int{0, 50, -37} {
			strat, err := correlate.New(kind)
			if err != nil {
				t.Fatalf("new %s: %v", kind, err)
			}
			ref, sec := delayedChunks(signal, delay, 8000)
			res, err := strat.Correlate(ref, sec)
			if err != nil {
				t.Fatalf("%s: correlate: %v", kind, err)
			}
			if math.Abs(res.DelaySamples-float64(delay)) > 0.5 {
				t.Fatalf("%s: expected delay %d samples, got %v", kind, delay, res.DelaySamples)
			}
			if res.MatchPct <= 5.0 {
				t.Fatalf("%s: expected a confident match, got %v%%", kind, res.MatchPct)
			}
			checkInvariants(t, res, 8000)
		}
	}
}

func TestStrategiesRejectMismatchedRates(t *testing.T) {
	for _, kind := range correlate.Kinds() {
		strat, err := correlate.New(kind)
		if err != nil {
			t.Fatalf("new %s: %v", kind, err)
		}
		ref := &audio.Chunk{Raw: noiseSignal(4096, 2), SampleRate: 48000}
		sec := &audio.Chunk{Raw: noiseSignal(4096, 3), SampleRate: 44100}
		if _, err := strat.Correlate(ref, sec); err == nil {
			t.Fatalf("%s: expected error for mismatched sample rates", kind)
		} else if !strings.Contains(err.Error(), "sample rate mismatch") {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
	}
}

func TestStrategiesRejectEmptyChunks(t *testing.T) {
	for _, kind := range correlate.Kinds() {
		strat, err := correlate.New(kind)
		if err != nil {
			t.Fatalf("new %s: %v", kind, err)
		}
		ref := &audio.Chunk{Raw: nil, SampleRate: 48000}
		sec := &audio.Chunk{Raw: noiseSignal(1024, 4), SampleRate: 48000}
		if _, err := strat.Correlate(ref, sec); err == nil {
			t.Fatalf("%s: expected error for an empty chunk", kind)
		}
	}
}

func TestOnsetDetectsFrameDelay(t *testing.T) {
	signal := texturedSignal(32000, 5)
	strat, err := correlate.New(correlate.KindOnset)
	if err != nil {
		t.Fatalf("new onset: %v", err)
	}
	for _, delay := range []int{0, 2048} {
		ref, sec := delayedChunks(signal, delay, 8000)
		res, err := strat.Correlate(ref, sec)
		if err != nil {
			t.Fatalf("onset correlate: %v", err)
		}
		if math.Abs(res.DelaySamples-float64(delay)) > 512 {
			t.Fatalf("expected about %d samples, got %v", delay, res.DelaySamples)
		}
		checkInvariants(t, res, 8000)
	}
}

func TestOnsetRejectsShortAudio(t *testing.T) {
	strat, err := correlate.New(correlate.KindOnset)
	if err != nil {
		t.Fatalf("new onset: %v", err)
	}
	ref, sec := delayedChunks(noiseSignal(1000, 6), 0, 8000)
	if _, err := strat.Correlate(ref, sec); err == nil {
		t.Fatal("expected error for audio shorter than one frame")
	}
}

func TestSpectrogramDetectsFrameDelay(t *testing.T) {
	signal := texturedSignal(32000, 7)
	strat, err := correlate.New(correlate.KindSpectrogram)
	if err != nil {
		t.Fatalf("new spectrogram: %v", err)
	}
	for _, delay := range []int{0, 2048} {
		ref, sec := delayedChunks(signal, delay, 8000)
		res, err := strat.Correlate(ref, sec)
		if err != nil {
			t.Fatalf("spectrogram correlate: %v", err)
		}
		if math.Abs(res.DelaySamples-float64(delay)) > 512 {
			t.Fatalf("expected about %d samples, got %v", delay, res.DelaySamples)
		}
	}
}

func TestMFCCDTWDetectsFrameDelay(t *testing.T) {
	signal := texturedSignal(24000, 8)
	strat, err := correlate.New(correlate.KindMFCCDTW)
	if err != nil {
		t.Fatalf("new mfccdtw: %v", err)
	}
	for _, delay := range []int{0, 1024} {
		ref, sec := delayedChunks(signal, delay, 8000)
		res, err := strat.Correlate(ref, sec)
		if err != nil {
			t.Fatalf("mfccdtw correlate: %v", err)
		}
		if math.Abs(res.DelaySamples-float64(delay)) > 512 {
			t.Fatalf("expected about %d samples, got %v", delay, res.DelaySamples)
		}
	}
}

func TestFrameStrategiesHaveNoRawCorrelation(t *testing.T) {
	signal := texturedSignal(24000, 9)
	for _, kind := range []correlate.Kind{correlate.KindMFCCDTW, correlate.KindOnset, correlate.KindSpectrogram} {
		strat, err := correlate.New(kind)
		if err != nil {
			t.Fatalf("new %s: %v", kind, err)
		}
		ref, sec := delayedChunks(signal, 0, 8000)
		if _, err := strat.RawCorrelation(ref, sec); err == nil {
			t.Fatalf("%s: expected raw correlation to be unsupported", kind)
		}
	}
}
