package correlate

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testNoise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func TestDCTConstantSignal(t *testing.T) {
	xs := []float64{2, 2, 2, 2, 2, 2, 2, 2}
	out := dctII(xs, 4)
	if len(out) != 4 {
		t.Fatalf("expected 4 coefficients, got %d", len(out))
	}
	want := 2.0 * math.Sqrt(8.0)
	if math.Abs(out[0]-want) > 1e-9 {
		t.Fatalf("expected DC coefficient %v, got %v", want, out[0])
	}
	for k := 1; k < len(out); k++ {
		if math.Abs(out[k]) > 1e-9 {
			t.Fatalf("expected zero coefficient %d for constant input, got %v", k, out[k])
		}
	}
}

func TestMelBankShape(t *testing.T) {
	bank := newMelBank(40, 2048, 8000)
	if len(bank.filters) != 40 {
		t.Fatalf("expected 40 bands, got %d", len(bank.filters))
	}
	for b, filter := range bank.filters {
		if len(filter) != 1025 {
			t.Fatalf("band %d: expected 1025 bins, got %d", b, len(filter))
		}
		total := 0.0
		for _, w := range filter {
			if w < 0 {
				t.Fatalf("band %d carries a negative weight", b)
			}
			total += w
		}
		if total <= 0 {
			t.Fatalf("band %d has no weight", b)
		}
	}
}

func TestOnsetEnvelopeSpikesAtBurst(t *testing.T) {
	samples := testNoise(16384, 21)
	for i := range samples {
		samples[i] *= 0.01
	}
	burst := testNoise(400, 22)
	for i, v := range burst {
		samples[8192+i] = v
	}

	s := newSTFT(stftFrameSize, stftHop)
	env := onsetEnvelope(s.magnitude(samples))
	if len(env) != s.frames(len(samples)) {
		t.Fatalf("expected %d envelope frames, got %d", s.frames(len(samples)), len(env))
	}

	peak := maxIndex(env)
	if peak < 12 || peak > 16 {
		t.Fatalf("expected the flux peak near frame 13, got frame %d", peak)
	}
	if math.Abs(env[peak]-1.0) > 1e-9 {
		t.Fatalf("expected a normalized envelope peak of 1, got %v", env[peak])
	}
}

func TestMelEnvelopeIsStandardized(t *testing.T) {
	samples := testNoise(32000, 23)
	for i := range samples {
		samples[i] *= 0.2 + 0.8*math.Abs(math.Sin(float64(i)/3000.0))
	}
	s := newSTFT(stftFrameSize, stftHop)
	bank := newMelBank(spectrogramMelBands, stftFrameSize, 8000)
	env := melEnvelope(s.power(samples), bank)

	if math.Abs(meanOf(env)) > 1e-9 {
		t.Fatalf("expected zero mean, got %v", meanOf(env))
	}
	variance := 0.0
	for _, v := range env {
		variance += v * v
	}
	variance /= float64(len(env))
	if math.Abs(variance-1.0) > 1e-6 {
		t.Fatalf("expected unit variance, got %v", variance)
	}
}

func TestMeasurePeakPrefersSharpPeaks(t *testing.T) {
	sharp := make([]float64, 1000)
	ambiguous := make([]float64, 1000)
	for i := range sharp {
		floor := 0.05 * float64(i%7) / 7.0
		sharp[i] = floor
		ambiguous[i] = floor
	}
	sharp[400] = 1.0
	ambiguous[400] = 1.0
	ambiguous[700] = 0.98

	confSharp := linearConfidence(measurePeak(sharp, 400))
	confAmbiguous := linearConfidence(measurePeak(ambiguous, 400))
	if confSharp <= confAmbiguous {
		t.Fatalf("expected the lone peak to score higher: %v vs %v", confSharp, confAmbiguous)
	}

	sigSharp := sigmoidConfidence(measurePeak(sharp, 400))
	sigAmbiguous := sigmoidConfidence(measurePeak(ambiguous, 400))
	if sigSharp <= sigAmbiguous {
		t.Fatalf("expected the lone peak to score higher: %v vs %v", sigSharp, sigAmbiguous)
	}
	for _, v := range []float64{confSharp, confAmbiguous, sigSharp, sigAmbiguous} {
		if v < 0 || v > 100 {
			t.Fatalf("confidence out of range: %v", v)
		}
	}
}

func TestSTFTFrameCount(t *testing.T) {
	s := newSTFT(stftFrameSize, stftHop)
	tests := []struct {
		samples int
		want    int
	}{
		{0, 0},
		{2047, 0},
		{2048, 1},
		{2048 + 512, 2},
		{2048 + 512*10, 11},
	}
	for _, tt := range tests {
		if got := s.frames(tt.samples); got != tt.want {
			t.Fatalf("frames(%d): expected %d, got %d", tt.samples, tt.want, got)
		}
	}
}
