package testsupport

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// NoiseSamples synthesizes deterministic broadband noise. The same seed
// always produces the same sequence, so correlation fixtures line up
// between a reference and its shifted copy.
func NoiseSamples(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}
	return samples
}

// ToneSamples synthesizes n samples of a unit sine at freq Hz.
func ToneSamples(freq float64, rate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	return samples
}

// ShiftSamples delays a signal by shift samples, padding with silence
// and keeping the original length. Negative shifts advance it instead.
func ShiftSamples(samples []float64, shift int) []float64 {
	out := make([]float64, len(samples))
	for i := range out {
		j := i - shift
		if j >= 0 && j < len(samples) {
			out[i] = samples[j]
		}
	}
	return out
}

// WriteWAV encodes mono samples as a 16-bit PCM WAV file and returns the
// path unchanged.
func WriteWAV(t testing.TB, path string, rate int, samples []float64) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}

	encoder := wav.NewEncoder(file, rate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		}
		if sample < -1 {
			sample = -1
		}
		data[i] = int(sample * 32767.0)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder for %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}
