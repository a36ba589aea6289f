package audio_test

import (
	"math"
	"testing"

	"lockstep/internal/audio"
)

func sine(freq float64, sampleRate int, seconds float64) []float64 {
	count := int(seconds * float64(sampleRate))
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return samples
}

func TestNewBufferRejectsBadRate(t *testing.T) {
	if _, err := audio.NewBuffer([]float64{0, 1}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestBufferDuration(t *testing.T) {
	buf, err := audio.NewBuffer(make([]float64, 48000*3), 48000)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	if got := buf.Duration(); got != 3.0 {
		t.Fatalf("expected 3s duration, got %v", got)
	}
}

func TestExtractChunkWithinBounds(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = float64(i)
	}
	buf, err := audio.NewBuffer(samples, 100)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}

	chunk, err := buf.ExtractChunk(2.0, 5.0)
	if err != nil {
		t.Fatalf("extract chunk: %v", err)
	}
	if len(chunk.Raw) != 500 {
		t.Fatalf("expected 500 samples, got %d", len(chunk.Raw))
	}
	if chunk.Raw[0] != 200 {
		t.Fatalf("expected window to start at sample 200, got %v", chunk.Raw[0])
	}
	if chunk.StartTime != 2.0 || chunk.Duration != 5.0 {
		t.Fatalf("chunk position lost: %+v", chunk)
	}
}

func TestExtractChunkBeyondEndFails(t *testing.T) {
	buf, err := audio.NewBuffer(make([]float64, 1000), 100)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	if _, err := buf.ExtractChunk(8.0, 5.0); err == nil {
		t.Fatal("expected error for window exceeding the buffer")
	}
	// Exactly to the end is fine.
	if _, err := buf.ExtractChunk(5.0, 5.0); err != nil {
		t.Fatalf("window ending at the buffer edge should extract: %v", err)
	}
}

func TestChunkSamplesPrefersFiltered(t *testing.T) {
	chunk := &audio.Chunk{Raw: []float64{1, 2, 3}, SampleRate: 100}
	if got := chunk.Samples(); &got[0] != &chunk.Raw[0] {
		t.Fatal("expected raw samples before conditioning")
	}
	chunk.Condition(audio.LowPass(10, 2))
	if chunk.Filtered == nil {
		t.Fatal("expected filtered samples after conditioning")
	}
	if got := chunk.Samples(); &got[0] != &chunk.Filtered[0] {
		t.Fatal("expected filtered samples to win after conditioning")
	}
}
