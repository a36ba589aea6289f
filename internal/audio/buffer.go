package audio

import (
	"fmt"
)

// Buffer holds a mono sample sequence at a fixed sample rate. It is a
// read-only view: analysis passes share one Buffer per source and never
// mutate it.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// NewBuffer wraps samples recorded at sampleRate.
func NewBuffer(samples []float64, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio buffer: sample rate must be positive, got %d", sampleRate)
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// ExtractChunk copies a duration-second window starting startTime seconds
// into the buffer. It fails when the window would run past the end.
func (b *Buffer) ExtractChunk(startTime, duration float64) (*Chunk, error) {
	if b == nil {
		return nil, fmt.Errorf("audio buffer: nil buffer")
	}
	if startTime < 0 || duration <= 0 {
		return nil, fmt.Errorf("audio buffer: invalid window %.3fs+%.3fs", startTime, duration)
	}
	start := int(startTime * float64(b.SampleRate))
	count := int(duration * float64(b.SampleRate))
	if start+count > len(b.Samples) {
		return nil, fmt.Errorf("audio buffer: window %.3fs+%.3fs exceeds %.3fs of audio", startTime, duration, b.Duration())
	}
	samples := make([]float64, count)
	copy(samples, b.Samples[start:start+count])
	return &Chunk{
		Raw:        samples,
		SampleRate: b.SampleRate,
		StartTime:  startTime,
		Duration:   duration,
	}, nil
}

// Chunk is a bounded sample window plus its source position. Filtered is
// nil until a filter spec has been applied.
type Chunk struct {
	Raw        []float64
	Filtered   []float64
	SampleRate int
	StartTime  float64
	Duration   float64
}

// Samples returns the filtered samples when conditioning has run,
// otherwise the raw window.
func (c *Chunk) Samples() []float64 {
	if c == nil {
		return nil
	}
	if c.Filtered != nil {
		return c.Filtered
	}
	return c.Raw
}

// Condition applies the filter spec to the raw window and stores the
// result. A nil spec leaves the chunk untouched.
func (c *Chunk) Condition(spec *FilterSpec) {
	if c == nil || spec == nil {
		return
	}
	c.Filtered = spec.Apply(c.Raw, c.SampleRate)
}
