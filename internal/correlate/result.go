package correlate

import (
	"fmt"
	"math"
)

// Result is a single delay measurement between two chunks of audio.
type Result struct {
	// DelaySamples is the measured lag of the secondary chunk in samples.
	DelaySamples float64
	// DelayMsRaw is the same lag in milliseconds, unrounded.
	DelayMsRaw float64
	// DelayMsRounded is DelayMsRaw rounded to the nearest millisecond.
	DelayMsRounded int64
	// MatchPct scores how trustworthy the measurement is, from 0 to 100.
	MatchPct float64
	// PeakFitted marks delays refined by parabolic interpolation.
	PeakFitted bool
}

// NewResult derives the millisecond fields from a sample-domain delay.
func NewResult(delaySamples float64, sampleRate int, matchPct float64) Result {
	raw := delaySamples / float64(sampleRate) * 1000.0
	return Result{
		DelaySamples:   delaySamples,
		DelayMsRaw:     raw,
		DelayMsRounded: int64(math.Round(raw)),
		MatchPct:       matchPct,
	}
}

// ChunkResult ties one measurement to the chunk position it came from.
type ChunkResult struct {
	// Index is the 1-based position of the chunk within the pass.
	Index int
	// StartTime is the chunk start in seconds into both streams.
	StartTime float64
	// Result holds the measurement. It stays zero when the chunk failed
	// before correlation.
	Result Result
	// Accepted reports whether the match score cleared the minimum.
	Accepted bool
	// RejectReason explains a rejection. Empty for accepted chunks.
	RejectReason string
}

// newChunkResult screens a measurement against the minimum match score.
func newChunkResult(index int, startTime float64, res Result, minMatchPct float64) ChunkResult {
	out := ChunkResult{Index: index, StartTime: startTime, Result: res}
	if res.MatchPct >= minMatchPct {
		out.Accepted = true
		return out
	}
	out.RejectReason = fmt.Sprintf("match %.1f%% below minimum %.1f%%", res.MatchPct, minMatchPct)
	return out
}

// rejectedChunk records a chunk that failed before it could be screened.
func rejectedChunk(index int, startTime float64, reason string) ChunkResult {
	return ChunkResult{Index: index, StartTime: startTime, RejectReason: reason}
}
