package history

import "time"

// Run is one recorded analysis: the inputs, the selected delay, and the
// drift verdict.
type Run struct {
	ID               string
	CreatedAt        time.Time
	ReferencePath    string
	SecondaryPath    string
	Strategy         string
	SampleRate       int
	ChunkCount       int
	AcceptedChunks   int
	DelayMs          int64
	DelayRaw         float64
	SelectionMethod  string
	SelectionDetails string
	Verdict          string
	DriftSlopeMsPerS float64
	DriftRSquared    float64
	DriftDescription string

	// Chunks carry the per-chunk measurements behind the selection.
	// ListRuns leaves them nil; FindRun loads them.
	Chunks []Chunk
}

// Chunk is one chunk measurement of a recorded run.
type Chunk struct {
	Index          int
	StartTime      float64
	DelayMsRaw     float64
	DelayMsRounded int64
	MatchPct       float64
	Accepted       bool
}
