package correlate

// PositionPlan controls where analysis chunks are sampled from a stream.
type PositionPlan struct {
	// Count is how many chunks to spread across the scan window.
	Count int
	// Duration is the length of each chunk in seconds.
	Duration float64
	// StartPct and EndPct bound the scan window as percentages of the
	// stream duration, keeping openings and credits out of the pass.
	StartPct float64
	EndPct   float64
}

// DefaultPositionPlan scans ten 15 second chunks between 5% and 95% of
// the stream.
func DefaultPositionPlan() PositionPlan {
	return PositionPlan{Count: 10, Duration: 15.0, StartPct: 5.0, EndPct: 95.0}
}

// Positions returns evenly spaced chunk start times for a stream lasting
// duration seconds. A stream too short to fit a single chunk inside the
// scan window yields no positions.
func (p PositionPlan) Positions(duration float64) []float64 {
	start := duration * p.StartPct / 100.0
	end := duration * p.EndPct / 100.0
	usable := end - start - p.Duration
	if usable <= 0 || p.Count <= 0 {
		return nil
	}
	if p.Count == 1 {
		return []float64{start + usable/2.0}
	}
	positions := make([]float64, p.Count)
	step := usable / float64(p.Count-1)
	for i := range positions {
		positions[i] = start + float64(i)*step
	}
	return positions
}
