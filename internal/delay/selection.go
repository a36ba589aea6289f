package delay

import (
	"fmt"
	"math"

	"lockstep/internal/correlate"
)

// Method names a delay selection algorithm.
type Method string

const (
	// MethodMode picks the most common rounded delay. Robust to a few
	// outlier chunks, the default.
	MethodMode Method = "mode"
	// MethodAverage takes the mean of all accepted raw delays.
	MethodAverage Method = "average"
	// MethodFirstStable takes the earliest run of consecutive chunks
	// that agree within a tolerance.
	MethodFirstStable Method = "firststable"
)

// ParseMethod maps a configuration string onto a selection method.
// Empty means MethodMode.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case MethodMode, MethodAverage, MethodFirstStable:
		return Method(name), nil
	case "":
		return MethodMode, nil
	}
	return "", fmt.Errorf("unknown delay selection method %q", name)
}

// SelectorConfig tunes delay selection. The zero value uses the stock
// thresholds.
type SelectorConfig struct {
	// MinAcceptedChunks is how many accepted chunks a series needs
	// before any selection runs. Zero means 3.
	MinAcceptedChunks int
	// StableRunLength is the consecutive-chunk count the first-stable
	// method requires. Zero means 3.
	StableRunLength int
	// ToleranceMs bounds how far a rounded delay may sit from the run
	// anchor and still count as stable. Zero means 1.
	ToleranceMs float64
}

func (c SelectorConfig) minAcceptedChunks() int {
	if c.MinAcceptedChunks <= 0 {
		return 3
	}
	return c.MinAcceptedChunks
}

func (c SelectorConfig) stableRunLength() int {
	if c.StableRunLength <= 0 {
		return 3
	}
	return c.StableRunLength
}

func (c SelectorConfig) toleranceMs() float64 {
	if c.ToleranceMs <= 0 {
		return 1.0
	}
	return c.ToleranceMs
}

// Selection is one chosen delay plus the evidence behind it.
type Selection struct {
	DelayMsRaw     float64
	DelayMsRounded int64
	Method         Method
	ChunksUsed     int
	Details        string
}

// Select reduces the accepted chunks of one source to a single delay.
// Rejected chunks never participate. Too few accepted chunks is an
// error: a delay picked from thin evidence would silently desync the
// output.
func Select(chunks []correlate.ChunkResult, method Method, cfg SelectorConfig) (Selection, error) {
	var accepted []correlate.ChunkResult
	for _, c := range chunks {
		if c.Accepted {
			accepted = append(accepted, c)
		}
	}
	if len(accepted) < cfg.minAcceptedChunks() {
		return Selection{}, fmt.Errorf("delay selection needs %d accepted chunks, have %d",
			cfg.minAcceptedChunks(), len(accepted))
	}

	switch method {
	case MethodMode, "":
		return selectMode(accepted), nil
	case MethodAverage:
		return selectAverage(accepted), nil
	case MethodFirstStable:
		return selectFirstStable(accepted, cfg.stableRunLength(), cfg.toleranceMs())
	}
	return Selection{}, fmt.Errorf("unknown delay selection method %q", method)
}

// selectMode picks the most common rounded delay. Ties go to the value
// seen earliest in the series. The raw result is the mean of the raw
// delays of the chunks sharing the winning value.
func selectMode(accepted []correlate.ChunkResult) Selection {
	counts := make(map[int64]int)
	firstSeen := make(map[int64]int)
	for i, c := range accepted {
		d := c.Result.DelayMsRounded
		if _, ok := counts[d]; !ok {
			firstSeen[d] = i
		}
		counts[d]++
	}

	best := accepted[0].Result.DelayMsRounded
	for d, n := range counts {
		if n > counts[best] || (n == counts[best] && firstSeen[d] < firstSeen[best]) {
			best = d
		}
	}

	sum, used := 0.0, 0
	for _, c := range accepted {
		if c.Result.DelayMsRounded == best {
			sum += c.Result.DelayMsRaw
			used++
		}
	}
	raw := sum / float64(used)

	return Selection{
		DelayMsRaw:     raw,
		DelayMsRounded: best,
		Method:         MethodMode,
		ChunksUsed:     used,
		Details: fmt.Sprintf("%d of %d chunks at %s (raw avg %.3f ms)",
			used, len(accepted), FormatDelay(best), raw),
	}
}

func selectAverage(accepted []correlate.ChunkResult) Selection {
	sum := 0.0
	for _, c := range accepted {
		sum += c.Result.DelayMsRaw
	}
	raw := sum / float64(len(accepted))

	return Selection{
		DelayMsRaw:     raw,
		DelayMsRounded: int64(math.Round(raw)),
		Method:         MethodAverage,
		ChunksUsed:     len(accepted),
		Details:        fmt.Sprintf("mean of %d accepted chunks", len(accepted)),
	}
}

// selectFirstStable finds the earliest run of runLen or more
// consecutive accepted chunks whose rounded delays sit within tolMs of
// the run's first value, and averages that run.
func selectFirstStable(accepted []correlate.ChunkResult, runLen int, tolMs float64) (Selection, error) {
	for start := 0; start+runLen <= len(accepted); start++ {
		anchor := float64(accepted[start].Result.DelayMsRounded)
		end := start
		for end < len(accepted) && math.Abs(float64(accepted[end].Result.DelayMsRounded)-anchor) <= tolMs {
			end++
		}
		if end-start < runLen {
			continue
		}

		run := accepted[start:end]
		sum := 0.0
		for _, c := range run {
			sum += c.Result.DelayMsRaw
		}
		raw := sum / float64(len(run))
		rounded := int64(math.Round(raw))

		return Selection{
			DelayMsRaw:     raw,
			DelayMsRounded: rounded,
			Method:         MethodFirstStable,
			ChunksUsed:     len(run),
			Details: fmt.Sprintf("%d consecutive chunks at %s from %.1fs",
				len(run), FormatDelay(rounded), run[0].StartTime),
		}, nil
	}
	return Selection{}, fmt.Errorf("no stable run of %d chunks within %.1f ms", runLen, tolMs)
}
