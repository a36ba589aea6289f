package correlate

import (
	"math"
	"sort"
)

// peakEvidence summarizes how much a correlation peak stands out from the
// rest of the signal. A tall peak alone says little; these ratios capture
// whether it is tall, unique, and clear of the noise floor.
type peakEvidence struct {
	// prominence is the peak height over the median of the signal.
	prominence float64
	// uniqueness is the peak height over the best competitor outside a
	// small neighborhood around the peak.
	uniqueness float64
	// snr is the peak height over the standard deviation of the
	// background, the values below the 90th percentile.
	snr float64
}

func measurePeak(corr []float64, peakIdx int) peakEvidence {
	if len(corr) == 0 || peakIdx < 0 || peakIdx >= len(corr) {
		return peakEvidence{}
	}
	peak := corr[peakIdx]

	sorted := append([]float64(nil), corr...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	neighborhood := len(corr) / 100
	if neighborhood < 1 {
		neighborhood = 1
	}
	secondBest := math.Inf(-1)
	for i, v := range corr {
		if i >= peakIdx-neighborhood && i <= peakIdx+neighborhood {
			continue
		}
		if v > secondBest {
			secondBest = v
		}
	}
	if math.IsInf(secondBest, -1) {
		secondBest = median
	}

	threshold := peak
	if idx := len(sorted) * 90 / 100; idx < len(sorted) {
		threshold = sorted[idx]
	}
	var background []float64
	for _, v := range corr {
		if v < threshold {
			background = append(background, v)
		}
	}
	spread := 1e-9
	if len(background) > 10 {
		mean := meanOf(background)
		variance := 0.0
		for _, v := range background {
			variance += (v - mean) * (v - mean)
		}
		spread = math.Sqrt(variance / float64(len(background)))
	}

	return peakEvidence{
		prominence: peak / (median + 1e-9),
		uniqueness: peak / (secondBest + 1e-9),
		snr:        peak / (spread + 1e-9),
	}
}

// linearConfidence folds peak evidence into a 0 to 100 score with fixed
// weights favoring uniqueness.
func linearConfidence(ev peakEvidence) float64 {
	score := (ev.prominence*5.0 + ev.uniqueness*8.0 + ev.snr*1.5) / 3.0
	return clamp(score, 0, 100)
}

// sigmoidConfidence squashes each ratio through a saturating curve before
// combining, so one outsized ratio cannot carry the score on its own.
func sigmoidConfidence(ev peakEvidence) float64 {
	score := 0.25*saturate(ev.prominence, 10.0) +
		0.50*saturate(ev.uniqueness-1.0, 2.0) +
		0.25*saturate(ev.snr, 30.0)
	return clamp(score, 0, 100)
}

// saturate maps a non-negative ratio onto 0 to 100 with diminishing
// returns past the given scale.
func saturate(ratio, scale float64) float64 {
	return 100.0 * (1.0 - 1.0/(1.0+ratio/scale))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
