package drift

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"lockstep/internal/correlate"
)

// Verdict classifies a delay series.
type Verdict string

const (
	VerdictUniform  Verdict = "uniform"
	VerdictPALDrift Verdict = "pal_drift"
	VerdictLinear   Verdict = "linear_drift"
	VerdictStepping Verdict = "stepping"
)

// Preset scales the drift thresholds up or down in one step.
type Preset string

const (
	PresetStrict  Preset = "strict"
	PresetNormal  Preset = "normal"
	PresetLenient Preset = "lenient"
)

// ParsePreset maps a configuration string onto a preset.
func ParsePreset(name string) (Preset, error) {
	switch Preset(name) {
	case PresetStrict, PresetNormal, PresetLenient:
		return Preset(name), nil
	case "":
		return PresetNormal, nil
	}
	return "", fmt.Errorf("unknown drift quality preset %q", name)
}

// PAL material runs 25/23.976 times faster than film rate, stretching
// the delay by about 40.9 ms for every second of playback.
const (
	palFramerate          = 25.0
	palFramerateTolerance = 0.1
	palDriftRate          = 40.9
	palDriftTolerance     = 5.0
)

// Options tunes a diagnosis pass. The zero value uses the normal preset
// with the stock thresholds.
type Options struct {
	// Preset scales the slope, fit, and clustering thresholds. Empty
	// means PresetNormal.
	Preset Preset
	// EpsilonMs is the clustering neighborhood radius in milliseconds
	// before preset scaling. Zero means 20.
	EpsilonMs float64
	// MinClusterSamples is the density floor for clustering. Zero means 2.
	MinClusterSamples int
	// MinAcceptedChunks is how many accepted chunks a series needs
	// before any verdict besides uniform. Zero means 6.
	MinAcceptedChunks int
}

func (o Options) epsilon() float64 {
	eps := o.EpsilonMs
	if eps <= 0 {
		eps = 20.0
	}
	switch o.Preset {
	case PresetStrict:
		return eps * 1.5
	case PresetLenient:
		return eps * 0.75
	}
	return eps
}

func (o Options) minClusterSamples() int {
	if o.MinClusterSamples <= 0 {
		return 2
	}
	return o.MinClusterSamples
}

func (o Options) minAcceptedChunks() int {
	if o.MinAcceptedChunks <= 0 {
		return 6
	}
	return o.MinAcceptedChunks
}

type limits struct {
	slope float64
	r2    float64
}

func (o Options) limitsFor(lossless bool) limits {
	base := limits{slope: 1.0, r2: 0.85}
	if lossless {
		base = limits{slope: 0.2, r2: 0.90}
	}
	switch o.Preset {
	case PresetStrict:
		base.slope *= 2.0
		base.r2 = math.Min(base.r2+0.05, 0.99)
	case PresetLenient:
		base.slope *= 0.5
		base.r2 -= 0.10
	}
	return base
}

// ClusterStat summarizes one stepping level.
type ClusterStat struct {
	// MeanDelayMs and StdDevMs describe the delays inside the cluster.
	MeanDelayMs float64
	StdDevMs    float64
	// Count is how many accepted chunks landed in the cluster.
	Count int
	// FirstTime and LastTime bound the chunk start times covered.
	FirstTime float64
	LastTime  float64
}

// Diagnosis is a verdict plus the evidence that produced it.
type Diagnosis struct {
	Verdict Verdict
	// SlopeMsPerS and RSquared carry the regression evidence for drift
	// verdicts, and for uniform verdicts that fell through the checks.
	SlopeMsPerS float64
	RSquared    float64
	// ClusterCount and Clusters carry the stepping evidence, ordered by
	// mean delay.
	ClusterCount int
	Clusters     []ClusterStat
	// Framerate echoes the video framerate a PAL verdict was based on.
	Framerate float64
	// AcceptedChunks is how many chunks the diagnosis was computed from.
	AcceptedChunks int
	// Description is a one-line human reading of the verdict.
	Description string
}

// losslessCodec reports whether the codec identifier names a lossless
// audio codec. Lossless sources correlate cleanly, so they are held to
// tighter drift thresholds.
func losslessCodec(codec string) bool {
	c := strings.ToLower(codec)
	for _, name := range []string{"pcm", "flac", "truehd", "mlp"} {
		if strings.Contains(c, name) {
			return true
		}
	}
	return false
}

// Diagnose classifies the delay series of a correlation pass. framerate
// is the video framerate in fps, zero when unknown; codec is the audio
// codec identifier of the secondary source, empty when unknown.
func Diagnose(chunks []correlate.ChunkResult, framerate float64, codec string, opts Options) Diagnosis {
	var accepted []correlate.ChunkResult
	for _, c := range chunks {
		if c.Accepted {
			accepted = append(accepted, c)
		}
	}

	if len(accepted) < opts.minAcceptedChunks() {
		return Diagnosis{
			Verdict:        VerdictUniform,
			AcceptedChunks: len(accepted),
			Description: fmt.Sprintf("insufficient data: %d accepted chunks, need %d for drift analysis",
				len(accepted), opts.minAcceptedChunks()),
		}
	}

	times := make([]float64, len(accepted))
	delays := make([]float64, len(accepted))
	for i, c := range accepted {
		times[i] = c.StartTime
		delays[i] = float64(c.Result.DelayMsRounded)
	}

	if framerate > 0 && math.Abs(framerate-palFramerate) < palFramerateTolerance {
		slope, _, r2 := regress(times, delays)
		if math.Abs(slope-palDriftRate) < palDriftTolerance {
			return Diagnosis{
				Verdict:        VerdictPALDrift,
				SlopeMsPerS:    slope,
				RSquared:       r2,
				Framerate:      framerate,
				AcceptedChunks: len(accepted),
				Description:    fmt.Sprintf("delay grows %.1f ms/s on %.3f fps video, the PAL speedup signature", slope, framerate),
			}
		}
	}

	labels := clusterLabels(delays, opts.epsilon(), opts.minClusterSamples())
	clusters := clusterStats(labels, times, delays)
	if len(clusters) > 1 {
		return Diagnosis{
			Verdict:        VerdictStepping,
			ClusterCount:   len(clusters),
			Clusters:       clusters,
			AcceptedChunks: len(accepted),
			Description:    fmt.Sprintf("delay steps between %d distinct levels", len(clusters)),
		}
	}

	slope, _, r2 := regress(times, delays)
	lim := opts.limitsFor(losslessCodec(codec))
	if math.Abs(slope) > lim.slope && r2 > lim.r2 {
		return Diagnosis{
			Verdict:        VerdictLinear,
			SlopeMsPerS:    slope,
			RSquared:       r2,
			AcceptedChunks: len(accepted),
			Description:    fmt.Sprintf("delay drifts %.2f ms/s with fit R2 %.3f", slope, r2),
		}
	}

	return Diagnosis{
		Verdict:        VerdictUniform,
		SlopeMsPerS:    slope,
		RSquared:       r2,
		AcceptedChunks: len(accepted),
		Description:    "delay is stable across the accepted chunks",
	}
}

func clusterStats(labels []int, times, delays []float64) []ClusterStat {
	members := make(map[int][]int)
	for i, label := range labels {
		if label >= 0 {
			members[label] = append(members[label], i)
		}
	}

	stats := make([]ClusterStat, 0, len(members))
	for _, indices := range members {
		mean := 0.0
		for _, i := range indices {
			mean += delays[i]
		}
		mean /= float64(len(indices))

		variance := 0.0
		first, last := math.Inf(1), math.Inf(-1)
		for _, i := range indices {
			variance += (delays[i] - mean) * (delays[i] - mean)
			first = math.Min(first, times[i])
			last = math.Max(last, times[i])
		}
		variance /= float64(len(indices))

		stats = append(stats, ClusterStat{
			MeanDelayMs: mean,
			StdDevMs:    math.Sqrt(variance),
			Count:       len(indices),
			FirstTime:   first,
			LastTime:    last,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].MeanDelayMs < stats[j].MeanDelayMs })
	return stats
}
