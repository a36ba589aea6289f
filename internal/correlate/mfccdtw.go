package correlate

import (
	"errors"
	"math"
	"sort"

	"lockstep/internal/audio"
)

const (
	mfccCoefficients = 13
	mfccMelBands     = 40
)

// mfccDTW aligns mel-cepstral feature sequences with dynamic time
// warping and reads the delay off the median frame offset along the
// optimal path. The most expensive strategy and the last resort: it can
// lock onto material where every correlation peak is ambiguous, but
// frame resolution is the best it can do.
type mfccDTW struct {
	stft    *stft
	mel     *melBank
	melRate int
}

func newMFCCDTW() *mfccDTW {
	return &mfccDTW{stft: newSTFT(stftFrameSize, stftHop)}
}

func (m *mfccDTW) Name() string { return "MFCC-DTW" }

func (m *mfccDTW) bank(sampleRate int) *melBank {
	if m.mel == nil || m.melRate != sampleRate {
		m.mel = newMelBank(mfccMelBands, m.stft.frameSize, sampleRate)
		m.melRate = sampleRate
	}
	return m.mel
}

func (m *mfccDTW) Correlate(ref, sec *audio.Chunk) (Result, error) {
	if err := checkPair(ref, sec); err != nil {
		return Result{}, err
	}
	bank := m.bank(ref.SampleRate)
	refFeat := mfccFrames(m.stft.power(ref.Samples()), bank, mfccCoefficients)
	secFeat := mfccFrames(m.stft.power(sec.Samples()), bank, mfccCoefficients)
	if len(refFeat) == 0 || len(secFeat) == 0 {
		return Result{}, errors.New("audio too short for MFCC extraction")
	}

	cost := dtwCostMatrix(refFeat, secFeat)
	path := dtwPath(cost)
	if len(path) == 0 {
		return Result{}, errors.New("time warp produced no alignment path")
	}

	offsets := make([]int, len(path))
	for i, p := range path {
		offsets[i] = p.sec - p.ref
	}
	sort.Ints(offsets)
	median := offsets[len(offsets)/2]

	avgCost := cost[len(refFeat)-1][len(secFeat)-1] / float64(len(path))
	confidence := clamp(100.0-avgCost*0.5, 0, 100)

	return NewResult(float64(median)*float64(m.stft.hop), ref.SampleRate, confidence), nil
}

func (m *mfccDTW) RawCorrelation(ref, sec *audio.Chunk) ([]float64, error) {
	return nil, errors.New("MFCC-DTW resolves frames, not samples")
}

type dtwPoint struct {
	ref, sec int
}

// dtwCostMatrix accumulates Euclidean distances between feature rows
// with the classic three-direction recurrence.
func dtwCostMatrix(refFeat, secFeat [][]float64) [][]float64 {
	n, m := len(refFeat), len(secFeat)
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, m)
	}
	cost[0][0] = featureDistance(refFeat[0], secFeat[0])
	for i := 1; i < n; i++ {
		cost[i][0] = cost[i-1][0] + featureDistance(refFeat[i], secFeat[0])
	}
	for j := 1; j < m; j++ {
		cost[0][j] = cost[0][j-1] + featureDistance(refFeat[0], secFeat[j])
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			best := math.Min(cost[i-1][j-1], math.Min(cost[i-1][j], cost[i][j-1]))
			cost[i][j] = featureDistance(refFeat[i], secFeat[j]) + best
		}
	}
	return cost
}

// dtwPath backtracks the cheapest alignment, preferring the diagonal on
// ties, and returns it in time order.
func dtwPath(cost [][]float64) []dtwPoint {
	if len(cost) == 0 || len(cost[0]) == 0 {
		return nil
	}
	i, j := len(cost)-1, len(cost[0])-1
	path := []dtwPoint{{i, j}}
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := cost[i-1][j-1], cost[i-1][j], cost[i][j-1]
			if diag <= up && diag <= left {
				i--
				j--
			} else if left <= up {
				j--
			} else {
				i--
			}
		}
		path = append(path, dtwPoint{i, j})
	}
	for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
		path[a], path[b] = path[b], path[a]
	}
	return path
}

func featureDistance(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		d := a[i] - b[i]
		total += d * d
	}
	return math.Sqrt(total)
}
