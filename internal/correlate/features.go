package correlate

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	stftFrameSize = 2048
	stftHop       = 512
)

// stft slices a signal into overlapping Hann-windowed frames and
// transforms each one. The plan and scratch buffers are reused across
// calls, so an instance must not run concurrently.
type stft struct {
	frameSize int
	hop       int
	win       window.Values
	plan      *fourier.FFT
	frame     []float64
	spectrum  []complex128
}

func newSTFT(frameSize, hop int) *stft {
	return &stft{
		frameSize: frameSize,
		hop:       hop,
		win:       window.NewValues(window.Hann, frameSize),
		plan:      fourier.NewFFT(frameSize),
		frame:     make([]float64, frameSize),
		spectrum:  make([]complex128, frameSize/2+1),
	}
}

// frames returns how many full frames fit into n samples, 0 when the
// signal is shorter than one frame.
func (s *stft) frames(n int) int {
	if n < s.frameSize {
		return 0
	}
	return 1 + (n-s.frameSize)/s.hop
}

func (s *stft) spectra(samples []float64, power bool) [][]float64 {
	count := s.frames(len(samples))
	out := make([][]float64, count)
	for f := 0; f < count; f++ {
		start := f * s.hop
		copy(s.frame, samples[start:start+s.frameSize])
		s.win.Transform(s.frame)
		s.plan.Coefficients(s.spectrum, s.frame)

		row := make([]float64, len(s.spectrum))
		for i, c := range s.spectrum {
			mag := cmplx.Abs(c)
			if power {
				row[i] = mag * mag
			} else {
				row[i] = mag
			}
		}
		out[f] = row
	}
	return out
}

// magnitude returns one magnitude spectrum per full frame.
func (s *stft) magnitude(samples []float64) [][]float64 { return s.spectra(samples, false) }

// power returns one power spectrum per full frame.
func (s *stft) power(samples []float64) [][]float64 { return s.spectra(samples, true) }

func hzToMel(hz float64) float64 { return 1127.0 * math.Log(1.0+hz/700.0) }

func melToHz(mel float64) float64 { return 700.0 * (math.Exp(mel/1127.0) - 1.0) }

// melBank folds FFT bins into triangular mel bands with Slaney area
// normalization, so band output stays comparable across bandwidths.
type melBank struct {
	filters [][]float64
}

func newMelBank(bands, frameSize, sampleRate int) *melBank {
	bins := frameSize/2 + 1
	maxMel := hzToMel(float64(sampleRate) / 2.0)

	edgesHz := make([]float64, bands+2)
	edgesBin := make([]float64, bands+2)
	for i := range edgesHz {
		hz := melToHz(maxMel * float64(i) / float64(bands+1))
		edgesHz[i] = hz
		edgesBin[i] = hz * float64(frameSize) / float64(sampleRate)
	}

	filters := make([][]float64, bands)
	for b := 0; b < bands; b++ {
		filter := make([]float64, bins)
		start, center, end := edgesBin[b], edgesBin[b+1], edgesBin[b+2]
		for i := 0; i < bins; i++ {
			x := float64(i)
			switch {
			case x >= start && x < center && center > start:
				filter[i] = (x - start) / (center - start)
			case x >= center && x < end && end > center:
				filter[i] = (end - x) / (end - center)
			}
		}
		if bw := edgesHz[b+2] - edgesHz[b]; bw > 0 {
			for i := range filter {
				filter[i] *= 2.0 / bw
			}
		}
		filters[b] = filter
	}
	return &melBank{filters: filters}
}

// apply folds power spectra into mel band energies, one row per frame.
func (m *melBank) apply(power [][]float64) [][]float64 {
	out := make([][]float64, len(power))
	for f, spectrum := range power {
		row := make([]float64, len(m.filters))
		for b, filter := range m.filters {
			total := 0.0
			for i, w := range filter {
				if w != 0 {
					total += w * spectrum[i]
				}
			}
			row[b] = total
		}
		out[f] = row
	}
	return out
}

// mfccFrames converts power spectra into cepstral coefficients: mel band
// energies, log compression, then an orthonormal DCT-II keeping the
// lowest coeffs terms.
func mfccFrames(power [][]float64, bank *melBank, coeffs int) [][]float64 {
	mel := bank.apply(power)
	out := make([][]float64, len(mel))
	for f, row := range mel {
		logRow := make([]float64, len(row))
		for i, v := range row {
			logRow[i] = math.Log(math.Max(v, 1e-10))
		}
		out[f] = dctII(logRow, coeffs)
	}
	return out
}

// dctII computes the first coeffs terms of an orthonormal DCT-II.
func dctII(xs []float64, coeffs int) []float64 {
	n := len(xs)
	if coeffs > n {
		coeffs = n
	}
	out := make([]float64, coeffs)
	for k := 0; k < coeffs; k++ {
		total := 0.0
		for i, v := range xs {
			total += v * math.Cos(math.Pi*float64(k)*(2.0*float64(i)+1.0)/(2.0*float64(n)))
		}
		if k == 0 {
			out[k] = total * math.Sqrt(1.0/float64(n))
		} else {
			out[k] = total * math.Sqrt(2.0/float64(n))
		}
	}
	return out
}

// onsetEnvelope reduces magnitude spectra to a spectral flux curve: the
// positive frame-to-frame change summed over bins, normalized to a peak
// of one. The first frame has no predecessor and stays zero.
func onsetEnvelope(magnitude [][]float64) []float64 {
	if len(magnitude) == 0 {
		return nil
	}
	env := make([]float64, len(magnitude))
	for f := 1; f < len(magnitude); f++ {
		flux := 0.0
		prev, cur := magnitude[f-1], magnitude[f]
		for i := range cur {
			if d := cur[i] - prev[i]; d > 0 {
				flux += d
			}
		}
		env[f] = flux
	}
	peak := 0.0
	for _, v := range env {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range env {
			env[i] /= peak
		}
	}
	return env
}

// melEnvelope reduces power spectra to a loudness curve: the per-frame
// mean of the mel band energies in decibels, normalized to zero mean and
// unit variance.
func melEnvelope(power [][]float64, bank *melBank) []float64 {
	mel := bank.apply(power)
	if len(mel) == 0 {
		return nil
	}
	env := make([]float64, len(mel))
	for f, row := range mel {
		total := 0.0
		for _, v := range row {
			total += 10.0 * math.Log10(math.Max(v, 1e-10))
		}
		env[f] = total / float64(len(row))
	}
	mean := meanOf(env)
	variance := 0.0
	for _, v := range env {
		variance += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(variance / float64(len(env)))
	for i := range env {
		env[i] -= mean
		if sd > 1e-10 {
			env[i] /= sd
		}
	}
	return env
}
