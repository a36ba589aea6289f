package audio

import (
	"fmt"
	"math"
)

// FilterType selects the frequency response of the preprocessor.
type FilterType int

const (
	FilterLowPass FilterType = iota
	FilterHighPass
	FilterBandPass
)

// String returns the lowercase method name for the filter type.
func (t FilterType) String() string {
	switch t {
	case FilterLowPass:
		return "lowpass"
	case FilterHighPass:
		return "highpass"
	case FilterBandPass:
		return "bandpass"
	default:
		return fmt.Sprintf("filter(%d)", int(t))
	}
}

// FilterSpec describes optional conditioning applied to both chunks of a
// correlation pair. LowCut is the high-pass edge, HighCut the low-pass
// edge; a plain low-pass uses HighCut, a plain high-pass uses LowCut.
type FilterSpec struct {
	Type    FilterType
	LowCut  float64
	HighCut float64
	Order   int
}

// DialogueBandPass returns the spec used to isolate speech before
// correlating mixes with differing effects channels.
func DialogueBandPass() *FilterSpec {
	return &FilterSpec{Type: FilterBandPass, LowCut: 300, HighCut: 3400, Order: 5}
}

// LowPass returns a low-pass spec with the given cutoff.
func LowPass(cutoff float64, order int) *FilterSpec {
	return &FilterSpec{Type: FilterLowPass, HighCut: cutoff, Order: order}
}

// HighPass returns a high-pass spec with the given cutoff.
func HighPass(cutoff float64, order int) *FilterSpec {
	return &FilterSpec{Type: FilterHighPass, LowCut: cutoff, Order: order}
}

// NewFilterSpec maps a configured method name onto a spec. The method
// "none" yields nil: no conditioning. Cutoffs are carried verbatim.
func NewFilterSpec(method string, lowCut, highCut float64, order int) (*FilterSpec, error) {
	switch method {
	case "none", "":
		return nil, nil
	case "lowpass":
		return LowPass(highCut, order), nil
	case "highpass":
		return HighPass(lowCut, order), nil
	case "bandpass":
		return &FilterSpec{Type: FilterBandPass, LowCut: lowCut, HighCut: highCut, Order: order}, nil
	default:
		return nil, fmt.Errorf("filter: unknown method %q", method)
	}
}

// Apply runs the spec over samples at sampleRate and returns a slice of
// identical length. Coefficient construction failure returns the input
// unfiltered: correlation still works on raw samples, so filtering never
// aborts an analysis. Empty input returns empty output.
func (s *FilterSpec) Apply(samples []float64, sampleRate int) []float64 {
	if s == nil || len(samples) == 0 {
		return samples
	}

	switch s.Type {
	case FilterLowPass:
		sections, err := butterworthSections(lowPassSection, s.HighCut, sampleRate, s.Order)
		if err != nil {
			return samples
		}
		return runCascade(sections, samples)
	case FilterHighPass:
		sections, err := butterworthSections(highPassSection, s.LowCut, sampleRate, s.Order)
		if err != nil {
			return samples
		}
		return runCascade(sections, samples)
	case FilterBandPass:
		// High-pass then low-pass, each at half the requested order
		// (rounded up) to approximate the combined rolloff.
		halfOrder := (s.Order + 1) / 2
		high, err := butterworthSections(highPassSection, s.LowCut, sampleRate, halfOrder)
		if err != nil {
			return samples
		}
		low, err := butterworthSections(lowPassSection, s.HighCut, sampleRate, halfOrder)
		if err != nil {
			return samples
		}
		return runCascade(low, runCascade(high, samples))
	default:
		return samples
	}
}

// biquad is one second-order IIR section with normalized coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

type sectionDesign func(cutoff float64, sampleRate int, q float64) (biquad, error)

// butterworthSections designs ceil(order/2) cascaded second-order
// sections whose Q values place the poles on the Butterworth circle.
func butterworthSections(design sectionDesign, cutoff float64, sampleRate, order int) ([]biquad, error) {
	if order <= 0 {
		return nil, fmt.Errorf("filter: order must be positive, got %d", order)
	}
	count := (order + 1) / 2
	sections := make([]biquad, 0, count)
	effective := 2 * count
	for k := 0; k < count; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*effective)
		q := 1.0 / (2.0 * math.Cos(theta))
		section, err := design(cutoff, sampleRate, q)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func sectionParams(cutoff float64, sampleRate int, q float64) (cosw, alpha float64, err error) {
	nyquist := float64(sampleRate) / 2.0
	if sampleRate <= 0 || cutoff <= 0 || cutoff >= nyquist || math.IsNaN(cutoff) {
		return 0, 0, fmt.Errorf("filter: cutoff %.1f Hz unusable at %d Hz", cutoff, sampleRate)
	}
	omega := 2.0 * math.Pi * cutoff / float64(sampleRate)
	sinw := math.Sin(omega)
	cosw = math.Cos(omega)
	alpha = sinw / (2.0 * q)
	if alpha <= 0 || math.IsNaN(alpha) {
		return 0, 0, fmt.Errorf("filter: degenerate section at %.1f Hz", cutoff)
	}
	return cosw, alpha, nil
}

func lowPassSection(cutoff float64, sampleRate int, q float64) (biquad, error) {
	cosw, alpha, err := sectionParams(cutoff, sampleRate, q)
	if err != nil {
		return biquad{}, err
	}
	a0 := 1.0 + alpha
	return biquad{
		b0: (1.0 - cosw) / 2.0 / a0,
		b1: (1.0 - cosw) / a0,
		b2: (1.0 - cosw) / 2.0 / a0,
		a1: -2.0 * cosw / a0,
		a2: (1.0 - alpha) / a0,
	}, nil
}

func highPassSection(cutoff float64, sampleRate int, q float64) (biquad, error) {
	cosw, alpha, err := sectionParams(cutoff, sampleRate, q)
	if err != nil {
		return biquad{}, err
	}
	a0 := 1.0 + alpha
	return biquad{
		b0: (1.0 + cosw) / 2.0 / a0,
		b1: -(1.0 + cosw) / a0,
		b2: (1.0 + cosw) / 2.0 / a0,
		a1: -2.0 * cosw / a0,
		a2: (1.0 - alpha) / a0,
	}, nil
}

func runCascade(sections []biquad, samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	for _, s := range sections {
		var x1, x2, y1, y2 float64
		for i, x := range out {
			y := s.b0*x + s.b1*x1 + s.b2*x2 - s.a1*y1 - s.a2*y2
			x2, x1 = x1, x
			y2, y1 = y1, y
			out[i] = y
		}
	}
	return out
}
