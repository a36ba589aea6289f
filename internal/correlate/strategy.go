package correlate

import (
	"fmt"

	"lockstep/internal/audio"
)

// Strategy estimates the delay of a secondary audio chunk relative to a
// reference chunk.
//
// Implementations are not safe for concurrent use. Build one per worker;
// each instance owns its FFT plans and scratch buffers.
type Strategy interface {
	// Name identifies the strategy in logs and reports.
	Name() string
	// Correlate measures how many samples sec lags ref. Positive delays
	// mean sec plays later than ref.
	Correlate(ref, sec *audio.Chunk) (Result, error)
	// RawCorrelation exposes the centered lag-domain correlation signal
	// for strategies that resolve at sample precision. Frame-precision
	// strategies return an error.
	RawCorrelation(ref, sec *audio.Chunk) ([]float64, error)
}

// Kind names a correlation strategy in configuration.
type Kind string

const (
	KindSCC         Kind = "scc"
	KindGCCPHAT     Kind = "gccphat"
	KindSCOT        Kind = "scot"
	KindWhitened    Kind = "whitened"
	KindMFCCDTW     Kind = "mfccdtw"
	KindOnset       Kind = "onset"
	KindSpectrogram Kind = "spectrogram"
)

// Kinds lists every strategy kind in presentation order.
func Kinds() []Kind {
	return []Kind{KindSCC, KindGCCPHAT, KindSCOT, KindWhitened, KindMFCCDTW, KindOnset, KindSpectrogram}
}

// ParseKind maps a configuration string onto a strategy kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	switch k {
	case KindSCC, KindGCCPHAT, KindSCOT, KindWhitened, KindMFCCDTW, KindOnset, KindSpectrogram:
		return k, nil
	}
	return "", fmt.Errorf("unknown correlation strategy %q", name)
}

// SupportsPeakFit reports whether the kind resolves delays at sample
// precision, which is what makes sub-sample peak refinement meaningful.
func (k Kind) SupportsPeakFit() bool {
	switch k {
	case KindMFCCDTW, KindOnset, KindSpectrogram:
		return false
	}
	return true
}

// New builds a fresh strategy instance of the given kind.
func New(kind Kind) (Strategy, error) {
	switch kind {
	case KindSCC:
		return newSCC(), nil
	case KindGCCPHAT:
		return newGCCPHAT(), nil
	case KindSCOT:
		return newSCOT(), nil
	case KindWhitened:
		return newWhitened(), nil
	case KindMFCCDTW:
		return newMFCCDTW(), nil
	case KindOnset:
		return newOnset(), nil
	case KindSpectrogram:
		return newSpectrogram(), nil
	}
	return nil, fmt.Errorf("unknown correlation strategy %q", string(kind))
}
