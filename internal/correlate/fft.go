package correlate

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fftCache hands out complex FFT plans keyed by transform length. Plans
// carry scratch state and must not run concurrently, so the cache lock is
// held for the whole transform. Strategies are built one per worker,
// which keeps the lock uncontended in practice.
type fftCache struct {
	mu    sync.Mutex
	plans map[int]*fourier.CmplxFFT
}

func newFFTCache() *fftCache {
	return &fftCache{plans: make(map[int]*fourier.CmplxFFT)}
}

func (c *fftCache) plan(n int) *fourier.CmplxFFT {
	p, ok := c.plans[n]
	if !ok {
		p = fourier.NewCmplxFFT(n)
		c.plans[n] = p
	}
	return p
}

// forward computes the unnormalized discrete Fourier transform of seq in
// place.
func (c *fftCache) forward(seq []complex128) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan(len(seq)).Coefficients(seq, seq)
}

// inverse computes the unnormalized inverse transform of coeff in place.
// Scaling by the transform length is left to the caller.
func (c *fftCache) inverse(coeff []complex128) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan(len(coeff)).Sequence(coeff, coeff)
}

// nextPowerOfTwo returns the smallest power of two that is not below n.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
