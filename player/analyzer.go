package player

import (
	"fmt"
	"math"
	"math/bits"
	"sync"
)

// analyzerFFTSize matches the 256-sample analysis window the player UI was
// built around; it yields fftSize/2 frequency bins.
const analyzerFFTSize = 256

// SampleSource is an optional tap on the audio flowing through the media
// primitive. Samples returns up to n of the most recent PCM samples in
// [-1, 1], newest last, or nil when nothing is flowing.
type SampleSource interface {
	Samples(n int) []float64
}

// Analyzer exposes a live frequency-magnitude snapshot of the current
// audio for visualization. It is constructed lazily, at most once per
// session, and never rewired; when no tap is available visualization is
// simply absent and playback is unaffected.
type Analyzer struct {
	mu     sync.Mutex
	source SampleSource
	window []float64 // Hann coefficients, computed once
	re     []float64
	im     []float64
}

// NewAnalyzer wires the analyzer to a sample tap. A nil source is an
// error for the caller to swallow, not to surface.
func NewAnalyzer(source SampleSource) (*Analyzer, error) {
	if source == nil {
		return nil, fmt.Errorf("analyzer: no sample tap available")
	}
	window := make([]float64, analyzerFFTSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(analyzerFFTSize-1)))
	}
	return &Analyzer{
		source: source,
		window: window,
		re:     make([]float64, analyzerFFTSize),
		im:     make([]float64, analyzerFFTSize),
	}, nil
}

// Frequencies returns the magnitude per frequency bin for the most recent
// sample window, or nil when no audio is flowing. Callers poll this on a
// display-refresh cadence while visualization is visible.
func (a *Analyzer) Frequencies() []float64 {
	samples := a.source.Samples(analyzerFFTSize)
	if len(samples) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Right-align the window so the newest samples dominate.
	offset := analyzerFFTSize - len(samples)
	if offset < 0 {
		samples = samples[len(samples)-analyzerFFTSize:]
		offset = 0
	}
	for i := 0; i < offset; i++ {
		a.re[i] = 0
		a.im[i] = 0
	}
	for i, s := range samples {
		a.re[offset+i] = s * a.window[offset+i]
		a.im[offset+i] = 0
	}

	fft(a.re, a.im)

	bins := make([]float64, analyzerFFTSize/2)
	for i := range bins {
		bins[i] = math.Hypot(a.re[i], a.im[i]) / float64(analyzerFFTSize)
	}
	return bins
}

// fft runs an in-place iterative radix-2 Cooley-Tukey transform.
// len(re) == len(im) and must be a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n < 2 {
		return
	}
	shift := 64 - uint(bits.TrailingZeros(uint(n)))

	// Bit-reversal permutation.
	for i := 1; i < n; i++ {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if j > i {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				angle := step * float64(k)
				wr, wi := math.Cos(angle), math.Sin(angle)
				i, j := start+k, start+k+half
				tr := wr*re[j] - wi*im[j]
				ti := wr*im[j] + wi*re[j]
				re[j] = re[i] - tr
				im[j] = im[i] - ti
				re[i] += tr
				im[i] += ti
			}
		}
	}
}
