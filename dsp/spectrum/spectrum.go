package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-acfit/dsp/window"
)

// MinSamples is the shortest series PeakFrequency accepts.
const MinSamples = 4

// oversample is the zero-padding factor applied on top of the next power of two.
const oversample = 4

var (
	// ErrTooShort is returned for series shorter than MinSamples.
	ErrTooShort = errors.New("spectrum: series too short")
	// ErrNonFinite is returned when the series holds NaN or Inf samples.
	ErrNonFinite = errors.New("spectrum: series contains non-finite samples")
	// ErrBadSpacing is returned for a non-positive or non-finite sample spacing.
	ErrBadSpacing = errors.New("spectrum: sample spacing must be finite and > 0")
)

// Peak describes the dominant spectral component of a series.
type Peak struct {
	// Frequency is in radians per unit of the x axis.
	Frequency float64
	// Bin is the interpolated bin position in the padded spectrum.
	Bin float64
	// Power is the squared magnitude of the peak bin.
	Power float64
	// Amplitude is the sinusoid amplitude implied by Power, corrected for
	// the window's coherent gain.
	Amplitude float64
	FFTSize   int
}

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(out, re, im)
	putScratch(buf)
	return out
}

// PeakFrequency returns the dominant non-DC frequency of samples taken at a
// uniform spacing along the x axis. The mean-removed samples are tapered
// with the periodic form of win before the transform.
func PeakFrequency(samples []float64, spacing float64, win window.Type) (Peak, error) {
	n := len(samples)
	if n < MinSamples {
		return Peak{}, fmt.Errorf("%w: %d samples", ErrTooShort, n)
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return Peak{}, fmt.Errorf("%w: %v", ErrBadSpacing, spacing)
	}

	var mean float64
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Peak{}, ErrNonFinite
		}
		mean += v
	}
	mean /= float64(n)

	detrended := make([]float64, n)
	for i, v := range samples {
		detrended[i] = v - mean
	}
	gain, err := window.Taper(detrended, window.Generate(win, n, window.WithPeriodic()))
	if err != nil {
		return Peak{}, fmt.Errorf("spectrum: %s window: %w", win, err)
	}

	fftSize := nextPowerOf2(n) * oversample

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Peak{}, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range detrended {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Peak{}, fmt.Errorf("spectrum: forward FFT: %w", err)
	}

	power := Power(out[:fftSize/2+1])

	k := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[k] {
			k = i
		}
	}

	bin := float64(k) + parabolicOffset(power, k)

	return Peak{
		Frequency: 2 * math.Pi * bin / (float64(fftSize) * spacing),
		Bin:       bin,
		Power:     power[k],
		Amplitude: 2 * math.Sqrt(power[k]) / (float64(n) * gain),
		FFTSize:   fftSize,
	}, nil
}

// parabolicOffset fits a parabola through bins k-1, k, k+1 and returns the
// vertex offset from k in [-0.5, 0.5].
func parabolicOffset(power []float64, k int) float64 {
	if k <= 0 || k >= len(power)-1 {
		return 0
	}

	a, b, c := power[k-1], power[k], power[k+1]
	denom := a - 2*b + c
	if denom == 0 {
		return 0
	}

	offset := 0.5 * (a - c) / denom
	return math.Max(-0.5, math.Min(0.5, offset))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
