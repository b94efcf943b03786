package testutil

import (
	"math"
	"math/rand"
)

// Index returns the row index series 0, 1, ..., n-1 as float64.
func Index(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Sinusoid evaluates amplitude*sin(freq*x + phase) + shift at every x.
func Sinusoid(x []float64, amplitude, freq, phase, shift float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = amplitude*math.Sin(freq*v+phase) + shift
	}
	return out
}

// PeakAlignedPhase returns the phase that puts the crest of sin(freq*x+phase)
// exactly on sample peakAt, so the sampled maximum equals amplitude+shift.
func PeakAlignedPhase(freq float64, peakAt int) float64 {
	return math.Pi/2 - freq*float64(peakAt)
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
