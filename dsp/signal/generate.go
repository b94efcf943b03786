package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Tone describes an indexed sinusoid amplitude*sin(Frequency*n + Phase) + Offset.
// Frequency is in radians per sample.
type Tone struct {
	Amplitude float64
	Frequency float64
	Phase     float64
	Offset    float64
}

// At evaluates the tone at sample position n.
func (t Tone) At(n float64) float64 {
	return t.Amplitude*math.Sin(t.Frequency*n+t.Phase) + t.Offset
}

// Generator creates deterministic signals from a seeded random source.
type Generator struct {
	seed int64
	rng  *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.rng = rand.New(rand.NewSource(g.seed))
	return g
}

// SetSeed resets the random source.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
	g.rng = rand.New(rand.NewSource(seed))
}

// Sinusoid renders samples values of t at positions 0..samples-1.
func (g *Generator) Sinusoid(t Tone, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sinusoid samples must be > 0: %d", samples)
	}
	if math.IsNaN(t.Frequency) || math.IsInf(t.Frequency, 0) {
		return nil, fmt.Errorf("sinusoid frequency must be finite: %f", t.Frequency)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = t.At(float64(i))
	}
	return out, nil
}

// WhiteNoise draws uniform noise in [-amplitude, amplitude]. Successive calls
// continue the same random sequence.
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = (g.rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Uniform draws one value in [lo, hi).
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// RandomTone draws a tone with frequency in [minFreq, maxFreq), phase in
// [-pi, pi), amplitude in [minAmp, maxAmp), and offset in [-maxOffset, maxOffset).
func (g *Generator) RandomTone(minFreq, maxFreq, minAmp, maxAmp, maxOffset float64) (Tone, error) {
	if minFreq > maxFreq {
		return Tone{}, fmt.Errorf("tone frequency range inverted: [%f, %f]", minFreq, maxFreq)
	}
	if minAmp > maxAmp {
		return Tone{}, fmt.Errorf("tone amplitude range inverted: [%f, %f]", minAmp, maxAmp)
	}
	return Tone{
		Amplitude: g.Uniform(minAmp, maxAmp),
		Frequency: g.Uniform(minFreq, maxFreq),
		Phase:     g.Uniform(-math.Pi, math.Pi),
		Offset:    g.Uniform(-maxOffset, maxOffset),
	}, nil
}

// AddInPlace adds src to dst sample by sample.
func AddInPlace(dst, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("add length mismatch: %d vs %d", len(dst), len(src))
	}
	for i := range dst {
		dst[i] += src[i]
	}
	return nil
}
