// Package window generates taper windows applied before spectral analysis of
// current channels.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
)

var names = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
}

var (
	// ErrUnknownType is returned by ParseType for an unrecognized name.
	ErrUnknownType = errors.New("window: unknown type")

	errMismatchedLength = errors.New("window: samples and coefficients must have same length")
	errEmpty            = errors.New("window: coefficients must not be empty")
)

func (t Type) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a case-insensitive window name to its Type.
func ParseType(name string) (Type, error) {
	for t, n := range names {
		if strings.EqualFold(name, n) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: rectangular, hann, hamming)", ErrUnknownType, name)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic (DFT-even) form instead of the symmetric one.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns length coefficients of the selected window. Unknown types
// and non-positive lengths yield nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}
	if _, ok := names[t]; !ok {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	denom := float64(length - 1)
	if cfg.periodic {
		denom = float64(length)
	}

	for n := range out {
		c := math.Cos(2 * math.Pi * float64(n) / denom)
		switch t {
		case TypeRectangular:
			out[n] = 1
		case TypeHann:
			out[n] = 0.5 - 0.5*c
		case TypeHamming:
			out[n] = 0.54 - 0.46*c
		}
	}

	return out
}

// Taper multiplies samples in place by coeffs and returns the coherent gain
// of the coefficients, which scales spectral magnitudes back to amplitudes.
func Taper(samples, coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmpty
	}
	if len(samples) != len(coeffs) {
		return 0, fmt.Errorf("%w: %d vs %d", errMismatchedLength, len(samples), len(coeffs))
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return CoherentGain(coeffs)
}

// CoherentGain returns the mean coefficient value.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmpty
	}

	var sum float64
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs)), nil
}
