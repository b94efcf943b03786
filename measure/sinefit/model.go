package sinefit

import (
	"fmt"
	"math"
)

// numParams is the number of free parameters: frequency, phase, vertical shift.
const numParams = 3

// Params are the free parameters of the constrained sine model.
type Params struct {
	Frequency     float64
	Phase         float64
	VerticalShift float64
}

func (p Params) vector() [numParams]float64 {
	return [numParams]float64{p.Frequency, p.Phase, p.VerticalShift}
}

func paramsFromVector(v [numParams]float64) Params {
	return Params{Frequency: v[0], Phase: v[1], VerticalShift: v[2]}
}

// Finite reports whether all parameters are finite.
func (p Params) Finite() bool {
	for _, v := range p.vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// XShift converts the phase into an offset along the x axis, phase/frequency.
// It fails for a zero frequency, where the offset is undefined.
func (p Params) XShift() (float64, error) {
	if p.Frequency == 0 {
		return 0, fmt.Errorf("%w: phase %v", ErrZeroFrequency, p.Phase)
	}
	return p.Phase / p.Frequency, nil
}

// Model is the sine model with its amplitude anchored at MaxValue.
type Model struct {
	MaxValue float64
}

// Amplitude returns the amplitude implied by p: MaxValue - VerticalShift.
func (m Model) Amplitude(p Params) float64 {
	return m.MaxValue - p.VerticalShift
}

// At evaluates the model at x.
func (m Model) At(x float64, p Params) float64 {
	return (m.MaxValue-p.VerticalShift)*math.Sin(p.Frequency*x+p.Phase) + p.VerticalShift
}

// Eval evaluates the model at every x and returns a new slice.
func (m Model) Eval(x []float64, p Params) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = m.At(v, p)
	}
	return out
}

// gradient writes the partial derivatives of the model at x with respect to
// frequency, phase, and vertical shift into row.
func (m Model) gradient(row []float64, x float64, p Params) {
	arg := p.Frequency*x + p.Phase
	sin, cos := math.Sincos(arg)
	amp := m.MaxValue - p.VerticalShift

	row[0] = amp * x * cos
	row[1] = amp * cos
	row[2] = 1 - sin
}
