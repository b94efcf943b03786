package sinefit

import (
	"errors"
	"math"
	"testing"
)

func TestModelAmplitudeIsDerived(t *testing.T) {
	m := Model{MaxValue: 5}
	p := Params{Frequency: 0.01, Phase: 0, VerticalShift: 2}

	if got := m.Amplitude(p); got != 3 {
		t.Fatalf("Amplitude = %v, want 3", got)
	}
	// Crest of the model equals the anchor.
	x := (math.Pi / 2) / p.Frequency
	if got := m.At(x, p); math.Abs(got-5) > 1e-12 {
		t.Fatalf("At(crest) = %v, want 5", got)
	}
}

func TestModelEval(t *testing.T) {
	m := Model{MaxValue: 1}
	p := Params{Frequency: math.Pi / 2}
	got := m.Eval([]float64{0, 1, 2, 3}, p)
	want := []float64{0, 1, 0, -1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Eval[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestModelGradientMatchesFiniteDifference(t *testing.T) {
	m := Model{MaxValue: 3.2}
	p := Params{Frequency: 0.007, Phase: 0.4, VerticalShift: 1.1}
	const x = 137.0
	const h = 1e-7

	row := make([]float64, numParams)
	m.gradient(row, x, p)

	base := p.vector()
	for i := range numParams {
		up, down := base, base
		up[i] += h
		down[i] -= h
		fd := (m.At(x, paramsFromVector(up)) - m.At(x, paramsFromVector(down))) / (2 * h)
		if math.Abs(fd-row[i]) > 1e-4*math.Max(1, math.Abs(fd)) {
			t.Fatalf("d/dp[%d]: analytic %v, finite difference %v", i, row[i], fd)
		}
	}
}

func TestParamsXShift(t *testing.T) {
	shift, err := Params{Frequency: 0.005, Phase: 0.25}.XShift()
	if err != nil {
		t.Fatal(err)
	}
	if shift != 0.25/0.005 {
		t.Fatalf("XShift = %v, want %v", shift, 0.25/0.005)
	}

	if _, err := (Params{Phase: 1}).XShift(); !errors.Is(err, ErrZeroFrequency) {
		t.Fatalf("zero frequency: err = %v, want ErrZeroFrequency", err)
	}
}

func TestParamsFinite(t *testing.T) {
	if !(Params{Frequency: 1, Phase: 2, VerticalShift: 3}).Finite() {
		t.Fatal("finite params reported non-finite")
	}
	if (Params{Phase: math.NaN()}).Finite() {
		t.Fatal("NaN phase reported finite")
	}
}
