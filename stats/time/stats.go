package time

import (
	"math"
	"sort"
)

// Summary holds the statistics of one channel window that feed the sine fit
// and its diagnostics.
type Summary struct {
	Length int
	Min    float64
	Max    float64
	Range  float64 // max - min
	DC     float64 // mean
	Median float64
	RMS    float64
	NaNs   int
}

// Summarize computes a [Summary] for signal. Min, Max, DC, Median, and RMS
// follow NaN-propagating semantics: a single NaN sample makes them NaN.
func Summarize(signal []float64) Summary {
	n := len(signal)
	nans := 0
	for _, x := range signal {
		if math.IsNaN(x) {
			nans++
		}
	}

	minVal := Min(signal)
	maxVal := Max(signal)

	return Summary{
		Length: n,
		Min:    minVal,
		Max:    maxVal,
		Range:  maxVal - minVal,
		DC:     DC(signal),
		Median: Median(signal),
		RMS:    RMS(signal),
		NaNs:   nans,
	}
}

// Max returns the largest sample. It returns NaN for an empty signal or when
// any sample is NaN.
func Max(signal []float64) float64 {
	if len(signal) == 0 {
		return math.NaN()
	}

	maxVal := signal[0]
	for _, x := range signal {
		if math.IsNaN(x) {
			return x
		}
		if x > maxVal {
			maxVal = x
		}
	}

	return maxVal
}

// Min returns the smallest sample. It returns NaN for an empty signal or when
// any sample is NaN.
func Min(signal []float64) float64 {
	if len(signal) == 0 {
		return math.NaN()
	}

	minVal := signal[0]
	for _, x := range signal {
		if math.IsNaN(x) {
			return x
		}
		if x < minVal {
			minVal = x
		}
	}

	return minVal
}

// Median returns the middle value of signal. For an even length it returns
// the mean of the two middle values. The input is not modified.
func Median(signal []float64) float64 {
	n := len(signal)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, signal)
	for _, x := range sorted {
		if math.IsNaN(x) {
			return x
		}
	}
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// RMS returns the root-mean-square of the signal, or NaN when it is empty.
func RMS(signal []float64) float64 {
	return math.Sqrt(compensatedMean(signal, func(x float64) float64 { return x * x }))
}

// DC returns the mean of the signal, or NaN when it is empty.
func DC(signal []float64) float64 {
	return compensatedMean(signal, func(x float64) float64 { return x })
}

// compensatedMean averages f over signal with Kahan summation, which keeps
// long current windows stable.
func compensatedMean(signal []float64, f func(float64) float64) float64 {
	if len(signal) == 0 {
		return math.NaN()
	}

	var sum, carry float64
	for _, x := range signal {
		term := f(x) - carry
		next := sum + term
		carry = (next - sum) - term
		sum = next
	}

	return sum / float64(len(signal))
}

// Span returns max - min over signal, or NaN when it is empty or holds NaN.
func Span(signal []float64) float64 {
	return Max(signal) - Min(signal)
}
