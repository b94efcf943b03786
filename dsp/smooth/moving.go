package smooth

import (
	"fmt"
	"math"
)

// Bounds returns the inclusive sample range [lo, hi] averaged for position i
// by a centered window of the given width over a series of length n.
//
// For an even width the window extends one sample further into the past than
// into the future: width 40 covers [i-20, i+19].
func Bounds(i, n, width int) (lo, hi int) {
	ahead := (width - 1) / 2
	behind := width - 1 - ahead

	lo = max(i-behind, 0)
	hi = min(i+ahead, n-1)

	return lo, hi
}

// CenteredMean returns the centered moving average of values with the given
// window width. Windows at the edges shrink to the available samples. NaN
// samples are skipped inside a window; a window without any valid sample
// yields NaN.
func CenteredMean(values []float64, width int) ([]float64, error) {
	if width <= 0 {
		return nil, fmt.Errorf("smooth: window width must be > 0: %d", width)
	}

	n := len(values)
	out := make([]float64, n)

	for i := range out {
		lo, hi := Bounds(i, n, width)

		var sum float64
		count := 0
		for _, v := range values[lo : hi+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}

		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}

	return out, nil
}
