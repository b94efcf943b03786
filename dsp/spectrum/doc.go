// Package spectrum estimates the dominant frequency of a sampled series.
//
// It is used as a cross-check next to the least-squares sine fit: the raw
// channel window is detrended, tapered with a selectable window, zero-padded, and
// transformed with algo-fft. The strongest non-DC bin is refined with
// parabolic interpolation, and its power is scaled back to an amplitude
// through the window's coherent gain.
package spectrum
