package pipeline

import (
	"github.com/cwbudde/algo-acfit/measure/sinefit"
	timestats "github.com/cwbudde/algo-acfit/stats/time"
)

// ChannelResult is the outcome of fitting one channel of one file.
type ChannelResult struct {
	File    string
	Channel string

	// Raw summarizes the raw channel window. It is filled for failed fits too.
	Raw timestats.Summary

	// Err is set when the fit failed. Model, Fit and XShift are then zero
	// and the spectral fields are NaN.
	Err error

	Model  sinefit.Model
	Fit    sinefit.Result
	XShift float64

	// SpectralFrequency is the dominant frequency of the raw window in the
	// same units as the fitted frequency, NaN when it is unavailable.
	SpectralFrequency float64
	// SpectralAmplitude is the amplitude at that frequency, NaN when unavailable.
	SpectralAmplitude float64

	// Retained is true when the pair was added to the figure.
	Retained bool
}

// Stats counts what a run did.
type Stats struct {
	FilesFound     int
	FilesSkipped   int
	FilesValid     int
	FilesFitted    int
	ChannelsFitted int
	ChannelsFailed int
	PairsRetained  int
}

// Outcome is returned by a completed run.
type Outcome struct {
	Stats    Stats
	Channels []ChannelResult
}
