package pipeline

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-acfit/measure/sinefit"
)

// Reporter writes the user-facing diagnostic lines of a run. The first
// write error is kept and later writes are dropped.
type Reporter struct {
	w   io.Writer
	err error
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Skipped reports a file without the required columns.
func (r *Reporter) Skipped(file string) {
	r.printf("Skipping %s: missing required columns.\n", file)
}

// Fitted reports a successful fit, followed by an empty line.
func (r *Reporter) Fitted(file, channel string, p sinefit.Params) {
	r.printf("Fitted parameters for %s (%s): Frequency: %v, Phase: %v\n\n", file, channel, p.Frequency, p.Phase)
}

// FitFailed reports a failed fit.
func (r *Reporter) FitFailed(file, channel string, err error) {
	r.printf("An error occurred during curve fitting for %s (%s): %v\n", file, channel, err)
}

// Err returns the first write error.
func (r *Reporter) Err() error { return r.err }

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}
