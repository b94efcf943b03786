package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cwbudde/algo-acfit/measure/sinefit"
)

func TestReporterLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Skipped("a.csv")
	r.Fitted("b.csv", "nmac3", sinefit.Params{Frequency: 0.0065, Phase: 0.25})
	r.FitFailed("c.csv", "nmac6", errors.New("boom"))

	want := "Skipping a.csv: missing required columns.\n" +
		"Fitted parameters for b.csv (nmac3): Frequency: 0.0065, Phase: 0.25\n\n" +
		"An error occurred during curve fitting for c.csv (nmac6): boom\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
	if r.Err() != nil {
		t.Errorf("Err = %v", r.Err())
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("closed")
}

func TestReporterKeepsFirstError(t *testing.T) {
	w := &failingWriter{}
	r := NewReporter(w)
	r.Skipped("a.csv")
	r.Skipped("b.csv")

	if r.Err() == nil {
		t.Fatal("expected write error")
	}
	if w.calls != 1 {
		t.Errorf("writer called %d times, want 1", w.calls)
	}
}
