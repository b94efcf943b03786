package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-acfit/internal/dataset"
	"github.com/cwbudde/algo-acfit/internal/figure"
	"github.com/cwbudde/algo-acfit/internal/logging"
	"github.com/cwbudde/algo-acfit/internal/testutil"
	"github.com/cwbudde/algo-acfit/measure/sinefit"
)

type tone struct {
	amplitude, freq, phase, shift float64
}

// writeChunk writes a chunk file whose channels are the given tones sampled
// at row_num 0..rows-1.
func writeChunk(t *testing.T, dir, name string, rows int, tones map[string]tone) {
	t.Helper()
	x := testutil.Index(rows)
	cols := []dataset.Column{{Name: dataset.IndexColumn, Values: x}}
	for _, ch := range dataset.Channels {
		tn, ok := tones[ch]
		if !ok {
			continue
		}
		cols = append(cols, dataset.Column{Name: ch, Values: testutil.Sinusoid(x, tn.amplitude, tn.freq, tn.phase, tn.shift)})
	}
	if err := dataset.WriteFile(filepath.Join(dir, name), ';', cols...); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func allChannels(tn tone) map[string]tone {
	return map[string]tone{
		dataset.Nmac3: tn,
		dataset.Nmac4: tn,
		dataset.Nmac5: tn,
		dataset.Nmac6: tn,
	}
}

// exactOptions disables smoothing and sampling so noise-free inputs are
// recovered exactly.
func exactOptions(dir string) Options {
	opts := DefaultOptions()
	opts.InputDir = dir
	opts.SmoothingWindow = 1
	opts.SampleStride = 1
	return opts
}

func run(t *testing.T, opts Options) (Outcome, *figure.Figure, string) {
	t.Helper()
	var out bytes.Buffer
	fig := figure.New()
	res, err := NewRunner(opts, &out, nil).Run(context.Background(), fig)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, fig, out.String()
}

func TestRunRecoversNoiseFreeSine(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	want := tone{amplitude: 1.5, freq: f0, phase: testutil.PeakAlignedPhase(f0, 200), shift: 2}
	writeChunk(t, dir, "chunk.csv", 1024, allChannels(want))

	res, fig, out := run(t, exactOptions(dir))

	if res.Stats.ChannelsFitted != 4 || res.Stats.PairsRetained != 4 {
		t.Fatalf("stats = %+v, want 4 fitted and retained", res.Stats)
	}
	if fig.Len() != 8 {
		t.Fatalf("figure has %d traces, want 8", fig.Len())
	}

	for _, cr := range res.Channels {
		p := cr.Fit.Params
		testutil.RequireNear(t, cr.Channel+" frequency", p.Frequency, want.freq, 1e-3)
		testutil.RequireNear(t, cr.Channel+" phase", p.Phase, want.phase, 1e-3)
		testutil.RequireNear(t, cr.Channel+" shift", p.VerticalShift, want.shift, 1e-3)
		if !strings.Contains(out, fmt.Sprintf("Fitted parameters for chunk.csv (%s): Frequency: %v, Phase: %v\n\n", cr.Channel, p.Frequency, p.Phase)) {
			t.Errorf("missing fitted line for %s in output:\n%s", cr.Channel, out)
		}
		if math.IsNaN(cr.SpectralFrequency) || math.IsNaN(cr.SpectralAmplitude) {
			t.Errorf("%s: spectral cross-check unavailable", cr.Channel)
		}
		if cr.Raw.Length != 1024 || cr.Raw.NaNs != 0 {
			t.Errorf("%s: raw summary = %+v", cr.Channel, cr.Raw)
		}
		testutil.RequireNear(t, cr.Channel+" raw max", cr.Raw.Max, want.amplitude+want.shift, 1e-12)
	}
}

func TestRunPairSharesShiftAndMatchesModel(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	writeChunk(t, dir, "chunk.csv", 1024, allChannels(tone{1, f0, testutil.PeakAlignedPhase(f0, 300), 0.5}))

	res, fig, _ := run(t, exactOptions(dir))
	traces := fig.Traces()
	x := testutil.Index(1024)

	for i, cr := range res.Channels {
		rawTr, fitTr := traces[2*i], traces[2*i+1]
		shift := cr.Fit.Params.Phase / cr.Fit.Params.Frequency
		if cr.XShift != shift || rawTr.Shift != shift || fitTr.Shift != shift {
			t.Errorf("%s: shifts %v/%v/%v, want %v", cr.Channel, cr.XShift, rawTr.Shift, fitTr.Shift, shift)
		}
		if !slices.Equal(rawTr.X, fitTr.X) {
			t.Errorf("%s: raw and fitted traces use different x", cr.Channel)
		}
		if rawTr.X[0] != x[0]+shift {
			t.Errorf("%s: first x = %v, want %v", cr.Channel, rawTr.X[0], x[0]+shift)
		}
		if want := cr.Model.Eval(x, cr.Fit.Params); !slices.Equal(fitTr.Y, want) {
			t.Errorf("%s: fitted trace differs from model evaluation", cr.Channel)
		}
	}
}

func TestRunHighFrequencyFitsButIsNotPlotted(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.065
	writeChunk(t, dir, "fast.csv", 100, allChannels(tone{1, f0, testutil.PeakAlignedPhase(f0, 24), 0}))

	res, fig, out := run(t, exactOptions(dir))

	if fig.Len() != 0 {
		t.Errorf("figure has %d traces, want 0", fig.Len())
	}
	if res.Stats.ChannelsFitted != 4 || res.Stats.PairsRetained != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if got := strings.Count(out, "Fitted parameters for fast.csv"); got != 4 {
		t.Errorf("got %d fitted lines, want 4:\n%s", got, out)
	}
	for _, cr := range res.Channels {
		if cr.Retained {
			t.Errorf("%s retained with frequency %v", cr.Channel, cr.Fit.Params.Frequency)
		}
		testutil.RequireNear(t, cr.Channel+" frequency", cr.Fit.Params.Frequency, f0, 1e-3)
	}
}

func TestRunSkipsFilesMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, "partial.csv", 50, map[string]tone{
		dataset.Nmac3: {1, 0.005, 0, 0},
		dataset.Nmac4: {1, 0.005, 0, 0},
		dataset.Nmac5: {1, 0.005, 0, 0},
	})

	res, fig, out := run(t, exactOptions(dir))

	if out != "Skipping partial.csv: missing required columns.\n" {
		t.Errorf("output = %q", out)
	}
	if fig.Len() != 0 || res.Stats.FilesSkipped != 1 || res.Stats.FilesValid != 0 {
		t.Errorf("traces=%d stats=%+v", fig.Len(), res.Stats)
	}
}

func TestRunSamplesEveryStrideValidFile(t *testing.T) {
	dir := t.TempDir()
	valid := allChannels(tone{1, 0.2, 0, 0})
	for i := 1; i <= 80; i++ {
		writeChunk(t, dir, fmt.Sprintf("chunk_%03d.csv", i), 8, valid)
	}
	// Invalid files interleaved in enumeration order do not advance the counter.
	writeChunk(t, dir, "chunk_039x.csv", 8, map[string]tone{dataset.Nmac3: {1, 0.2, 0, 0}})
	writeChunk(t, dir, "chunk_000.csv", 8, map[string]tone{dataset.Nmac3: {1, 0.2, 0, 0}})

	opts := exactOptions(dir)
	opts.SampleStride = 40
	res, _, out := run(t, opts)

	if res.Stats.FilesValid != 80 || res.Stats.FilesSkipped != 2 || res.Stats.FilesFitted != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}

	var fitted []string
	for _, cr := range res.Channels {
		if !slices.Contains(fitted, cr.File) {
			fitted = append(fitted, cr.File)
		}
	}
	if want := []string{"chunk_040.csv", "chunk_080.csv"}; !slices.Equal(fitted, want) {
		t.Errorf("fitted files = %v, want %v", fitted, want)
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" || strings.HasPrefix(line, "Skipping") {
			continue
		}
		if !strings.Contains(line, "chunk_040.csv") && !strings.Contains(line, "chunk_080.csv") {
			t.Errorf("unexpected output line %q", line)
		}
	}
}

func TestRunIsolatesChannelFailure(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	x := testutil.Index(1024)
	good := testutil.Sinusoid(x, 1, f0, testutil.PeakAlignedPhase(f0, 200), 0)
	bad := slices.Clone(good)
	bad[10] = math.NaN()

	err := dataset.WriteFile(filepath.Join(dir, "chunk.csv"), ';',
		dataset.Column{Name: dataset.IndexColumn, Values: x},
		dataset.Column{Name: dataset.Nmac3, Values: good},
		dataset.Column{Name: dataset.Nmac4, Values: bad},
		dataset.Column{Name: dataset.Nmac5, Values: good},
		dataset.Column{Name: dataset.Nmac6, Values: good},
	)
	if err != nil {
		t.Fatal(err)
	}

	res, fig, out := run(t, exactOptions(dir))

	wantErr := fmt.Sprintf("An error occurred during curve fitting for chunk.csv (nmac4): %v\n", sinefit.ErrNonFinite)
	if !strings.Contains(out, wantErr) {
		t.Errorf("output missing %q:\n%s", wantErr, out)
	}
	if res.Stats.ChannelsFailed != 1 || res.Stats.ChannelsFitted != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if fig.Len() != 6 {
		t.Errorf("figure has %d traces, want 6", fig.Len())
	}
	for _, cr := range res.Channels {
		if cr.Channel == dataset.Nmac4 {
			if !errors.Is(cr.Err, sinefit.ErrNonFinite) {
				t.Errorf("nmac4 error = %v", cr.Err)
			}
			if cr.Raw.NaNs != 1 || !math.IsNaN(cr.SpectralFrequency) {
				t.Errorf("nmac4 raw NaNs = %d, spectral = %v", cr.Raw.NaNs, cr.SpectralFrequency)
			}
		}
	}
	if idx3, idx5 := strings.Index(out, "(nmac3)"), strings.Index(out, "(nmac5)"); idx3 < 0 || idx5 < idx3 {
		t.Errorf("channels reported out of order:\n%s", out)
	}
}

func TestRunWindowLimitsRows(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	writeChunk(t, dir, "long.csv", 1500, allChannels(tone{1, f0, testutil.PeakAlignedPhase(f0, 200), 0}))

	_, fig, _ := run(t, exactOptions(dir))
	for _, tr := range fig.Traces() {
		if len(tr.X) != 1024 {
			t.Fatalf("trace %q has %d points, want 1024", tr.Name, len(tr.X))
		}
	}
}

func TestRunEmptyWindowIsFitFailure(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, "short.csv", 2, allChannels(tone{1, 0.1, 0, 0}))

	res, _, out := run(t, exactOptions(dir))
	if res.Stats.ChannelsFailed != 4 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if got := strings.Count(out, "An error occurred during curve fitting for short.csv"); got != 4 {
		t.Errorf("got %d error lines, want 4:\n%s", got, out)
	}
}

func TestRunDefaultSmoothing(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	writeChunk(t, dir, "chunk.csv", 1024, allChannels(tone{1, f0, testutil.PeakAlignedPhase(f0, 200), 0}))

	opts := DefaultOptions()
	opts.InputDir = dir
	opts.SampleStride = 1
	res, _, _ := run(t, opts)

	for _, cr := range res.Channels {
		if cr.Err != nil {
			t.Fatalf("%s: %v", cr.Channel, cr.Err)
		}
		testutil.RequireNear(t, cr.Channel+" frequency", cr.Fit.Params.Frequency, f0, 1e-4)
	}
}

func TestRunFatalErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		opts := exactOptions(filepath.Join(t.TempDir(), "absent"))
		_, err := NewRunner(opts, &bytes.Buffer{}, nil).Run(context.Background(), figure.New())
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("error = %v, want ErrNotExist", err)
		}
	})

	t.Run("malformed number", func(t *testing.T) {
		dir := t.TempDir()
		content := "row_num;nmac3;nmac4;nmac5;nmac6\n0;1;2;3;4\n1;oops;2;3;4\n"
		if err := os.WriteFile(filepath.Join(dir, "bad.csv"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := NewRunner(exactOptions(dir), &bytes.Buffer{}, nil).Run(context.Background(), figure.New())
		var pe *dataset.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want *dataset.ParseError", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		dir := t.TempDir()
		writeChunk(t, dir, "a.csv", 10, allChannels(tone{1, 0.1, 0, 0}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewRunner(exactOptions(dir), &bytes.Buffer{}, nil).Run(ctx, figure.New())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("bad stride", func(t *testing.T) {
		opts := exactOptions(t.TempDir())
		opts.SampleStride = 0
		if _, err := NewRunner(opts, &bytes.Buffer{}, nil).Run(context.Background(), figure.New()); err == nil {
			t.Fatal("expected error for zero stride")
		}
	})
}

func TestRunEmptyDirectory(t *testing.T) {
	res, fig, out := run(t, exactOptions(t.TempDir()))
	if out != "" || fig.Len() != 0 || res.Stats.FilesFound != 0 {
		t.Errorf("output=%q traces=%d stats=%+v", out, fig.Len(), res.Stats)
	}
}

// fixedFitter returns the same parameters for every fit.
type fixedFitter struct {
	params sinefit.Params
}

func (f fixedFitter) Fit(x, y []float64, model sinefit.Model, guess sinefit.Params) (sinefit.Result, error) {
	return sinefit.Result{Params: f.params}, nil
}

func TestRunZeroFrequencyIsFitFailure(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, "flat.csv", 64, allChannels(tone{1, 0.05, 0, 0}))

	var out bytes.Buffer
	fig := figure.New()
	runner := NewRunner(exactOptions(dir), &out, nil)
	runner.fitter = fixedFitter{params: sinefit.Params{Frequency: 0, Phase: 0.5, VerticalShift: 1}}

	res, err := runner.Run(context.Background(), fig)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if strings.Contains(got, "Fitted parameters") {
		t.Errorf("zero frequency printed a success line:\n%s", got)
	}
	for _, ch := range dataset.Channels {
		prefix := fmt.Sprintf("An error occurred during curve fitting for flat.csv (%s): ", ch)
		if !strings.Contains(got, prefix) {
			t.Errorf("missing error line for %s:\n%s", ch, got)
		}
	}
	if fig.Len() != 0 || res.Stats.ChannelsFailed != 4 || res.Stats.ChannelsFitted != 0 {
		t.Errorf("traces=%d stats=%+v", fig.Len(), res.Stats)
	}
	for _, cr := range res.Channels {
		if !errors.Is(cr.Err, sinefit.ErrZeroFrequency) {
			t.Errorf("%s error = %v, want ErrZeroFrequency", cr.Channel, cr.Err)
		}
	}
}

func TestRunLogsFitDiagnostics(t *testing.T) {
	dir := t.TempDir()
	const f0 = 0.0065
	writeChunk(t, dir, "chunk.csv", 1024, map[string]tone{
		dataset.Nmac3: {1, f0, testutil.PeakAlignedPhase(f0, 200), 0.5},
		dataset.Nmac4: {1, f0, testutil.PeakAlignedPhase(f0, 200), 0.5},
		dataset.Nmac5: {1, f0, testutil.PeakAlignedPhase(f0, 200), 0.5},
		dataset.Nmac6: {1, f0, testutil.PeakAlignedPhase(f0, 200), 0.5},
	})

	var logs bytes.Buffer
	logger := logging.NewLogger("debug", "json", &logs)
	if _, err := NewRunner(exactOptions(dir), &bytes.Buffer{}, logger).Run(context.Background(), figure.New()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var done map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if rec["msg"] == "fit done" {
			done = rec
			break
		}
	}
	if done == nil {
		t.Fatalf("no fit done record in logs:\n%s", logs.String())
	}
	for _, key := range []string{
		"stderr_frequency", "stderr_phase", "stderr_shift", "ssr", "evaluations",
		"iterations", "raw_rms", "raw_dc", "spectral_amplitude",
	} {
		if _, ok := done[key]; !ok {
			t.Errorf("fit done record lacks %q: %v", key, done)
		}
	}
	if ev, _ := done["evaluations"].(float64); ev < 1 {
		t.Errorf("evaluations = %v, want >= 1", done["evaluations"])
	}
}
