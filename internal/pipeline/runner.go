package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/cwbudde/algo-acfit/dsp/smooth"
	"github.com/cwbudde/algo-acfit/dsp/spectrum"
	"github.com/cwbudde/algo-acfit/internal/dataset"
	"github.com/cwbudde/algo-acfit/internal/figure"
	"github.com/cwbudde/algo-acfit/internal/logging"
	"github.com/cwbudde/algo-acfit/measure/sinefit"
	timestats "github.com/cwbudde/algo-acfit/stats/time"
)

// curveFitter fits the anchored sine model; *sinefit.Fitter implements it.
type curveFitter interface {
	Fit(x, y []float64, model sinefit.Model, guess sinefit.Params) (sinefit.Result, error)
}

// Runner executes the analysis over one input directory.
type Runner struct {
	opts   Options
	fitter curveFitter
	report *Reporter
	logger *slog.Logger
}

// NewRunner returns a Runner that writes diagnostic lines to out and
// operational logs to logger. A nil logger discards logs.
func NewRunner(opts Options, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		opts:   opts,
		fitter: sinefit.NewFitter(opts.Fit),
		report: NewReporter(out),
		logger: logger,
	}
}

// Run processes every candidate file and adds retained pairs to fig.
// Files are handled one at a time; ctx is checked between files.
func (r *Runner) Run(ctx context.Context, fig *figure.Figure) (Outcome, error) {
	var out Outcome

	if r.opts.SampleStride <= 0 {
		return out, fmt.Errorf("pipeline: sample stride must be positive, got %d", r.opts.SampleStride)
	}

	files, err := dataset.Discover(r.opts.InputDir, r.opts.Extension)
	if err != nil {
		return out, fmt.Errorf("pipeline: %w", err)
	}
	out.Stats.FilesFound = len(files)
	r.logger.Info("files discovered", "dir", r.opts.InputDir, "count", len(files))

	counter := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		name := filepath.Base(path)
		tbl, err := dataset.Load(path,
			dataset.WithDelimiter(r.opts.Delimiter),
			dataset.WithRequired(dataset.RequiredColumns...),
		)
		if errors.Is(err, dataset.ErrMissingColumns) {
			out.Stats.FilesSkipped++
			r.report.Skipped(name)
			r.logger.Debug("file skipped", "file", name, "err", err)
			continue
		}
		if err != nil {
			return out, fmt.Errorf("pipeline: %w", err)
		}

		out.Stats.FilesValid++
		counter++
		if counter%r.opts.SampleStride != 0 {
			r.logger.Debug("file not sampled", "file", name, "counter", counter)
			continue
		}

		out.Stats.FilesFitted++
		r.logger.Debug("fitting file", "file", name, "counter", counter, "rows", tbl.Len())

		window := tbl.Window(r.opts.WindowStart, r.opts.WindowRows)
		x, _ := window.Float(dataset.IndexColumn)
		for _, channel := range dataset.Channels {
			y, _ := window.Float(channel)
			res := r.fitChannel(name, channel, x, y)
			if res.Err != nil {
				out.Stats.ChannelsFailed++
				r.report.FitFailed(name, channel, res.Err)
				r.logger.Debug("fit failed",
					"file", name,
					"channel", channel,
					"nans", res.Raw.NaNs,
					"raw_max", res.Raw.Max,
					"err", res.Err,
				)
				out.Channels = append(out.Channels, res)
				continue
			}

			out.Stats.ChannelsFitted++
			r.report.Fitted(name, channel, res.Fit.Params)

			if res.Fit.Params.Frequency < r.opts.FrequencyThreshold {
				fitted := res.Model.Eval(x, res.Fit.Params)
				if err := fig.AddPair(name, channel, x, y, fitted, res.XShift); err != nil {
					return out, fmt.Errorf("pipeline: %w", err)
				}
				res.Retained = true
				out.Stats.PairsRetained++
			}
			fit := res.Fit
			r.logger.Debug("fit done",
				"file", name,
				"channel", channel,
				"frequency", fit.Params.Frequency,
				"stderr_frequency", fit.StdErr.Frequency,
				"stderr_phase", fit.StdErr.Phase,
				"stderr_shift", fit.StdErr.VerticalShift,
				"ssr", fit.SSR,
				"rmse", fit.RMSE,
				"iterations", fit.Iterations,
				"evaluations", fit.Evaluations,
				"spectral_frequency", res.SpectralFrequency,
				"spectral_amplitude", res.SpectralAmplitude,
				"raw_rms", res.Raw.RMS,
				"raw_dc", res.Raw.DC,
				"retained", res.Retained,
			)
			out.Channels = append(out.Channels, res)
		}
	}

	if err := r.report.Err(); err != nil {
		return out, fmt.Errorf("pipeline: writing report: %w", err)
	}

	r.logger.Info("run finished",
		"valid", out.Stats.FilesValid,
		"skipped", out.Stats.FilesSkipped,
		"fitted_files", out.Stats.FilesFitted,
		"retained_pairs", out.Stats.PairsRetained,
	)
	return out, nil
}

// fitChannel smooths y and fits the anchored sine model against x.
func (r *Runner) fitChannel(file, channel string, x, y []float64) ChannelResult {
	res := ChannelResult{
		File:              file,
		Channel:           channel,
		Raw:               timestats.Summarize(y),
		SpectralFrequency: math.NaN(),
		SpectralAmplitude: math.NaN(),
	}

	smoothed, err := smooth.CenteredMean(y, r.opts.SmoothingWindow)
	if err != nil {
		res.Err = err
		return res
	}

	model := sinefit.Model{MaxValue: res.Raw.Max}
	guess := sinefit.Params{
		Frequency:     2 * math.Pi / timestats.Span(x),
		Phase:         0,
		VerticalShift: timestats.Median(smoothed),
	}

	fit, err := r.fitter.Fit(x, smoothed, model, guess)
	if err != nil {
		res.Err = err
		return res
	}
	shift, err := fit.Params.XShift()
	if err != nil {
		res.Err = err
		return res
	}

	res.Model = model
	res.Fit = fit
	res.XShift = shift
	if peak, ok := r.spectralPeak(x, y); ok {
		res.SpectralFrequency = peak.Frequency
		res.SpectralAmplitude = peak.Amplitude
	}
	return res
}

// spectralPeak estimates the dominant component of y assuming x is evenly
// spaced.
func (r *Runner) spectralPeak(x, y []float64) (spectrum.Peak, bool) {
	if len(x) < 2 {
		return spectrum.Peak{}, false
	}
	spacing := timestats.Span(x) / float64(len(x)-1)
	peak, err := spectrum.PeakFrequency(y, spacing, r.opts.SpectralWindow)
	if err != nil {
		r.logger.Debug("spectral cross-check unavailable", "err", err)
		return spectrum.Peak{}, false
	}
	return peak, true
}
