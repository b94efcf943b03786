package pipeline

import (
	"github.com/cwbudde/algo-acfit/dsp/window"
	"github.com/cwbudde/algo-acfit/internal/config"
	"github.com/cwbudde/algo-acfit/measure/sinefit"
)

// Options control a Run.
type Options struct {
	InputDir           string
	Extension          string
	Delimiter          rune
	WindowStart        int
	WindowRows         int
	SmoothingWindow    int
	SampleStride       int
	FrequencyThreshold float64
	SpectralWindow     window.Type
	Fit                sinefit.Config
}

// OptionsFromConfig maps a validated configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InputDir:           cfg.Input.Dir,
		Extension:          cfg.Input.Extension,
		Delimiter:          cfg.DelimiterRune(),
		WindowStart:        cfg.Input.WindowStart,
		WindowRows:         cfg.Input.WindowRows,
		SmoothingWindow:    cfg.Fit.SmoothingWindow,
		SampleStride:       cfg.Input.SampleStride,
		FrequencyThreshold: cfg.Fit.FrequencyThreshold,
		SpectralWindow:     cfg.SpectralWindowType(),
		Fit: sinefit.Config{
			MaxEvaluations: cfg.Fit.MaxEvaluations,
			FTol:           cfg.Fit.FTol,
			XTol:           cfg.Fit.XTol,
		},
	}
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}
