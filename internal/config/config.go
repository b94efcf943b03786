// Package config provides configuration loading for acfit.
// Values come from built-in defaults, an optional YAML file, and
// ACFIT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-acfit/dsp/window"
)

// Defaults for the analysis constants. They carry no documented rationale
// and are preserved as-is.
const (
	DefaultInputDir           = "data_chunks"
	DefaultExtension          = ".csv"
	DefaultDelimiter          = ";"
	DefaultWindowStart        = 0
	DefaultWindowRows         = 1024
	DefaultSmoothingWindow    = 40
	DefaultSampleStride       = 40
	DefaultFrequencyThreshold = 0.01
	DefaultMaxEvaluations     = 800
	DefaultTolerance          = 1.49012e-8
	DefaultSpectralWindow     = "hann"
	DefaultOutputPath         = "acfit.png"
	DefaultWidth              = 1200.0
	DefaultHeight             = 700.0
)

// Config contains all acfit settings.
type Config struct {
	Input   InputConfig   `json:"input" yaml:"input"`
	Fit     FitConfig     `json:"fit" yaml:"fit"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// InputConfig selects and samples the chunk files.
type InputConfig struct {
	// Dir is the directory scanned for chunk files (not recursive).
	Dir string `json:"dir" yaml:"dir"`

	// Extension filters directory entries by name suffix.
	Extension string `json:"extension" yaml:"extension"`

	// Delimiter is the single-character field separator.
	Delimiter string `json:"delimiter" yaml:"delimiter"`

	// WindowStart is the first row of the fitted window.
	WindowStart int `json:"window_start" yaml:"window_start"`

	// WindowRows is the maximum number of rows in the fitted window.
	WindowRows int `json:"window_rows" yaml:"window_rows"`

	// SampleStride fits only every n-th file that passes the column check.
	SampleStride int `json:"sample_stride" yaml:"sample_stride"`
}

// FitConfig configures smoothing, the least-squares solver, and retention.
type FitConfig struct {
	// SmoothingWindow is the centered moving-average width.
	SmoothingWindow int `json:"smoothing_window" yaml:"smoothing_window"`

	// FrequencyThreshold retains only fits with frequency strictly below it.
	FrequencyThreshold float64 `json:"frequency_threshold" yaml:"frequency_threshold"`

	MaxEvaluations int     `json:"max_evaluations" yaml:"max_evaluations"`
	FTol           float64 `json:"ftol" yaml:"ftol"`
	XTol           float64 `json:"xtol" yaml:"xtol"`

	// SpectralWindow tapers the raw window before the spectral cross-check:
	// "rectangular", "hann" (default), or "hamming".
	SpectralWindow string `json:"spectral_window" yaml:"spectral_window"`
}

// OutputConfig controls the rendered chart and the printed summary.
type OutputConfig struct {
	// Path of the chart file; the extension selects the format.
	Path string `json:"path" yaml:"path"`

	// Width and Height are in points.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// Open hands the rendered chart to the platform viewer.
	Open bool `json:"open" yaml:"open"`

	// Summary prints a table of every fit after the run.
	Summary bool `json:"summary" yaml:"summary"`
}

// LoggingConfig configures operational logging on stderr.
type LoggingConfig struct {
	// Level is "debug", "info" (default), "warn", or "error".
	Level string `json:"level" yaml:"level"`

	// Format is "auto" (default), "text", or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:          DefaultInputDir,
			Extension:    DefaultExtension,
			Delimiter:    DefaultDelimiter,
			WindowStart:  DefaultWindowStart,
			WindowRows:   DefaultWindowRows,
			SampleStride: DefaultSampleStride,
		},
		Fit: FitConfig{
			SmoothingWindow:    DefaultSmoothingWindow,
			FrequencyThreshold: DefaultFrequencyThreshold,
			MaxEvaluations:     DefaultMaxEvaluations,
			FTol:               DefaultTolerance,
			XTol:               DefaultTolerance,
			SpectralWindow:     DefaultSpectralWindow,
		},
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// SpectralWindowType returns the parsed spectral window. Validate
// guarantees the name is known.
func (c *Config) SpectralWindowType() window.Type {
	t, err := window.ParseType(c.Fit.SpectralWindow)
	if err != nil {
		return window.TypeHann
	}
	return t
}

// DelimiterRune returns the field separator as a rune. Validate guarantees
// it is a single character.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return r
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Dir == "" {
		errs = append(errs, errors.New("input.dir must not be empty"))
	}
	if c.Input.Extension == "" {
		errs = append(errs, errors.New("input.extension must not be empty"))
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter))
	}
	if c.Input.WindowStart < 0 {
		errs = append(errs, fmt.Errorf("input.window_start must be >= 0, got %d", c.Input.WindowStart))
	}
	if c.Input.WindowRows <= 0 {
		errs = append(errs, fmt.Errorf("input.window_rows must be > 0, got %d", c.Input.WindowRows))
	}
	if c.Input.SampleStride <= 0 {
		errs = append(errs, fmt.Errorf("input.sample_stride must be > 0, got %d", c.Input.SampleStride))
	}
	if c.Fit.SmoothingWindow <= 0 {
		errs = append(errs, fmt.Errorf("fit.smoothing_window must be > 0, got %d", c.Fit.SmoothingWindow))
	}
	if c.Fit.MaxEvaluations <= 0 {
		errs = append(errs, fmt.Errorf("fit.max_evaluations must be > 0, got %d", c.Fit.MaxEvaluations))
	}
	if c.Fit.FTol <= 0 || c.Fit.XTol <= 0 {
		errs = append(errs, fmt.Errorf("fit.ftol and fit.xtol must be > 0, got %g/%g", c.Fit.FTol, c.Fit.XTol))
	}
	if _, err := window.ParseType(c.Fit.SpectralWindow); err != nil {
		errs = append(errs, fmt.Errorf("fit.spectral_window: %w", err))
	}
	if c.Output.Path == "" {
		errs = append(errs, errors.New("output.path must not be empty"))
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("output size must be positive, got %gx%g", c.Output.Width, c.Output.Height))
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"": true, "auto": true, "text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid log format: %s (valid: auto, text, json)", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies ACFIT_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ACFIT_INPUT_DIR"); v != "" {
		cfg.Input.Dir = v
	}
	if v := os.Getenv("ACFIT_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("ACFIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ACFIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ACFIT_SAMPLE_STRIDE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACFIT_SAMPLE_STRIDE: %w", err)
		}
		cfg.Input.SampleStride = n
	}
	return nil
}
