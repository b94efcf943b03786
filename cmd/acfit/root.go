package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-acfit/internal/config"
	"github.com/cwbudde/algo-acfit/internal/figure"
	"github.com/cwbudde/algo-acfit/internal/logging"
	"github.com/cwbudde/algo-acfit/internal/pipeline"
)

type analysisFlags struct {
	configPath string
	input      string
	output     string
	windowRows int
	stride     int
	smoothing  int
	threshold  float64
	spectral   string
	width      float64
	height     float64
	open       bool
	summary    bool
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	var flags analysisFlags

	rootCmd := &cobra.Command{
		Use:           "acfit",
		Short:         "Fit sinusoids to AC current chunk files and plot the overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, &flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: auto, text, json")

	f := rootCmd.Flags()
	f.StringVarP(&flags.input, "input", "i", config.DefaultInputDir, "Directory with chunk files")
	f.StringVarP(&flags.output, "output", "o", config.DefaultOutputPath, "Chart file (.png, .svg, .jpg, .pdf)")
	f.IntVar(&flags.windowRows, "window-rows", config.DefaultWindowRows, "Rows fitted per file")
	f.IntVar(&flags.stride, "stride", config.DefaultSampleStride, "Fit every n-th valid file")
	f.IntVar(&flags.smoothing, "smoothing", config.DefaultSmoothingWindow, "Centered moving-average width")
	f.Float64Var(&flags.threshold, "threshold", config.DefaultFrequencyThreshold, "Plot only fits with frequency below this value")
	f.StringVar(&flags.spectral, "spectral-window", config.DefaultSpectralWindow, "Window for the spectral cross-check: rectangular, hann, hamming")
	f.Float64Var(&flags.width, "width", config.DefaultWidth, "Chart width in points")
	f.Float64Var(&flags.height, "height", config.DefaultHeight, "Chart height in points")
	f.BoolVar(&flags.open, "open", false, "Open the chart in the default viewer")
	f.BoolVar(&flags.summary, "summary", false, "Print a table of all fits")

	rootCmd.AddCommand(newSynthCommand())

	return rootCmd
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(fs *pflag.FlagSet, flags *analysisFlags, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Dir = flags.input
		case "output":
			cfg.Output.Path = flags.output
		case "window-rows":
			cfg.Input.WindowRows = flags.windowRows
		case "stride":
			cfg.Input.SampleStride = flags.stride
		case "smoothing":
			cfg.Fit.SmoothingWindow = flags.smoothing
		case "threshold":
			cfg.Fit.FrequencyThreshold = flags.threshold
		case "spectral-window":
			cfg.Fit.SpectralWindow = flags.spectral
		case "width":
			cfg.Output.Width = flags.width
		case "height":
			cfg.Output.Height = flags.height
		case "open":
			cfg.Output.Open = flags.open
		case "summary":
			cfg.Output.Summary = flags.summary
		case "log-level":
			cfg.Logging.Level = flags.logLevel
		case "log-format":
			cfg.Logging.Format = flags.logFormat
		}
	})
}

func loadConfig(cmd *cobra.Command, flags *analysisFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd.Flags(), flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runAnalysis(cmd *cobra.Command, flags *analysisFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()).
		With("run_id", uuid.NewString())
	logger.Info("run started", "input_dir", cfg.Input.Dir, "stride", cfg.Input.SampleStride, "output", cfg.Output.Path)

	fig := figure.New()
	runner := pipeline.NewRunner(pipeline.OptionsFromConfig(cfg), cmd.OutOrStdout(), logger)
	outcome, err := runner.Run(cmd.Context(), fig)
	if err != nil {
		return err
	}

	if cfg.Output.Summary {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(outcome.Channels))
	}

	if err := figure.Render(fig, cfg.Output.Path, cfg.Output.Width, cfg.Output.Height); err != nil {
		return err
	}
	logger.Info("chart written", "path", cfg.Output.Path, "traces", fig.Len())

	if cfg.Output.Open {
		if err := figure.Open(cfg.Output.Path); err != nil {
			logger.Warn("could not open chart", "path", cfg.Output.Path, "err", err)
		}
	}
	return nil
}
