package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-acfit/dsp/signal"
	"github.com/cwbudde/algo-acfit/internal/config"
	"github.com/cwbudde/algo-acfit/internal/dataset"
)

type synthOptions struct {
	out     string
	files   int
	rows    int
	seed    int64
	noise   float64
	minFreq float64
	maxFreq float64
	minAmp  float64
	maxAmp  float64
	offset  float64
}

func newSynthCommand() *cobra.Command {
	opts := synthOptions{}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write synthetic chunk files with noisy sinusoidal channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := writeSynthetic(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files to %s\n", n, opts.out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.out, "out", config.DefaultInputDir, "Output directory")
	f.IntVar(&opts.files, "files", 80, "Number of files")
	f.IntVar(&opts.rows, "rows", 2048, "Rows per file")
	f.Int64Var(&opts.seed, "seed", 1, "Random seed")
	f.Float64Var(&opts.noise, "noise", 0.05, "Uniform noise amplitude")
	f.Float64Var(&opts.minFreq, "min-freq", 0.004, "Minimum tone frequency in radians per row")
	f.Float64Var(&opts.maxFreq, "max-freq", 0.012, "Maximum tone frequency in radians per row")
	f.Float64Var(&opts.minAmp, "min-amp", 0.5, "Minimum tone amplitude")
	f.Float64Var(&opts.maxAmp, "max-amp", 2, "Maximum tone amplitude")
	f.Float64Var(&opts.offset, "max-offset", 1, "Maximum absolute DC offset")

	return cmd
}

func writeSynthetic(opts synthOptions) (int, error) {
	if opts.files <= 0 || opts.rows <= 0 {
		return 0, fmt.Errorf("synth: files and rows must be positive, got %d and %d", opts.files, opts.rows)
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return 0, fmt.Errorf("synth: %w", err)
	}

	gen := signal.NewGenerator(signal.WithSeed(opts.seed))
	index := make([]float64, opts.rows)
	for i := range index {
		index[i] = float64(i)
	}

	for n := 1; n <= opts.files; n++ {
		// File n is drawn from seed+n-1.
		gen.SetSeed(opts.seed + int64(n-1))
		cols := []dataset.Column{{Name: dataset.IndexColumn, Values: index}}
		for _, ch := range dataset.Channels {
			values, err := synthChannel(gen, opts)
			if err != nil {
				return n - 1, err
			}
			cols = append(cols, dataset.Column{Name: ch, Values: values})
		}

		path := filepath.Join(opts.out, fmt.Sprintf("chunk_%04d.csv", n))
		if err := dataset.WriteFile(path, ';', cols...); err != nil {
			return n - 1, err
		}
	}
	return opts.files, nil
}

func synthChannel(gen *signal.Generator, opts synthOptions) ([]float64, error) {
	tone, err := gen.RandomTone(opts.minFreq, opts.maxFreq, opts.minAmp, opts.maxAmp, opts.offset)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	values, err := gen.Sinusoid(tone, opts.rows)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	if opts.noise > 0 {
		noise, err := gen.WhiteNoise(opts.noise, opts.rows)
		if err != nil {
			return nil, fmt.Errorf("synth: %w", err)
		}
		if err := signal.AddInPlace(values, noise); err != nil {
			return nil, fmt.Errorf("synth: %w", err)
		}
	}
	return values, nil
}
