// Command acfit fits sinusoids to the AC current channels of sensor chunk
// files and overlays the fits in one chart.
//
// Usage:
//
//	acfit [flags]
//	acfit synth [flags]
//
// Examples:
//
//	acfit
//	acfit --input data_chunks --output fits.svg --summary
//	acfit --config acfit.yaml --open
//	acfit synth --out data_chunks --files 80 --seed 7
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
