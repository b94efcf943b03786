// Package pipeline runs the batch current-fitting analysis.
//
// A Runner lists the chunk files of one directory, loads each file, skips
// files without the required columns, and fits every sampled file. For
// each channel the raw window is smoothed with a centered moving average
// and a sine whose amplitude is anchored at the window maximum is fitted
// to the smoothed series. Pairs with a fitted frequency below the
// threshold are added to the figure with their x-shift phase/frequency.
//
// Diagnostic lines go to the Reporter's writer. Schema violations and fit
// failures are reported and skipped; every other error stops the run.
package pipeline
