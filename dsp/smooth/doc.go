// Package smooth provides moving-average smoothing for sampled series.
//
// [CenteredMean] reproduces a centered rolling mean whose edge windows shrink
// instead of being padded, so the output has the same length as the input and
// every position is averaged over at least one valid sample.
package smooth
