package main

import (
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cwbudde/algo-acfit/internal/pipeline"
)

// summaryColumn is one column of the fit summary. Numeric columns are
// right-aligned.
type summaryColumn struct {
	header  string
	numeric bool
	value   func(r pipeline.ChannelResult) string
}

var summaryColumns = []summaryColumn{
	{"File", false, func(r pipeline.ChannelResult) string { return r.File }},
	{"Channel", false, func(r pipeline.ChannelResult) string { return r.Channel }},
	{"NaNs", true, func(r pipeline.ChannelResult) string { return strconv.Itoa(r.Raw.NaNs) }},
	{"Raw RMS", true, func(r pipeline.ChannelResult) string { return formatFloat(r.Raw.RMS) }},
	{"Frequency", true, fitted(func(r pipeline.ChannelResult) float64 { return r.Fit.Params.Frequency })},
	{"±Freq", true, fitted(func(r pipeline.ChannelResult) float64 { return r.Fit.StdErr.Frequency })},
	{"Phase", true, fitted(func(r pipeline.ChannelResult) float64 { return r.Fit.Params.Phase })},
	{"Shift", true, fitted(func(r pipeline.ChannelResult) float64 { return r.Fit.Params.VerticalShift })},
	{"X-Shift", true, fitted(func(r pipeline.ChannelResult) float64 { return r.XShift })},
	{"Spectral", true, fitted(func(r pipeline.ChannelResult) float64 { return r.SpectralFrequency })},
	{"SSR", true, fitted(func(r pipeline.ChannelResult) float64 { return r.Fit.SSR })},
	{"Evals", true, func(r pipeline.ChannelResult) string {
		if r.Err != nil {
			return ""
		}
		return strconv.Itoa(r.Fit.Evaluations)
	}},
	{"Plotted", false, plotted},
}

// fitted renders a fit-derived value, blank for failed fits.
func fitted(get func(pipeline.ChannelResult) float64) func(pipeline.ChannelResult) string {
	return func(r pipeline.ChannelResult) string {
		if r.Err != nil {
			return ""
		}
		return formatFloat(get(r))
	}
}

func plotted(r pipeline.ChannelResult) string {
	switch {
	case r.Err != nil:
		return "error: " + r.Err.Error()
	case r.Retained:
		return "yes"
	default:
		return "no"
	}
}

func renderSummary(results []pipeline.ChannelResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(summaryColumns))
	configs := make([]table.ColumnConfig, len(summaryColumns))
	for i, col := range summaryColumns {
		header[i] = col.header
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, r := range results {
		row := make(table.Row, len(summaryColumns))
		for i, col := range summaryColumns {
			row[i] = col.value(r)
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 0):
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
