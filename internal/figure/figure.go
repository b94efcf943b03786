// Package figure accumulates raw and fitted current traces into one
// overlay chart and renders it with gonum/plot.
package figure

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"

	"golang.org/x/image/colornames"

	"github.com/cwbudde/algo-acfit/internal/dataset"
)

// Chart text and layout.
const (
	Title       = "AC Current Fitting - Overlapped Graphs with X Shift"
	XLabel      = "Index (idx)"
	YLabel      = "AC Current Values"
	LegendTitle = "Legend"
	Margin      = 40
)

// Trace styles.
const (
	RawWidth       = 2
	RawOpacity     = 0.7
	FittedWidth    = 1
	FittedOpacity  = 0.9
	dashLength     = 6
	dashGapLength  = 3
	defaultOpacity = 1
)

// ErrLengthMismatch is returned by AddPair when the series differ in length.
var ErrLengthMismatch = errors.New("figure: x, raw and fitted must have equal length")

// Role distinguishes the two traces of a pair.
type Role int

const (
	RoleRaw Role = iota
	RoleFitted
)

func (r Role) String() string {
	switch r {
	case RoleRaw:
		return "raw"
	case RoleFitted:
		return "fitted"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Trace is one named line of the chart. X already includes the shift.
type Trace struct {
	Name    string
	File    string
	Channel string
	Role    Role
	X       []float64
	Y       []float64
	Shift   float64
	Width   float64
	Dashed  bool
	Color   color.NRGBA
}

// Figure is the accumulating chart value. The zero value is not usable;
// call New.
type Figure struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	ShowLegend  bool
	Grid        bool
	Margin      float64

	traces []Trace
}

// New returns an empty figure with the fixed chart layout.
func New() *Figure {
	return &Figure{
		Title:       Title,
		XLabel:      XLabel,
		YLabel:      YLabel,
		LegendTitle: LegendTitle,
		ShowLegend:  true,
		Grid:        true,
		Margin:      Margin,
	}
}

// Traces returns the accumulated traces in insertion order.
func (f *Figure) Traces() []Trace { return slices.Clone(f.traces) }

// Len returns the number of traces.
func (f *Figure) Len() int { return len(f.traces) }

// AddPair appends the raw and fitted traces of one channel of one file.
// Both are plotted against x + shift.
func (f *Figure) AddPair(file, channel string, x, raw, fitted []float64, shift float64) error {
	if len(x) != len(raw) || len(x) != len(fitted) {
		return fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(x), len(raw), len(fitted))
	}

	shifted := make([]float64, len(x))
	for i, v := range x {
		shifted[i] = v + shift
	}
	base := ChannelColor(channel)

	f.traces = append(f.traces,
		Trace{
			Name:    fmt.Sprintf("%s - %s", channel, file),
			File:    file,
			Channel: channel,
			Role:    RoleRaw,
			X:       shifted,
			Y:       slices.Clone(raw),
			Shift:   shift,
			Width:   RawWidth,
			Color:   withOpacity(base, RawOpacity),
		},
		Trace{
			Name:    fmt.Sprintf("Fitted Sine (%s) - %s", channel, file),
			File:    file,
			Channel: channel,
			Role:    RoleFitted,
			X:       slices.Clone(shifted),
			Y:       slices.Clone(fitted),
			Shift:   shift,
			Width:   FittedWidth,
			Dashed:  true,
			Color:   withOpacity(base, FittedOpacity),
		},
	)
	return nil
}

// ChannelColor returns the opaque base color of a channel. Unknown
// channels are drawn black.
func ChannelColor(channel string) color.NRGBA {
	var c color.RGBA
	switch channel {
	case dataset.Nmac3:
		c = colornames.Blue
	case dataset.Nmac4:
		c = colornames.Yellow
	case dataset.Nmac5:
		c = colornames.Green
	case dataset.Nmac6:
		c = colornames.Red
	default:
		c = colornames.Black
	}
	return withOpacity(c, defaultOpacity)
}

func withOpacity(c color.Color, opacity float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(opacity * 255))
	return n
}
