package figure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plot converts the figure into a gonum plot.
func (f *Figure) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.BackgroundColor = color.White

	if f.Grid {
		p.Add(plotter.NewGrid())
	}

	// gonum legends have no heading; a thumbnail-less first entry stands in.
	if f.ShowLegend && f.LegendTitle != "" {
		p.Legend.Add(f.LegendTitle)
	}
	p.Legend.Top = true
	p.Legend.Padding = vg.Points(5)

	for _, tr := range f.traces {
		pts := make(plotter.XYs, len(tr.X))
		for i := range tr.X {
			pts[i].X = tr.X[i]
			pts[i].Y = tr.Y[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("figure: trace %q: %w", tr.Name, err)
		}
		line.Color = tr.Color
		line.Width = vg.Points(tr.Width)
		if tr.Dashed {
			line.Dashes = []vg.Length{vg.Points(dashLength), vg.Points(dashGapLength)}
		}
		p.Add(line)
		if f.ShowLegend {
			p.Legend.Add(tr.Name, line)
		}
	}

	return p, nil
}

// Render draws the figure into the file at path. The extension selects the
// format: .png, .svg, .jpg, .jpeg, .pdf, .tif or .tiff. width and height
// are in points.
func Render(f *Figure, path string, width, height float64) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("figure: %s: missing file extension", path)
	}

	p, err := f.Plot()
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(vg.Points(width), vg.Points(height), format)
	if err != nil {
		return fmt.Errorf("figure: %s: %w", path, err)
	}

	dc := draw.New(c)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	m := vg.Points(f.Margin)
	p.Draw(draw.Crop(dc, m, -m, m, -m))

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("figure: %w", err)
	}
	if _, err := c.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("figure: writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("figure: closing %s: %w", path, err)
	}
	return nil
}
