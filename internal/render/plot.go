package render

import (
	"errors"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/edward-ap/datviewer/internal/waveform"
)

// PlotRenderer draws traces with gonum/plot.
type PlotRenderer struct{}

// Render implements Renderer.
func (PlotRenderer) Render(trace []float64, scale waveform.Scale, dpi int) (image.Image, error) {
	if len(trace) == 0 {
		return nil, errors.New("render: empty trace")
	}
	pts := make(plotter.XYs, len(trace))
	for i, v := range trace {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.Black
	line.LineStyle.Width = vg.Points(LineWidth)

	p := plot.New()
	p.Add(line)
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.X.Min, p.X.Max = 0, float64(len(trace)-1)
	if p.X.Max <= p.X.Min {
		p.X.Min, p.X.Max = -0.5, 0.5
	}
	p.Y.Min, p.Y.Max = drawRange(scale)

	c := vgimg.NewWith(vgimg.UseWH(vg.Inch, vg.Inch), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	return c.Image(), nil
}
