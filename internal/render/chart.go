package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/edward-ap/datviewer/internal/waveform"
)

// ChartRenderer draws traces with go-chart.
type ChartRenderer struct{}

// Render implements Renderer.
func (ChartRenderer) Render(trace []float64, scale waveform.Scale, dpi int) (image.Image, error) {
	if len(trace) == 0 {
		return nil, errors.New("render: empty trace")
	}
	xs := make([]float64, len(trace))
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := trace
	// go-chart needs a non-zero x range
	if len(trace) == 1 {
		xs = []float64{0, 1}
		ys = []float64{trace[0], trace[0]}
	}
	lo, hi := drawRange(scale)
	hidden := chart.Style{Hidden: true}
	ch := chart.Chart{
		Width:      dpi,
		Height:     dpi,
		DPI:        float64(dpi),
		Background: chart.Style{Padding: chart.BoxZero, FillColor: drawing.ColorWhite},
		Canvas:     chart.Style{FillColor: drawing.ColorWhite},
		XAxis:      chart.XAxis{Style: hidden},
		YAxis: chart.YAxis{
			Style: hidden,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxisSecondary: chart.YAxis{Style: hidden},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					StrokeWidth: LineWidth * float64(dpi) / 72,
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}
