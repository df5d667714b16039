// Package render rasterizes single waveform traces into small square
// thumbnails and keeps track of the temporary PNG files backing them.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/edward-ap/datviewer/internal/waveform"
)

const (
	// DefaultSize is the edge length of a thumbnail in pixels.
	DefaultSize = 75
	// MinSize and MaxSize bound user-selected thumbnail sizes.
	MinSize = 32
	MaxSize = 256
	// LineWidth is the trace stroke width in points.
	LineWidth = 4.0
	// MinDPI and MaxDPI bound the figure resolution derived from sample count.
	MinDPI = 72
	MaxDPI = 1200

	// KindPlot selects the gonum/plot backend.
	KindPlot = "plot"
	// KindChart selects the go-chart backend.
	KindChart = "chart"
)

// ErrUnknownRenderer is returned by NewRenderer for an unsupported kind.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Renderer draws one trace as a 1x1 inch figure at the given dpi: black
// line, no axes, no padding, vertical range fixed to scale.
type Renderer interface {
	Render(trace []float64, scale waveform.Scale, dpi int) (image.Image, error)
}

// NewRenderer returns the backend registered under kind. An empty kind
// selects KindPlot.
func NewRenderer(kind string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPlot:
		return PlotRenderer{}, nil
	case KindChart:
		return ChartRenderer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, kind)
}

// DPIForSamples maps a sample count to a figure resolution: one pixel column
// per sample, clamped to [MinDPI, MaxDPI].
func DPIForSamples(n int) int {
	if n < MinDPI {
		return MinDPI
	}
	if n > MaxDPI {
		return MaxDPI
	}
	return n
}

// ClampSize constrains a thumbnail edge to [MinSize, MaxSize]; zero or
// negative values map to DefaultSize.
func ClampSize(px int) int {
	switch {
	case px <= 0:
		return DefaultSize
	case px < MinSize:
		return MinSize
	case px > MaxSize:
		return MaxSize
	}
	return px
}

// drawRange widens a flat scale so a constant trace lands mid-height.
func drawRange(s waveform.Scale) (float64, float64) {
	if s.Max > s.Min {
		return s.Min, s.Max
	}
	return s.Min - 0.5, s.Max + 0.5
}

// Thumbnail scales img onto a white size x size canvas.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	size = ClampSize(size)
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	if img != nil {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	}
	return dst
}

// WritePNG encodes img into a new file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Rasterizer renders traces into thumbnails stored in a TempStore.
type Rasterizer struct {
	Renderer Renderer
	Store    *TempStore
	Size     int
}

// Rasterize renders trace against scale and returns the path of the new
// thumbnail file. The file is tracked by r.Store.
func (r *Rasterizer) Rasterize(trace []float64, scale waveform.Scale) (string, error) {
	if r.Renderer == nil || r.Store == nil {
		return "", errors.New("render: rasterizer not configured")
	}
	img, err := r.Renderer.Render(trace, scale, DPIForSamples(len(trace)))
	if err != nil {
		return "", err
	}
	return r.Store.Create(Thumbnail(img, r.Size))
}
