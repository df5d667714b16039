package viewerapp

import (
	"bytes"
	"image/png"
	"math"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/waveform"
)

const (
	iconSize    = 64
	iconSamples = 96
)

var (
	iconOnce sync.Once
	appIcon  fyne.Resource
)

// AppIcon returns the window icon: a sine trace drawn by the default
// renderer. It is nil if drawing fails.
func AppIcon() fyne.Resource {
	iconOnce.Do(func() {
		data, err := iconPNG()
		if err == nil {
			appIcon = fyne.NewStaticResource("datviewer.png", data)
		}
	})
	return appIcon
}

func iconPNG() ([]byte, error) {
	trace := make([]float64, iconSamples)
	for i := range trace {
		trace[i] = math.Sin(2 * math.Pi * float64(i) / float64(iconSamples-1) * 2)
	}
	img, err := render.PlotRenderer{}.Render(trace, waveform.Scale{Min: -1.2, Max: 1.2}, render.DPIForSamples(iconSamples))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Thumbnail(img, iconSize)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
