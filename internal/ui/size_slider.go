package ui

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SizeSlider is a compact horizontal slider for the thumbnail edge length.
// OnChanged fires while dragging; OnChangeEnded fires once the pointer is
// released so expensive work (re-rendering) runs a single time.
type SizeSlider struct {
	widget.BaseWidget
	Min   float64
	Max   float64
	Step  float64
	Value float64

	OnChanged     func(float64)
	OnChangeEnded func(float64)
}

// NewSizeSlider creates a slider constrained to [min, max] in whole steps.
func NewSizeSlider(min, max float64) *SizeSlider {
	s := &SizeSlider{Min: min, Max: max, Step: 1}
	s.ExtendBaseWidget(s)
	return s
}

func (s *SizeSlider) CreateRenderer() fyne.WidgetRenderer {
	r := &sizeSliderRenderer{
		s:     s,
		track: canvas.NewRectangle(theme.ShadowColor()),
		fill:  canvas.NewRectangle(theme.PrimaryColor()),
		thumb: canvas.NewCircle(theme.ForegroundColor()),
	}
	r.objs = []fyne.CanvasObject{r.track, r.fill, r.thumb}
	return r
}

// SetValue moves the thumb and fires OnChanged when the value changes.
func (s *SizeSlider) SetValue(v float64) {
	if s.Max <= s.Min {
		return
	}
	nv := normalizeSliderValue(s.Min, s.Max, s.Step, v)
	if nv == s.Value {
		return
	}
	s.Value = nv
	s.Refresh()
	if s.OnChanged != nil {
		s.OnChanged(nv)
	}
}

func normalizeSliderValue(min, max, step, value float64) float64 {
	if max <= min {
		return min
	}
	v := clampFloat64(value, min, max)
	if step > 0 {
		n := math.Round((v - min) / step)
		v = clampFloat64(min+n*step, min, max)
	}
	return v
}

// Dragged follows the pointer.
func (s *SizeSlider) Dragged(e *fyne.DragEvent) {
	s.updateFromPos(e.Position.X, s.Size().Width)
}

// DragEnd commits the dragged value.
func (s *SizeSlider) DragEnd() { s.commit() }

// Tapped jumps to the tapped position and commits it.
func (s *SizeSlider) Tapped(e *fyne.PointEvent) {
	s.updateFromPos(e.Position.X, s.Size().Width)
	s.commit()
}

func (s *SizeSlider) commit() {
	if s.OnChangeEnded != nil {
		s.OnChangeEnded(s.Value)
	}
}

func (s *SizeSlider) updateFromPos(px, w float32) {
	if w <= 0 || s.Max <= s.Min {
		return
	}
	frac := clampFloat64(float64(px/w), 0, 1)
	s.SetValue(s.Min + frac*(s.Max-s.Min))
}

// MinSize keeps a usable drag target.
func (s *SizeSlider) MinSize() fyne.Size {
	return fyne.NewSize(100, theme.IconInlineSize())
}

type sizeSliderRenderer struct {
	s     *SizeSlider
	track *canvas.Rectangle
	fill  *canvas.Rectangle
	thumb *canvas.Circle
	objs  []fyne.CanvasObject
}

func (r *sizeSliderRenderer) Layout(sz fyne.Size) {
	trackH := float32(4)
	y := (sz.Height - trackH) / 2
	r.track.Move(fyne.NewPos(0, y))
	r.track.Resize(fyne.NewSize(sz.Width, trackH))

	frac := float32(0)
	if span := r.s.Max - r.s.Min; span > 0 {
		frac = float32(clampFloat64((r.s.Value-r.s.Min)/span, 0, 1))
	}
	fillW := sz.Width * frac
	r.fill.Move(fyne.NewPos(0, y))
	r.fill.Resize(fyne.NewSize(fillW, trackH))

	thumbR := theme.IconInlineSize() / 4
	cx := fillW
	if cx < thumbR {
		cx = thumbR
	}
	if cx > sz.Width-thumbR {
		cx = sz.Width - thumbR
	}
	r.thumb.Resize(fyne.NewSize(thumbR*2, thumbR*2))
	r.thumb.Move(fyne.NewPos(cx-thumbR, sz.Height/2-thumbR))
}

func (r *sizeSliderRenderer) MinSize() fyne.Size { return r.s.MinSize() }

func (r *sizeSliderRenderer) Refresh() {
	r.track.FillColor = theme.ShadowColor()
	r.fill.FillColor = theme.PrimaryColor()
	r.thumb.FillColor = theme.ForegroundColor()
	r.Layout(r.s.Size())
	canvas.Refresh(r.track)
	canvas.Refresh(r.fill)
	canvas.Refresh(r.thumb)
}

func (r *sizeSliderRenderer) Destroy() {}

func (r *sizeSliderRenderer) Objects() []fyne.CanvasObject { return r.objs }
