package ui

import (
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
)

var busyIdle = color.NRGBA{0x80, 0x80, 0x80, 0x60}

// BusyIndicator is a small dot that pulses while traces are being rendered.
type BusyIndicator struct {
	wrap   *fyne.Container
	dot    *canvas.Circle
	active atomic.Int32

	mu   sync.Mutex
	stop chan struct{}
}

// NewBusyIndicator builds an indicator of the given diameter.
func NewBusyIndicator(diameter float32) *BusyIndicator {
	c := canvas.NewCircle(busyIdle)
	c.StrokeColor = color.NRGBA{}
	inner := container.New(layout.NewGridWrapLayout(fyne.NewSize(diameter, diameter)), c)
	return &BusyIndicator{wrap: container.NewCenter(inner), dot: c}
}

// CanvasObject returns the object to place in a layout.
func (b *BusyIndicator) CanvasObject() fyne.CanvasObject { return b.wrap }

// Busy reports whether at least one job is in flight.
func (b *BusyIndicator) Busy() bool { return b.active.Load() > 0 }

// Begin marks the start of a job and returns the matching end func.
// Overlapping jobs keep the pulse going until the last one ends.
func (b *BusyIndicator) Begin() (end func()) {
	if b.active.Add(1) == 1 {
		b.mu.Lock()
		b.stop = make(chan struct{})
		go b.pulse(b.stop)
		b.mu.Unlock()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if b.active.Add(-1) != 0 {
				return
			}
			b.mu.Lock()
			if b.stop != nil {
				close(b.stop)
				b.stop = nil
			}
			b.mu.Unlock()
			CallOnMain(func() {
				b.dot.FillColor = busyIdle
				b.dot.Refresh()
			})
		})
	}
}

func (b *BusyIndicator) pulse(stop <-chan struct{}) {
	t := time.NewTicker(80 * time.Millisecond)
	defer t.Stop()
	phase := 0.0
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		phase += 0.35
		col := pulseColor(phase)
		CallOnMain(func() { b.paint(stop, col) })
	}
}

// paint shows col unless the pulse that produced it has been stopped; a
// late frame must not overwrite the idle color.
func (b *BusyIndicator) paint(stop <-chan struct{}, col color.NRGBA) {
	select {
	case <-stop:
		return
	default:
	}
	b.dot.FillColor = col
	b.dot.Refresh()
}

// pulseColor fades a blue dot between 35% and 100% opacity.
func pulseColor(phase float64) color.NRGBA {
	a := 0.35 + 0.65*(0.5+0.5*math.Sin(phase))
	return color.NRGBA{R: 0x29, G: 0x6f, B: 0xf6, A: uint8(a*255 + 0.5)}
}
