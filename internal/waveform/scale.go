package waveform

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultGain leaves the shared scale untouched.
	DefaultGain = 1.0
	// DefaultGainFactor is applied by one increase or decrease step.
	DefaultGainFactor = 2.0
)

// ErrBadGain is returned for a gain that is not strictly positive.
var ErrBadGain = errors.New("waveform: gain must be positive")

// Scale is the vertical window every channel thumbnail is drawn against.
type Scale struct {
	Min float64
	Max float64
}

// Span returns Max-Min.
func (s Scale) Span() float64 { return s.Max - s.Min }

// SharedScale returns the global minimum and maximum across all traces,
// each divided by gain. Dividing the bounds rather than the data narrows the
// window, which makes small excursions visible without touching samples.
func SharedScale(traces [][]float64, gain float64) (Scale, error) {
	if !(gain > 0) {
		return Scale{}, fmt.Errorf("%w: %v", ErrBadGain, gain)
	}
	var (
		lo, hi float64
		seen   bool
	)
	for _, tr := range traces {
		if len(tr) == 0 {
			continue
		}
		tmin, tmax := floats.Min(tr), floats.Max(tr)
		if !seen || tmin < lo {
			lo = tmin
		}
		if !seen || tmax > hi {
			hi = tmax
		}
		seen = true
	}
	if !seen {
		return Scale{}, ErrEmpty
	}
	return Scale{Min: lo / gain, Max: hi / gain}, nil
}

// Gain is the display zoom shared by all thumbnails.
type Gain struct {
	Value  float64
	Factor float64
}

// NewGain returns a gain at DefaultGain stepping by factor. Non-positive
// factors fall back to DefaultGainFactor.
func NewGain(factor float64) Gain {
	if !(factor > 0) {
		factor = DefaultGainFactor
	}
	return Gain{Value: DefaultGain, Factor: factor}
}

// Increase multiplies the gain by its factor.
func (g *Gain) Increase() { g.Value *= g.Factor }

// Decrease divides the gain by its factor.
func (g *Gain) Decrease() { g.Value /= g.Factor }

// Reset restores DefaultGain.
func (g *Gain) Reset() { g.Value = DefaultGain }
