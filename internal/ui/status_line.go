package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
)

// StatusLine drives a label showing a resting text plus short-lived
// notices. Its methods are safe to call from any goroutine.
type StatusLine struct {
	lbl  *widget.Label
	bind binding.String

	mu    sync.Mutex
	idle  string
	timer *time.Timer
}

// NewStatusLine binds lbl and shows idle.
func NewStatusLine(lbl *widget.Label, idle string) *StatusLine {
	b := binding.NewString()
	lbl.Bind(b)
	_ = b.Set(idle)
	return &StatusLine{lbl: lbl, bind: b, idle: idle}
}

// SetIdle replaces the resting text and shows it right away.
func (s *StatusLine) SetIdle(text string) {
	s.mu.Lock()
	s.idle = text
	s.stopLocked()
	s.mu.Unlock()
	_ = s.bind.Set(text)
}

// Flash shows text for d, then restores the resting text.
func (s *StatusLine) Flash(text string, d time.Duration) {
	s.mu.Lock()
	s.stopLocked()
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		idle := s.idle
		s.timer = nil
		s.mu.Unlock()
		_ = s.bind.Set(idle)
	})
	s.mu.Unlock()
	_ = s.bind.Set(text)
}

// Text returns what is currently shown.
func (s *StatusLine) Text() string {
	v, _ := s.bind.Get()
	return v
}

// Close cancels a pending restore.
func (s *StatusLine) Close() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

func (s *StatusLine) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
