package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestBusyIndicatorNestedJobs(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	b := NewBusyIndicator(10)
	if b.Busy() {
		t.Fatal("new indicator is busy")
	}
	end1 := b.Begin()
	end2 := b.Begin()
	end1()
	end1()
	if !b.Busy() {
		t.Fatal("indicator went idle while a job is still running")
	}
	end2()
	if b.Busy() {
		t.Fatal("indicator still busy after all jobs ended")
	}
}

func TestBusyIndicatorLateFrameKeepsIdle(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	b := NewBusyIndicator(10)
	end := b.Begin()
	b.mu.Lock()
	stop := b.stop
	b.mu.Unlock()

	b.paint(stop, pulseColor(1))
	if b.dot.FillColor == busyIdle {
		t.Fatal("frame of a running pulse was dropped")
	}
	end()
	b.paint(stop, pulseColor(2))
	if b.dot.FillColor != busyIdle {
		t.Fatalf("late frame repainted the dot: %v", b.dot.FillColor)
	}
}

func TestPulseColorRange(t *testing.T) {
	for _, phase := range []float64{0, 1, 2, 3, 4.7, 6} {
		c := pulseColor(phase)
		if c.A < 89 {
			t.Fatalf("phase %v: alpha %d out of range", phase, c.A)
		}
	}
}
