package gpio

import (
	"sync"
	"time"
)

// FakeButton is a test double whose presses are injected with Press.
type FakeButton struct {
	taps   chan time.Time
	mu     sync.Mutex
	Closed bool
}

// NewFakeButton creates a FakeButton with a buffered tap channel.
func NewFakeButton() *FakeButton {
	return &FakeButton{taps: make(chan time.Time, tapBuffer)}
}

// Press injects one tap at t. Presses after Close are dropped.
func (f *FakeButton) Press(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Closed {
		return
	}
	select {
	case f.taps <- t:
	default:
	}
}

func (f *FakeButton) Taps() <-chan time.Time { return f.taps }

// Close closes the tap channel.
func (f *FakeButton) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Closed {
		f.Closed = true
		close(f.taps)
	}
	return nil
}

// FakeMotor records requested pulses.
type FakeMotor struct {
	mu     sync.Mutex
	pulses []time.Duration

	// PulseError, if set, is returned by Pulse.
	PulseError error
	Closed     bool
}

func (f *FakeMotor) Pulse(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PulseError != nil {
		return f.PulseError
	}
	f.pulses = append(f.pulses, d)
	return nil
}

// Pulses returns a copy of the recorded pulse durations.
func (f *FakeMotor) Pulses() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.pulses...)
}

func (f *FakeMotor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
