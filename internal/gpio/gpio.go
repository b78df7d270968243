// Package gpio drives the wrist hardware: a tap button read through the
// Linux GPIO character device and a vibration motor on an output line.
// The fake implementations allow testing without hardware.
package gpio

import (
	"log/slog"
	"time"

	"github.com/sweeney/watchface/internal/xslog"
)

// Button delivers debounced presses of the tap button.
type Button interface {
	// Taps receives the time of each press. It is closed by Close.
	Taps() <-chan time.Time

	// Close releases GPIO resources.
	Close() error
}

// Motor drives the vibration motor.
type Motor interface {
	// Pulse energises the motor for d. It must not block for d.
	Pulse(d time.Duration) error

	// Close turns the motor off and releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinTap   = 17 // tap button to ground, internal pull-up
	PinMotor = 27 // motor driver transistor base
)

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// ShortPulseDuration is the length of one short vibe.
const ShortPulseDuration = 150 * time.Millisecond

// DebouncePeriod suppresses contact bounce on the tap button.
const DebouncePeriod = 30 * time.Millisecond

// tapBuffer bounds queued presses; extra presses are dropped while the
// consumer is busy.
const tapBuffer = 8

// Vibrator adapts a Motor to the face's fire-and-forget short pulse.
type Vibrator struct {
	motor  Motor
	logger *slog.Logger
}

// NewVibrator wraps m. Pulse failures are logged, never returned.
func NewVibrator(m Motor, logger *slog.Logger) *Vibrator {
	return &Vibrator{motor: m, logger: logger}
}

// ShortPulse starts one short vibe.
func (v *Vibrator) ShortPulse() {
	if err := v.motor.Pulse(ShortPulseDuration); err != nil {
		v.logger.Warn("vibration pulse failed", xslog.Error(err))
	}
}
