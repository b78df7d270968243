//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	return nil, errUnsupported
}

// Taps returns nil on non-Linux platforms.
func (b *RealButton) Taps() <-chan time.Time { return nil }

// Close is a no-op on non-Linux platforms.
func (b *RealButton) Close() error { return nil }

// RealMotor is not available on non-Linux platforms.
type RealMotor struct{}

// NewRealMotor returns an error on non-Linux platforms.
func NewRealMotor(chipName string, pin int) (*RealMotor, error) {
	return nil, errUnsupported
}

// Pulse is not implemented on non-Linux platforms.
func (m *RealMotor) Pulse(time.Duration) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (m *RealMotor) Close() error { return nil }
