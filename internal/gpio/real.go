//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton reads the tap button from actual hardware.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	taps chan time.Time

	mu     sync.Mutex
	closed bool
}

// NewRealButton requests pin on chip as a falling-edge input with pull-up
// and debounce, so each press yields one tap.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealButton{chip: chip, taps: make(chan time.Time, tapBuffer)}
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(DebouncePeriod),
		gpiocdev.WithEventHandler(b.handle),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tap pin %d: %w", pin, err)
	}
	b.line = line
	return b, nil
}

func (b *RealButton) handle(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.taps <- time.Now():
	default:
	}
}

// Taps returns the press channel.
func (b *RealButton) Taps() <-chan time.Time {
	return b.taps
}

// Close releases the line and the chip and closes the tap channel.
func (b *RealButton) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.taps)
	b.mu.Unlock()

	var errs []error
	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tap pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RealMotor drives the vibration motor from actual hardware.
type RealMotor struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu     sync.Mutex
	off    *time.Timer
	closed bool
}

// NewRealMotor requests pin on chip as an output, initially low.
func NewRealMotor(chipName string, pin int) (*RealMotor, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motor pin %d: %w", pin, err)
	}
	return &RealMotor{chip: chip, line: line}, nil
}

// Pulse drives the line high and schedules it low after d. A pulse that
// arrives while the motor is running extends it.
func (m *RealMotor) Pulse(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("gpio: motor closed")
	}
	if err := m.line.SetValue(1); err != nil {
		return fmt.Errorf("motor on: %w", err)
	}
	if m.off != nil {
		m.off.Stop()
	}
	m.off = time.AfterFunc(d, m.stop)
	return nil
}

func (m *RealMotor) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	// Best effort; the next pulse retries the line.
	_ = m.line.SetValue(0)
}

// Close turns the motor off, then releases the line and chip. The line is
// reconfigured as a pulled-down input so the motor stays off across reboot.
func (m *RealMotor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.off != nil {
		m.off.Stop()
	}

	var errs []error
	if m.line != nil {
		if err := m.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("motor off: %w", err))
		}
		if err := m.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motor pin: %w", err))
		}
		if err := m.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motor pin: %w", err))
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
