package gpio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sweeney/watchface/internal/xslog"
)

func TestFakeButtonPress(t *testing.T) {
	b := NewFakeButton()
	at := time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)

	b.Press(at)

	select {
	case got := <-b.Taps():
		if !got.Equal(at) {
			t.Errorf("tap time: got %v, want %v", got, at)
		}
	default:
		t.Fatal("expected a queued tap")
	}
}

func TestFakeButtonDropsWhenFull(t *testing.T) {
	b := NewFakeButton()
	for i := 0; i < tapBuffer+5; i++ {
		b.Press(time.Time{})
	}
	if got := len(b.Taps()); got != tapBuffer {
		t.Errorf("queued taps: got %d, want %d", got, tapBuffer)
	}
}

func TestFakeButtonClose(t *testing.T) {
	b := NewFakeButton()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	b.Press(time.Time{})

	if _, ok := <-b.Taps(); ok {
		t.Error("tap channel should be closed")
	}
}

func TestVibratorPulses(t *testing.T) {
	m := &FakeMotor{}
	v := NewVibrator(m, xslog.Discard())

	v.ShortPulse()
	v.ShortPulse()

	want := []time.Duration{ShortPulseDuration, ShortPulseDuration}
	if diff := cmp.Diff(want, m.Pulses()); diff != "" {
		t.Errorf("pulses mismatch (-want +got):\n%s", diff)
	}
}

func TestVibratorLogsFailure(t *testing.T) {
	m := &FakeMotor{PulseError: errors.New("line busy")}
	var buf bytes.Buffer
	v := NewVibrator(m, xslog.NewLogger(&buf, xslog.LevelDebug, xslog.FormatText))

	v.ShortPulse()

	if !strings.Contains(buf.String(), "line busy") {
		t.Errorf("expected pulse error in log, got %q", buf.String())
	}
	if len(m.Pulses()) != 0 {
		t.Error("failed pulse should not be recorded")
	}
}
