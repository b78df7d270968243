package face

import (
	"context"
	"testing"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

func TestRunDispatchesAndRedraws(t *testing.T) {
	tf := newTestFace(t, DefaultConfig(), FakeSources{Connected: true, Battery: logic.BatteryState{Level: 50}})
	tf.c.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan Event)
	firings := make(chan func())
	ticks := make(chan time.Time)

	done := make(chan error, 1)
	go func() { done <- Run(ctx, tf.c, events, firings, ticks) }()

	ticks <- time.Date(2026, 3, 8, 9, 15, 0, 0, time.UTC)
	events <- Tapped{}
	fired := false
	firings <- func() { fired = true }
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !fired {
		t.Error("timer firing was not executed")
	}
	snap := tf.c.Snapshot()
	if snap.DateText != "08" {
		t.Errorf("date text: got %q, want 08", snap.DateText)
	}
	if snap.Counts.Taps != 1 {
		t.Errorf("Taps: got %d, want 1", snap.Counts.Taps)
	}
	// One redraw for the startup dirty flag, one after the tick.
	if snap.Counts.Redraws != 2 {
		t.Errorf("Redraws: got %d, want 2", snap.Counts.Redraws)
	}
	if tf.c.NeedsRedraw() {
		t.Error("hands should be clean after the loop redraws")
	}
}

func TestRunSurvivesClosedChannels(t *testing.T) {
	tf := newTestFace(t, DefaultConfig(), FakeSources{Connected: true})
	tf.c.Start()

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)
	ticks := make(chan time.Time)
	close(events)
	close(ticks)

	firings := make(chan func())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, tf.c, events, firings, ticks) }()

	// The loop must still serve firings once its other inputs are gone.
	ran := make(chan struct{})
	firings <- func() { close(ran) }
	<-ran
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := tf.c.Snapshot().Time; got != logic.SampleTime(epoch) {
		t.Errorf("closed tick channel changed the time to %+v", got)
	}
}

func TestMinuteTicksAlignToBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := time.Now()
	offset := base.Truncate(time.Minute).Add(time.Minute).Add(-20 * time.Millisecond).Sub(base)
	now := func() time.Time { return time.Now().Add(offset) }

	ticks := MinuteTicks(ctx, now)
	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick within 2s of a minute boundary")
	}

	cancel()
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tick channel not closed after cancel")
		}
	}
}
