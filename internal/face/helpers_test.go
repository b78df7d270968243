package face

import (
	"image"
	"testing"
	"time"

	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/timer"
	"github.com/sweeney/watchface/internal/xslog"
)

var epoch = time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)

type testFace struct {
	c       *Controller
	clock   *timer.Manual
	screen  *FakeScreen
	canvas  *FakeCanvas
	vib     *FakeVibrator
	sources *FakeSources
	notices []Notice
}

func newTestFace(t *testing.T, cfg Config, sources FakeSources) *testFace {
	t.Helper()
	clock := timer.NewManual(epoch)
	tf := &testFace{
		clock:   clock,
		screen:  NewFakeScreen(),
		canvas:  NewFakeCanvas(image.Rect(0, 0, 144, 168)),
		vib:     &FakeVibrator{Now: clock.Now},
		sources: &sources,
	}
	tf.c = NewController(cfg, Platform{
		Scheduler: clock,
		Screen:    tf.screen,
		Canvas:    tf.canvas,
		Vibrator:  tf.vib,
		Battery:   tf.sources,
		Bluetooth: tf.sources,
	},
		WithLogger(xslog.Discard()),
		WithNoticeSink(func(n Notice) { tf.notices = append(tf.notices, n) }),
	)
	return tf
}

// startedFace returns a started face whose startup overlay already expired.
func startedFace(t *testing.T, cfg Config, sources FakeSources) *testFace {
	t.Helper()
	tf := newTestFace(t, cfg, sources)
	tf.c.Start()
	tf.clock.Advance(DisplayTimeout)
	if got := tf.c.Overlay().Visibility(); got != logic.Hidden {
		t.Fatalf("setup: expected overlay hidden, got %s", got)
	}
	tf.screen.Reset()
	tf.notices = nil
	return tf
}

func (tf *testFace) noticeTypes() []NoticeType {
	out := make([]NoticeType, len(tf.notices))
	for i, n := range tf.notices {
		out[i] = n.Type
	}
	return out
}
