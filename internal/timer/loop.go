package timer

import (
	"sync/atomic"
	"time"
)

// Loop is a wall-clock Scheduler. Expired callbacks are delivered on C and
// must be run by the event loop goroutine, which keeps handlers serialized.
type Loop struct {
	c   chan func()
	now func() time.Time
}

// NewLoop creates a Loop whose firing channel holds up to buffer callbacks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		c:   make(chan func(), buffer),
		now: time.Now,
	}
}

// C delivers callbacks whose deadline has passed.
func (l *Loop) C() <-chan func() {
	return l.c
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return l.now()
}

type loopHandle struct {
	t        *time.Timer
	canceled atomic.Bool
}

func (h *loopHandle) Cancel() {
	h.canceled.Store(true)
	h.t.Stop()
}

// AfterFunc schedules f. A callback canceled after it was queued on C is
// skipped when the loop runs it.
func (l *Loop) AfterFunc(d time.Duration, f func()) Handle {
	h := &loopHandle{}
	h.t = time.AfterFunc(d, func() {
		if h.canceled.Load() {
			return
		}
		l.c <- func() {
			if h.canceled.Load() {
				return
			}
			f()
		}
	})
	return h
}
