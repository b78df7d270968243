// Package timer provides one-shot deadlines for a single-threaded event loop.
//
// A Scheduler runs a callback after a delay. OneShot layers re-arm and cancel
// semantics on top of it: arming while a previous arm is pending discards the
// earlier firing, and a generation counter drops any firing that was already
// in flight when it was canceled.
package timer

import "time"

// Handle cancels a scheduled callback. Cancel after the callback ran is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler runs f once after d. Implementations must invoke f on the
// event loop goroutine, never concurrently with other handlers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
	Now() time.Time
}

// OneShot is a re-armable, cancelable deadline. Not safe for concurrent use;
// all calls happen on the event loop.
type OneShot struct {
	sched   Scheduler
	delay   time.Duration
	fire    func()
	gen     uint64
	pending bool
	handle  Handle
}

// NewOneShot creates a timer that calls fire delay after each Arm.
func NewOneShot(sched Scheduler, delay time.Duration, fire func()) *OneShot {
	return &OneShot{sched: sched, delay: delay, fire: fire}
}

// Arm (re)starts the deadline at now+delay. A pending firing is discarded.
func (o *OneShot) Arm() {
	o.Cancel()
	o.pending = true
	gen := o.gen
	o.handle = o.sched.AfterFunc(o.delay, func() {
		if gen != o.gen || !o.pending {
			return
		}
		o.pending = false
		o.handle = nil
		o.fire()
	})
}

// Cancel drops the pending firing, if any.
func (o *OneShot) Cancel() {
	o.gen++
	o.pending = false
	if o.handle != nil {
		o.handle.Cancel()
		o.handle = nil
	}
}

// Pending reports whether a firing is outstanding.
func (o *OneShot) Pending() bool {
	return o.pending
}
