package face

import (
	"context"
	"time"
)

// Run is the cooperative event loop. Exactly one handler runs at a time:
// platform events, expired timer callbacks and minute ticks are taken in
// arrival order, and a redraw follows any handler that left the hands dirty.
// Run returns nil when ctx is canceled.
func Run(ctx context.Context, c *Controller, events <-chan Event, firings <-chan func(), ticks <-chan time.Time) error {
	if c.NeedsRedraw() {
		c.Handle(RedrawRequested{})
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.Handle(ev)
		case f := <-firings:
			f()
		case t, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			c.Handle(MinuteTick{Time: t})
		}

		if c.NeedsRedraw() {
			c.Handle(RedrawRequested{})
		}
	}
}

// MinuteTicks sends the wall-clock time at each minute boundary until ctx
// is canceled.
func MinuteTicks(ctx context.Context, now func() time.Time) <-chan time.Time {
	ch := make(chan time.Time, 1)
	go func() {
		defer close(ch)
		for {
			t := now()
			next := t.Truncate(time.Minute).Add(time.Minute)
			wait := time.NewTimer(next.Sub(t))
			select {
			case <-ctx.Done():
				wait.Stop()
				return
			case <-wait.C:
				select {
				case ch <- now():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
