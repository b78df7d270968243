package face

import (
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/timer"
)

// Overlay is the Hidden/Showing status overlay. Show re-arms a single
// auto-hide deadline, so repeated shows extend the overlay rather than
// stacking hides.
type Overlay struct {
	state    *FaceState
	view     view
	deadline *timer.OneShot
	onChange func(logic.Visibility)
}

func newOverlay(state *FaceState, v view, sched timer.Scheduler, onChange func(logic.Visibility)) *Overlay {
	o := &Overlay{state: state, view: v, onChange: onChange}
	o.deadline = timer.NewOneShot(sched, DisplayTimeout, o.Hide)
	return o
}

// Show reveals both icons and the date, then (re)arms the auto-hide deadline.
func (o *Overlay) Show() {
	o.state.Overlay = logic.Showing
	o.view.drawBatteryIcon(o.state)
	o.view.drawBluetoothIcon(o.state)
	o.view.applyDateVisibility(o.state)
	o.deadline.Arm()
	if o.onChange != nil {
		o.onChange(logic.Showing)
	}
}

// Hide returns to the resting face. Called when the deadline fires.
func (o *Overlay) Hide() {
	o.deadline.Cancel()
	o.state.Overlay = logic.Hidden
	o.view.drawBatteryIcon(o.state)
	o.view.drawBluetoothIcon(o.state)
	o.view.applyDateVisibility(o.state)
	if o.onChange != nil {
		o.onChange(logic.Hidden)
	}
}

// Visibility returns the current overlay state.
func (o *Overlay) Visibility() logic.Visibility {
	return o.state.Overlay
}

// HidePending reports whether an auto-hide deadline is armed.
func (o *Overlay) HidePending() bool {
	return o.deadline.Pending()
}

func (o *Overlay) stop() {
	o.deadline.Cancel()
}
