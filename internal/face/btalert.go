package face

import (
	"github.com/sweeney/watchface/internal/timer"
)

// BluetoothAlert vibrates once per disconnection episode. A disconnect arms
// a grace-period deadline; a reconnect inside the window cancels it. The
// AlreadyVibrated latch is only cleared by a confirmed reconnect, so flapping
// after an alert does not alert again.
type BluetoothAlert struct {
	state    *FaceState
	view     view
	vibrator Vibrator
	grace    *timer.OneShot
	pulses   [2]*timer.OneShot
	onAlert  func()
	onPulse  func()
}

func newBluetoothAlert(state *FaceState, v view, sched timer.Scheduler, vib Vibrator) *BluetoothAlert {
	a := &BluetoothAlert{state: state, view: v, vibrator: vib}
	a.grace = timer.NewOneShot(sched, GracePeriod, a.checkAndVibrate)
	a.pulses = [2]*timer.OneShot{
		timer.NewOneShot(sched, 0, a.pulse),
		timer.NewOneShot(sched, PulseGap, a.pulse),
	}
	return a
}

// Update applies a link state notification.
func (a *BluetoothAlert) Update(connected bool) {
	a.state.Bluetooth.Connected = connected
	a.view.drawBluetoothIcon(a.state)
	a.grace.Cancel()
	if !connected {
		a.grace.Arm()
		return
	}
	if a.state.Bluetooth.AlreadyVibrated {
		a.state.Bluetooth.AlreadyVibrated = false
	}
}

// checkAndVibrate runs when the grace period expires.
func (a *BluetoothAlert) checkAndVibrate() {
	bt := &a.state.Bluetooth
	if bt.Connected || bt.AlreadyVibrated {
		return
	}
	bt.AlreadyVibrated = true
	for _, p := range a.pulses {
		p.Arm()
	}
	if a.onAlert != nil {
		a.onAlert()
	}
}

func (a *BluetoothAlert) pulse() {
	a.vibrator.ShortPulse()
	if a.onPulse != nil {
		a.onPulse()
	}
}

// GracePending reports whether a grace-period deadline is armed.
func (a *BluetoothAlert) GracePending() bool {
	return a.grace.Pending()
}

// stop cancels the grace deadline and any pulse not yet sent to the motor.
func (a *BluetoothAlert) stop() {
	a.grace.Cancel()
	for _, p := range a.pulses {
		p.Cancel()
	}
}
