package face

import (
	"log/slog"

	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/xslog"
)

// Controller dispatches platform events to the face components.
// Not safe for concurrent use: every method runs on the event loop.
type Controller struct {
	cfg      Config
	platform Platform
	logger   *slog.Logger
	sink     func(Notice)
	onRedraw func(Snapshot)

	state   FaceState
	view    view
	overlay *Overlay
	alert   *BluetoothAlert

	counts  Counts
	dirty   bool
	started bool
	closed  bool
	subs    []Subscription
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithNoticeSink registers a callback for state-change notices.
// The sink runs on the event loop and must not block.
func WithNoticeSink(sink func(Notice)) Option {
	return func(c *Controller) { c.sink = sink }
}

// WithRedrawHook registers a callback that receives the snapshot after
// each redraw. It runs on the event loop and must not block.
func WithRedrawHook(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onRedraw = fn }
}

// NewController wires the face components to the platform. Call Start
// before delivering events.
func NewController(cfg Config, p Platform, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		platform: p,
		logger:   slog.Default(),
		state:    FaceState{Overlay: logic.Hidden},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.view = view{screen: p.Screen, cfg: cfg}
	c.overlay = newOverlay(&c.state, c.view, p.Scheduler, c.overlayChanged)
	c.alert = newBluetoothAlert(&c.state, c.view, p.Scheduler, p.Vibrator)
	c.alert.onAlert = c.alertFired
	c.alert.onPulse = func() { c.counts.Pulses++ }
	return c
}

// Start builds the initial face from the platform snapshots and shows the
// overlay once. The bluetooth icon is drawn from the peeked state without
// arming the alert, so a watch that starts disconnected does not vibrate.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	scr := c.platform.Screen

	scr.SetBitmap(ElementBackground, logic.BackgroundIcon(c.cfg.Badge))

	c.state.Time = logic.SampleTime(c.platform.Scheduler.Now())

	scr.SetBitmap(ElementDateWindow, logic.IconDateWindow)
	scr.SetHidden(ElementDateWindow, c.cfg.HideDate)
	scr.SetHidden(ElementDateText, c.cfg.HideDate)
	c.view.drawDate(&c.state)

	c.state.Bluetooth.Connected = c.platform.Bluetooth.PeekBluetooth()
	c.view.drawBluetoothIcon(&c.state)

	c.batteryChanged(c.platform.Battery.PeekBattery())

	c.overlay.Show()

	c.markHandsDirty()

	c.logger.Info("face started",
		xslog.Battery(c.state.Battery.Level, c.state.Battery.Plugged, c.state.Battery.Charging),
		xslog.Connected(c.state.Bluetooth.Connected),
		xslog.Overlay(string(c.state.Overlay)),
	)
}

// Handle dispatches one event. Events after Close are ignored.
func (c *Controller) Handle(ev Event) {
	if c.closed || !c.started {
		return
	}
	switch e := ev.(type) {
	case MinuteTick:
		c.state.Time = logic.SampleTime(e.Time)
		c.markHandsDirty()
		c.view.drawDate(&c.state)
	case BatteryChanged:
		c.batteryChanged(e.State)
		c.notify(NoticeBattery)
	case BluetoothChanged:
		c.alert.Update(e.Connected)
		c.logger.Debug("bluetooth changed", xslog.Connected(e.Connected))
		if e.Connected {
			c.notify(NoticeBTConnected)
		} else {
			c.notify(NoticeBTDisconnected)
		}
	case Tapped:
		c.counts.Taps++
		c.overlay.Show()
	case RedrawRequested:
		c.redraw()
	default:
		c.logger.Warn("unhandled event", slog.String("event", ev.EventName()))
	}
}

// NeedsRedraw reports whether the hands layer was marked dirty since the
// last redraw.
func (c *Controller) NeedsRedraw() bool {
	return c.dirty
}

// Snapshot returns the current face state with derived display flags.
func (c *Controller) Snapshot() Snapshot {
	return snapshotOf(c.cfg, &c.state, c.counts)
}

// Overlay exposes the overlay state machine.
func (c *Controller) Overlay() *Overlay {
	return c.overlay
}

// Alert exposes the bluetooth alert timer.
func (c *Controller) Alert() *BluetoothAlert {
	return c.alert
}

// AddSubscription hands ownership of an event source registration to the
// controller; Close unsubscribes it.
func (c *Controller) AddSubscription(s Subscription) {
	c.subs = append(c.subs, s)
}

// Close cancels pending deadlines and unsubscribes from all sources in
// reverse order of registration. Safe to call more than once.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.overlay.stop()
	c.alert.stop()
	for i := len(c.subs) - 1; i >= 0; i-- {
		c.subs[i].Unsubscribe()
	}
	c.subs = nil
	c.logger.Info("face stopped")
}

func (c *Controller) batteryChanged(s logic.BatteryState) {
	c.state.Battery = s
	c.view.drawBatteryIcon(&c.state)
}

func (c *Controller) markHandsDirty() {
	c.dirty = true
	c.platform.Screen.MarkDirty(ElementHands)
}

func (c *Controller) redraw() {
	c.dirty = false
	c.counts.Redraws++
	if c.platform.Canvas != nil {
		RenderHands(c.platform.Canvas, c.state.Time)
	}
	if c.onRedraw != nil {
		c.onRedraw(c.Snapshot())
	}
}

func (c *Controller) overlayChanged(v logic.Visibility) {
	if v == logic.Showing {
		c.counts.OverlayShows++
		c.notify(NoticeOverlayShown)
	} else {
		c.counts.OverlayHides++
		c.notify(NoticeOverlayHidden)
	}
	c.logger.Debug("overlay changed", xslog.Overlay(string(v)))
}

func (c *Controller) alertFired() {
	c.counts.Alerts++
	c.logger.Info("bluetooth lost, alerting", xslog.Time(c.platform.Scheduler.Now()))
	c.notify(NoticeBTAlert)
}

func (c *Controller) notify(t NoticeType) {
	if c.sink == nil {
		return
	}
	c.sink(Notice{
		Timestamp: c.platform.Scheduler.Now(),
		Type:      t,
		Snapshot:  c.Snapshot(),
	})
}
