package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/watchface/internal/assets"
	"github.com/sweeney/watchface/internal/config"
	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/gpio"
	"github.com/sweeney/watchface/internal/hostsrc"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/mqtt"
	"github.com/sweeney/watchface/internal/render"
	"github.com/sweeney/watchface/internal/status"
	"github.com/sweeney/watchface/internal/timer"
	"github.com/sweeney/watchface/internal/web"
	"github.com/sweeney/watchface/internal/xslog"
)

const (
	eventBuffer  = 64
	noticeBuffer = 64
	firingBuffer = 16
)

func runCmd(flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the face daemon",
		Long: "Runs the face on wrist hardware: tap button and motor over GPIO, " +
			"battery and bluetooth from MQTT, D-Bus or fixed values, notices " +
			"published to MQTT and a status page over HTTP.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := xslog.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			return runDaemon(cmd.Context(), cfg, logger)
		},
	}
}

// daemon owns the face controller and the goroutines around it. Only the
// face goroutine touches the controller.
type daemon struct {
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time

	loop    *timer.Loop
	events  chan face.Event
	notices chan face.Notice
	tracker *status.Tracker
	ctrl    *face.Controller

	publisher mqtt.Publisher        // nil when MQTT is off
	conn      mqtt.ConnectionStatus // nil when MQTT is off
	web       *web.Server           // nil when HTTP is off

	subs     []face.Subscription
	watchers []func(ctx context.Context) error
}

func newDaemon(cfg config.Config, logger *slog.Logger) *daemon {
	d := &daemon{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		loop:    timer.NewLoop(firingBuffer),
		events:  make(chan face.Event, eventBuffer),
		notices: make(chan face.Notice, noticeBuffer),
	}
	d.tracker = status.NewTracker(d.now(), statusConfig(cfg))
	return d
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		Source:      string(cfg.Source),
		Broker:      cfg.MQTT.Broker,
		Prefix:      cfg.MQTT.Prefix,
		HTTPAddr:    cfg.HTTPAddr,
		HeartbeatMs: cfg.Heartbeat.Std().Milliseconds(),
		Badge:       cfg.Face.Badge,
		HideDate:    cfg.Face.HideDate,
	}
}

// attach builds the controller on p. Registered subscriptions are handed
// to the controller, which releases them on Close.
func (d *daemon) attach(p face.Platform) {
	d.ctrl = face.NewController(d.cfg.Face, p,
		face.WithLogger(d.logger),
		face.WithNoticeSink(d.onNotice),
		face.WithRedrawHook(d.tracker.Update),
	)
	for _, s := range d.subs {
		d.ctrl.AddSubscription(s)
	}
}

// send queues ev for the event loop. It never blocks; sources call it from
// their own goroutines.
func (d *daemon) send(ev face.Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("event queue full, dropping event", slog.String("event", ev.EventName()))
	}
}

func (d *daemon) onNotice(n face.Notice) {
	d.tracker.Observe(n)
	if d.publisher == nil {
		return
	}
	select {
	case d.notices <- n:
	default:
		d.logger.Warn("notice queue full, dropping notice", slog.String("notice", string(n.Type)))
	}
}

type shutdownSignal struct{ name string }

func (s shutdownSignal) Error() string { return "received " + s.name }

// serve starts the face and blocks until ctx is canceled, a signal arrives
// on sig or a background task fails.
func (d *daemon) serve(ctx context.Context, sig <-chan os.Signal) error {
	d.ctrl.Start()
	d.tracker.Update(d.ctrl.Snapshot())
	d.publishSystem("STARTUP", "", true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer d.ctrl.Close()
		return face.Run(gctx, d.ctrl, d.events, d.loop.C(), face.MinuteTicks(gctx, d.now))
	})

	g.Go(func() error {
		d.forwardNotices(gctx)
		return nil
	})

	if hb := d.cfg.Heartbeat.Std(); hb > 0 && d.publisher != nil {
		g.Go(func() error {
			d.heartbeat(gctx, hb)
			return nil
		})
	}

	if d.web != nil {
		g.Go(func() error {
			d.logger.Info("http status server listening", xslog.Addr(d.cfg.HTTPAddr))
			if err := d.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.logger.Error("http server error", xslog.Error(err))
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return d.web.Shutdown(shutdownCtx)
		})
	}

	for _, w := range d.watchers {
		g.Go(func() error { return w(gctx) })
	}

	g.Go(func() error {
		select {
		case s := <-sig:
			return shutdownSignal{name: signalName(s)}
		case <-gctx.Done():
			select {
			case s := <-sig:
				return shutdownSignal{name: signalName(s)}
			default:
				return nil
			}
		}
	})

	d.logger.Info("started",
		slog.String("source", string(d.cfg.Source)),
		xslog.Broker(d.cfg.MQTT.Broker),
		slog.Duration("heartbeat", d.cfg.Heartbeat.Std()),
	)

	err := g.Wait()
	reason := "CANCELED"
	var sd shutdownSignal
	if errors.As(err, &sd) {
		reason = sd.name
		err = nil
	}
	d.logger.Info("shutting down", slog.String("reason", reason))
	d.publishSystem("SHUTDOWN", reason, true)
	return err
}

func (d *daemon) forwardNotices(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.notices:
			if d.publisher == nil {
				continue
			}
			if err := d.publisher.Publish(n); err != nil {
				// Don't crash on publish failure
				d.logger.Warn("publish error", xslog.Error(err))
			}
		}
	}
}

func (d *daemon) heartbeat(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.publishSystem("HEARTBEAT", "", false)
		}
	}
}

// publishSystem sends a lifecycle event carrying the full status snapshot.
func (d *daemon) publishSystem(event, reason string, retained bool) {
	if d.publisher == nil {
		return
	}
	if d.conn != nil {
		d.tracker.SetMQTTConnected(d.conn.IsConnected())
	}
	snap := d.tracker.Snapshot()
	err := d.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		d.logger.Warn("failed to publish system event", slog.String("event", event), xslog.Error(err))
		return
	}
	d.logger.Debug("published system event", slog.String("event", event))
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// staticSource serves the battery and link state from config.
type staticSource struct {
	battery   logic.BatteryState
	connected bool
}

func (s staticSource) PeekBattery() logic.BatteryState { return s.battery }
func (s staticSource) PeekBluetooth() bool             { return s.connected }

func fixedBattery(f config.Fixed) logic.BatteryState {
	return logic.BatteryState{Level: f.Level, Plugged: f.Plugged, Charging: f.Charging}
}

// logVibrator stands in for the motor when GPIO is off.
type logVibrator struct{ logger *slog.Logger }

func (v logVibrator) ShortPulse() {
	v.logger.Info("vibe", xslog.Duration(gpio.ShortPulseDuration))
}

type hostSource interface {
	face.BatterySource
	face.BluetoothSource
}

// runDaemon wires the hardware and network adapters to a daemon and
// serves until shutdown.
func runDaemon(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	set, err := assets.Load(cfg.AssetDir)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	defer set.Close()
	frame, err := render.NewFrame(set)
	if err != nil {
		return fmt.Errorf("init frame: %w", err)
	}

	d := newDaemon(cfg, logger)

	var src hostSource
	var cache *mqtt.Cache
	switch cfg.Source {
	case config.SourceDBus:
		host, err := hostsrc.New(cfg.DBus.Device, logger)
		if err != nil {
			return fmt.Errorf("init host source: %w", err)
		}
		src = host
		d.subs = append(d.subs, face.SubscriptionFunc(func() { host.Close() }))
		d.watchers = append(d.watchers, func(ctx context.Context) error {
			return host.Watch(ctx, d.send)
		})
	case config.SourceMQTT:
		cache = mqtt.NewCache(fixedBattery(cfg.Fixed), cfg.Fixed.Connected)
		src = cache
	default:
		src = staticSource{battery: fixedBattery(cfg.Fixed), connected: cfg.Fixed.Connected}
	}

	if cfg.MQTT.Broker != "" {
		handler := func(ev face.Event) {
			switch ev.(type) {
			case face.BatteryChanged, face.BluetoothChanged:
				// Another source owns the host state.
				if cache == nil {
					return
				}
				cache.Observe(ev)
			}
			d.send(ev)
		}
		client, err := mqtt.NewRealClient(mqtt.Config{
			Broker:     cfg.MQTT.Broker,
			Prefix:     cfg.MQTT.Prefix,
			ClientID:   cfg.MQTT.ClientID,
			BufferSize: cfg.MQTT.Buffer,
		}, handler, logger, mqtt.WithConnectionHandler(d.tracker.SetMQTTConnected))
		switch {
		case err != nil && cfg.Source == config.SourceMQTT:
			return fmt.Errorf("init mqtt: %w", err)
		case err != nil:
			logger.Warn("mqtt unavailable, continuing without it", xslog.Broker(cfg.MQTT.Broker), xslog.Error(err))
		default:
			defer client.Close()
			d.publisher, d.conn = client, client
			d.tracker.SetMQTTConnected(client.IsConnected())
		}
	}

	var vib face.Vibrator = logVibrator{logger: logger}
	if cfg.GPIO.Chip != "" {
		motor, err := gpio.NewRealMotor(cfg.GPIO.Chip, cfg.GPIO.MotorPin)
		if err != nil {
			logger.Warn("vibration motor unavailable", xslog.Error(err))
		} else {
			defer motor.Close()
			vib = gpio.NewVibrator(motor, logger)
		}

		button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.TapPin)
		if err != nil {
			logger.Warn("tap button unavailable", xslog.Error(err))
		} else {
			d.subs = append(d.subs, face.SubscriptionFunc(func() { button.Close() }))
			d.watchers = append(d.watchers, func(ctx context.Context) error {
				forwardTaps(ctx, button.Taps(), d.send)
				return nil
			})
		}
	}

	d.attach(face.Platform{
		Scheduler: d.loop,
		Screen:    frame,
		Canvas:    frame,
		Vibrator:  vib,
		Battery:   src,
		Bluetooth: src,
	})

	if cfg.HTTPAddr != "" {
		d.web = web.New(cfg.HTTPAddr, d.tracker,
			web.WithFrame(frame),
			web.WithTaps(d.events),
			web.WithLogger(logger),
		)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return d.serve(ctx, sigCh)
}

// forwardTaps turns button presses into tap events until the button is
// closed or ctx is canceled.
func forwardTaps(ctx context.Context, taps <-chan time.Time, send func(face.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-taps:
			if !ok {
				return
			}
			send(face.Tapped{})
		}
	}
}
