package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/watchface/internal/config"
	"github.com/sweeney/watchface/internal/xslog"
)

// flagValues holds the raw command-line values. Only flags the user set
// override the loaded config.
type flagValues struct {
	set *pflag.FlagSet

	configPath string
	cfg        config.Config
	heartbeat  time.Duration
	logLevel   string
	logFormat  string
	source     string
}

func bindFlags(fs *pflag.FlagSet, v *flagValues) {
	d := config.Default()
	v.set = fs
	v.cfg = d

	fs.StringVar(&v.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/watchface/config.toml)")
	fs.BoolVar(&v.cfg.Face.Badge, "badge", d.Face.Badge, "Draw the badge background")
	fs.BoolVar(&v.cfg.Face.HideDate, "hide-date", d.Face.HideDate, "Show the date only while the overlay shows")
	fs.StringVar(&v.source, "source", string(d.Source), "Battery and bluetooth source: mqtt, dbus or fixed")
	fs.StringVar(&v.cfg.MQTT.Broker, "broker", d.MQTT.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&v.cfg.MQTT.Prefix, "prefix", d.MQTT.Prefix, "MQTT topic prefix")
	fs.StringVar(&v.cfg.GPIO.Chip, "gpio-chip", d.GPIO.Chip, "GPIO chip (empty to disable tap button and motor)")
	fs.IntVar(&v.cfg.GPIO.TapPin, "pin-tap", d.GPIO.TapPin, "BCM pin number for the tap button")
	fs.IntVar(&v.cfg.GPIO.MotorPin, "pin-motor", d.GPIO.MotorPin, "BCM pin number for the vibration motor")
	fs.StringVar(&v.cfg.DBus.Device, "bt-device", d.DBus.Device, "BlueZ address of the phone (dbus source)")
	fs.StringVar(&v.cfg.HTTPAddr, "http", d.HTTPAddr, "HTTP status address (empty to disable)")
	fs.DurationVar(&v.heartbeat, "heartbeat", d.Heartbeat.Std(), "Heartbeat interval (0 to disable)")
	fs.StringVar(&v.cfg.AssetDir, "assets", d.AssetDir, "Directory of PNG icon overrides")
	fs.IntVar(&v.cfg.Fixed.Level, "battery", d.Fixed.Level, "Battery level for the fixed source and the simulator")
	fs.BoolVar(&v.cfg.Fixed.Connected, "connected", d.Fixed.Connected, "Bluetooth link for the fixed source and the simulator")
	fs.StringVar(&v.logLevel, "log-level", string(d.LogLevel), "Log level: debug, info, warn or error")
	fs.StringVar(&v.logFormat, "log-format", string(d.LogFormat), "Log format: json or text")
}

// flagOverrides maps each flag to the config field it sets.
var flagOverrides = map[string]func(dst *config.Config, v *flagValues){
	"badge":      func(dst *config.Config, v *flagValues) { dst.Face.Badge = v.cfg.Face.Badge },
	"hide-date":  func(dst *config.Config, v *flagValues) { dst.Face.HideDate = v.cfg.Face.HideDate },
	"source":     func(dst *config.Config, v *flagValues) { dst.Source = config.Source(v.source) },
	"broker":     func(dst *config.Config, v *flagValues) { dst.MQTT.Broker = v.cfg.MQTT.Broker },
	"prefix":     func(dst *config.Config, v *flagValues) { dst.MQTT.Prefix = v.cfg.MQTT.Prefix },
	"gpio-chip":  func(dst *config.Config, v *flagValues) { dst.GPIO.Chip = v.cfg.GPIO.Chip },
	"pin-tap":    func(dst *config.Config, v *flagValues) { dst.GPIO.TapPin = v.cfg.GPIO.TapPin },
	"pin-motor":  func(dst *config.Config, v *flagValues) { dst.GPIO.MotorPin = v.cfg.GPIO.MotorPin },
	"bt-device":  func(dst *config.Config, v *flagValues) { dst.DBus.Device = v.cfg.DBus.Device },
	"http":       func(dst *config.Config, v *flagValues) { dst.HTTPAddr = v.cfg.HTTPAddr },
	"heartbeat":  func(dst *config.Config, v *flagValues) { dst.Heartbeat = config.Duration(v.heartbeat) },
	"assets":     func(dst *config.Config, v *flagValues) { dst.AssetDir = v.cfg.AssetDir },
	"battery":    func(dst *config.Config, v *flagValues) { dst.Fixed.Level = v.cfg.Fixed.Level },
	"connected":  func(dst *config.Config, v *flagValues) { dst.Fixed.Connected = v.cfg.Fixed.Connected },
	"log-level":  func(dst *config.Config, v *flagValues) { dst.LogLevel = xslog.Level(v.logLevel) },
	"log-format": func(dst *config.Config, v *flagValues) { dst.LogFormat = xslog.Format(v.logFormat) },
}

// loadConfig reads the config file and environment, then applies the flags
// the user set.
func loadConfig(v *flagValues) (config.Config, error) {
	cfg, err := config.Load(v.configPath)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(&cfg, v)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, v *flagValues) {
	// Persistent flags are parsed through each subcommand's merged set, so
	// check Changed on the shared flags rather than Visit.
	v.set.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if apply, ok := flagOverrides[f.Name]; ok {
			apply(cfg, v)
		}
	})
}
