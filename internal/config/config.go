// Package config loads daemon settings. Values come from built-in defaults,
// then an optional TOML file, then WATCHFACE_* environment variables. The
// command line applies flags last.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/gpio"
	"github.com/sweeney/watchface/internal/mqtt"
	"github.com/sweeney/watchface/internal/xslog"
)

// Source selects where battery and bluetooth state comes from.
type Source string

const (
	SourceMQTT  Source = "mqtt"
	SourceDBus  Source = "dbus"
	SourceFixed Source = "fixed"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "WATCHFACE_"

// Config is the full daemon configuration.
type Config struct {
	Face      face.Config  `toml:"face" envPrefix:"FACE_"`
	Source    Source       `toml:"source" env:"SOURCE"`
	MQTT      MQTT         `toml:"mqtt" envPrefix:"MQTT_"`
	GPIO      GPIO         `toml:"gpio" envPrefix:"GPIO_"`
	DBus      DBus         `toml:"dbus" envPrefix:"DBUS_"`
	Fixed     Fixed        `toml:"fixed" envPrefix:"FIXED_"`
	HTTPAddr  string       `toml:"http_addr" env:"HTTP_ADDR"`
	Heartbeat Duration     `toml:"heartbeat" env:"HEARTBEAT"`
	AssetDir  string       `toml:"asset_dir" env:"ASSET_DIR"`
	LogLevel  xslog.Level  `toml:"log_level" env:"LOG_LEVEL"`
	LogFormat xslog.Format `toml:"log_format" env:"LOG_FORMAT"`
}

// MQTT configures the broker connection. An empty Broker disables MQTT.
type MQTT struct {
	Broker   string `toml:"broker" env:"BROKER"`
	Prefix   string `toml:"prefix" env:"PREFIX"`
	ClientID string `toml:"client_id" env:"CLIENT_ID"`
	Buffer   int    `toml:"buffer" env:"BUFFER"`
}

// GPIO configures the tap button and vibration motor. An empty Chip
// disables both.
type GPIO struct {
	Chip     string `toml:"chip" env:"CHIP"`
	TapPin   int    `toml:"tap_pin" env:"TAP_PIN"`
	MotorPin int    `toml:"motor_pin" env:"MOTOR_PIN"`
}

// DBus configures the host battery and bluetooth source.
type DBus struct {
	// Device is the BlueZ address of the phone, e.g. AA:BB:CC:DD:EE:FF.
	Device string `toml:"device" env:"DEVICE"`
}

// Fixed is the static battery and link state used by the fixed source.
type Fixed struct {
	Level     int  `toml:"level" env:"LEVEL"`
	Plugged   bool `toml:"plugged" env:"PLUGGED"`
	Charging  bool `toml:"charging" env:"CHARGING"`
	Connected bool `toml:"connected" env:"CONNECTED"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Face:   face.DefaultConfig(),
		Source: SourceMQTT,
		MQTT: MQTT{
			Broker:   "tcp://127.0.0.1:1883",
			Prefix:   mqtt.DefaultPrefix,
			ClientID: "watchface",
			Buffer:   mqtt.DefaultBufferSize,
		},
		GPIO: GPIO{
			Chip:     gpio.DefaultChip,
			TapPin:   gpio.PinTap,
			MotorPin: gpio.PinMotor,
		},
		Fixed:     Fixed{Level: 100, Connected: true},
		HTTPAddr:  ":8080",
		Heartbeat: Duration(15 * time.Minute),
		LogLevel:  xslog.Default,
		LogFormat: xslog.FormatJSON,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/watchface/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "watchface", "config.toml"), nil
}

// Load builds the configuration. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	if err := readFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, os.Environ()); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	return Decode(file, cfg)
}

// Decode overlays TOML from r onto cfg. Keys absent from r keep their
// current values; unknown keys are an error.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overlays WATCHFACE_* variables from environ onto cfg.
func ApplyEnv(cfg *Config, environ []string) error {
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that cannot be fixed up later.
func (c Config) Validate() error {
	var errs []error
	switch c.Source {
	case SourceMQTT:
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("source mqtt needs mqtt.broker"))
		}
	case SourceDBus, SourceFixed:
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (valid: mqtt, dbus, fixed)", c.Source))
	}
	if c.Fixed.Level < 0 || c.Fixed.Level > 100 {
		errs = append(errs, fmt.Errorf("fixed.level %d out of range 0..100", c.Fixed.Level))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat %v is negative", c.Heartbeat.Std()))
	}
	if c.MQTT.Buffer < 0 {
		errs = append(errs, fmt.Errorf("mqtt.buffer %d is negative", c.MQTT.Buffer))
	}
	if _, err := xslog.Parse(string(c.LogLevel)); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case xslog.FormatJSON, xslog.FormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (valid: json, text)", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Duration is a time.Duration written as a Go duration string ("15m") in
// TOML and the environment.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
