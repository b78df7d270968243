package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/watchface/internal/config"
	"github.com/sweeney/watchface/internal/hostsrc"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/mqtt"
	"github.com/sweeney/watchface/internal/xslog"
)

func printStateCmd(flags *flagValues) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "print-state",
		Short: "Print the current battery and bluetooth state and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			src, closeFn, err := openSource(cfg, wait)
			if err != nil {
				return err
			}
			defer closeFn()
			printState(cmd.OutOrStdout(), src.PeekBattery(), src.PeekBluetooth())
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Second, "How long to collect retained MQTT state")
	return cmd
}

// openSource connects to the configured host source for a one-shot read.
func openSource(cfg config.Config, wait time.Duration) (hostSource, func(), error) {
	logger := xslog.Discard()
	switch cfg.Source {
	case config.SourceDBus:
		host, err := hostsrc.New(cfg.DBus.Device, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init host source: %w", err)
		}
		return host, func() { host.Close() }, nil
	case config.SourceMQTT:
		cache := mqtt.NewCache(fixedBattery(cfg.Fixed), cfg.Fixed.Connected)
		client, err := mqtt.NewRealClient(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			Prefix:   cfg.MQTT.Prefix,
			ClientID: cfg.MQTT.ClientID,
		}, cache.Observe, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init mqtt: %w", err)
		}
		// Retained battery and bluetooth messages arrive after subscribe.
		time.Sleep(wait)
		return cache, func() { client.Close() }, nil
	default:
		return staticSource{battery: fixedBattery(cfg.Fixed), connected: cfg.Fixed.Connected}, func() {}, nil
	}
}

func printState(w io.Writer, b logic.BatteryState, connected bool) {
	link := "disconnected"
	if connected {
		link = "connected"
	}
	fmt.Fprintf(w, "battery: %d%% plugged=%t charging=%t icon=%s\n",
		b.Level, b.Plugged, b.Charging, logic.SelectBatteryIcon(b, logic.Showing))
	fmt.Fprintf(w, "bluetooth: %s icon=%s\n", link, logic.SelectBluetoothIcon(connected))
}
