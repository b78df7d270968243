package xslog

import (
	"log/slog"
	"time"
)

func Error(err error) slog.Attr {
	const errorKey = "error"
	return slog.String(errorKey, err.Error())
}

func Overlay(v string) slog.Attr {
	const overlayKey = "overlay"
	return slog.String(overlayKey, v)
}

func Connected(c bool) slog.Attr {
	const connectedKey = "connected"
	return slog.Bool(connectedKey, c)
}

func Battery(level int, plugged, charging bool) slog.Attr {
	const batteryKey = "battery"
	return slog.Group(batteryKey,
		slog.Int("level", level),
		slog.Bool("plugged", plugged),
		slog.Bool("charging", charging),
	)
}

func Icon(id string) slog.Attr {
	const iconKey = "icon"
	return slog.String(iconKey, id)
}

func Topic(topic string) slog.Attr {
	const topicKey = "topic"
	return slog.String(topicKey, topic)
}

func Broker(broker string) slog.Attr {
	const brokerKey = "broker"
	return slog.String(brokerKey, broker)
}

func Addr(addr string) slog.Attr {
	const addrKey = "addr"
	return slog.String(addrKey, addr)
}

func Duration(d time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, d)
}

func Time(t time.Time) slog.Attr {
	const timeKey = "at"
	return slog.Time(timeKey, t)
}

func Count(n int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, n)
}
