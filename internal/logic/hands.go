package logic

import (
	"image"
	"math"
)

// Hand blades in hub-centred coordinates; negative Y points at 12 o'clock.
var (
	MinuteHandPoints = []image.Point{{-4, 12}, {4, 12}, {4, -69}, {-4, -69}}
	HourHandPoints   = []image.Point{{-4, 12}, {4, 12}, {4, -43}, {-4, -43}}
)

// Hub disc radii.
const (
	HubOuterRadius = 2
	HubInnerRadius = 1
)

// HandAngles holds hand rotations as fractions of a full clockwise turn from 12 o'clock.
type HandAngles struct {
	Hour   float64
	Minute float64
}

// ComputeHandAngles derives hand rotations from a time sample.
// The hour hand creeps with the minute but is only recomputed per sample,
// so it moves in one-minute steps.
func ComputeHandAngles(t TimeSample) HandAngles {
	minute := float64(t.Minute) / 60
	hour := float64(t.Hour%12)/12 + minute/12
	return HandAngles{Hour: hour, Minute: minute}
}

// RotatePolygon rotates pts clockwise by fraction of a turn about the origin
// and translates them to center. Results are rounded to the nearest pixel.
func RotatePolygon(pts []image.Point, fraction float64, center image.Point) []image.Point {
	theta := fraction * 2 * math.Pi
	sin, cos := math.Sincos(theta)

	out := make([]image.Point, len(pts))
	for i, p := range pts {
		x := float64(p.X)*cos - float64(p.Y)*sin
		y := float64(p.X)*sin + float64(p.Y)*cos
		out[i] = image.Point{
			X: center.X + int(math.Round(x)),
			Y: center.Y + int(math.Round(y)),
		}
	}
	return out
}
