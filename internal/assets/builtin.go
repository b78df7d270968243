package assets

import (
	"image"
	"image/color"
	"math"

	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/render"
)

// Icon canvas sizes, matching the layer they are blitted into.
var (
	batterySize    = image.Pt(41, 24)
	bluetoothSize  = image.Pt(24, 24)
	backgroundSize = image.Pt(render.Width, render.Height)
	dateWindowSize = image.Pt(27, 21)
)

// builtin draws the stock icon for id. ok is false for IDs with no art.
func builtin(id logic.IconID) (image.Image, bool) {
	switch id {
	case logic.IconBatteryCharging:
		return chargingIcon(), true
	case logic.IconBluetoothConnected:
		return bluetoothIcon(false), true
	case logic.IconBluetoothDisconnected:
		return bluetoothIcon(true), true
	case logic.IconBackgroundBadge:
		return backgroundIcon(true), true
	case logic.IconBackgroundNoBadge:
		return backgroundIcon(false), true
	case logic.IconDateWindow:
		return dateWindowIcon(), true
	}
	if level, ok := batteryLevels[id]; ok {
		return batteryIcon(level), true
	}
	return nil, false
}

var batteryLevels = map[logic.IconID]int{
	logic.IconBattery100: 100,
	logic.IconBattery90:  90,
	logic.IconBattery80:  80,
	logic.IconBattery70:  70,
	logic.IconBattery60:  60,
	logic.IconBattery50:  50,
	logic.IconBattery40:  40,
	logic.IconBattery30:  30,
	logic.IconBattery20:  20,
	logic.IconBattery10:  10,
}

// batteryBody is the outline of the cell inside the 41x24 icon.
var batteryBody = image.Rect(4, 6, 34, 18)

func batteryShell() *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: batterySize})
	render.StrokeRect(img, batteryBody, color.White)
	render.FillRect(img, image.Rect(batteryBody.Max.X, 9, batteryBody.Max.X+3, 15), color.White)
	return img
}

func batteryIcon(level int) image.Image {
	img := batteryShell()
	inner := batteryBody.Inset(2)
	w := inner.Dx() * level / 100
	render.FillRect(img, image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+w, inner.Max.Y), color.White)
	return img
}

func chargingIcon() image.Image {
	img := batteryShell()
	bolt := []image.Point{
		{21, 7}, {13, 13}, {18, 13}, {16, 17}, {25, 11}, {20, 11},
	}
	render.FillPolygon(img, bolt, color.White)
	return img
}

func bluetoothIcon(disconnected bool) image.Image {
	img := image.NewRGBA(image.Rectangle{Max: bluetoothSize})
	// The rune: a vertical stem with two closed arrowheads on the right.
	top, bottom := image.Pt(11, 3), image.Pt(11, 20)
	render.Line(img, top, bottom, color.White)
	render.Line(img, top, image.Pt(16, 8), color.White)
	render.Line(img, image.Pt(16, 8), image.Pt(6, 16), color.White)
	render.Line(img, bottom, image.Pt(16, 15), color.White)
	render.Line(img, image.Pt(16, 15), image.Pt(6, 7), color.White)
	if disconnected {
		render.Line(img, image.Pt(1, 1), image.Pt(22, 22), color.White)
		render.Line(img, image.Pt(1, 22), image.Pt(22, 1), color.White)
	}
	return img
}

func backgroundIcon(badge bool) image.Image {
	img := image.NewRGBA(image.Rectangle{Max: backgroundSize})
	render.FillRect(img, img.Bounds(), color.Black)

	center := image.Pt(backgroundSize.X/2, backgroundSize.Y/2)
	for i := 0; i < 60; i++ {
		inner := 64.0
		if i%5 == 0 {
			inner = 58.0
		}
		a := float64(i) / 60 * 2 * math.Pi
		sin, cos := math.Sincos(a)
		p0 := image.Pt(center.X+int(math.Round(inner*sin)), center.Y-int(math.Round(inner*cos)))
		p1 := image.Pt(center.X+int(math.Round(70*sin)), center.Y-int(math.Round(70*cos)))
		render.Line(img, p0, p1, color.White)
	}

	if badge {
		badgeCenter := image.Pt(center.X, 40)
		render.FillCircle(img, badgeCenter, 9, color.White)
		render.FillCircle(img, badgeCenter, 7, color.Black)
		render.FillCircle(img, badgeCenter, 3, color.White)
	}
	return img
}

func dateWindowIcon() image.Image {
	img := image.NewRGBA(image.Rectangle{Max: dateWindowSize})
	render.FillRect(img, img.Bounds(), color.White)
	render.StrokeRect(img, img.Bounds(), color.Black)
	return img
}
