package face

import (
	"image"
	"image/color"

	"github.com/sweeney/watchface/internal/logic"
)

// RenderHands draws the hour hand, the minute hand and the hub onto c.
// Both hands pivot about the centre of the canvas. A BatchCanvas receives
// the whole redraw as one batch.
func RenderHands(c Canvas, t logic.TimeSample) {
	if bc, ok := c.(BatchCanvas); ok {
		bc.Batch(func(c Canvas) { drawHands(c, t) })
		return
	}
	drawHands(c, t)
}

func drawHands(c Canvas, t logic.TimeSample) {
	b := c.Bounds()
	center := image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
	angles := logic.ComputeHandAngles(t)

	c.Clear()

	hour := logic.RotatePolygon(logic.HourHandPoints, angles.Hour, center)
	c.FillPolygon(hour, color.White)
	c.StrokePolygon(hour, color.Black)

	minute := logic.RotatePolygon(logic.MinuteHandPoints, angles.Minute, center)
	c.FillPolygon(minute, color.White)
	c.StrokePolygon(minute, color.Black)

	c.FillCircle(center, logic.HubOuterRadius, color.Black)
	c.FillCircle(center, logic.HubInnerRadius, color.White)
}
