package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

// FillPolygon fills the closed polygon pts onto dst using the non-zero rule.
func FillPolygon(dst draw.Image, pts []image.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	r.MoveTo(float32(pts[0].X-b.Min.X), float32(pts[0].Y-b.Min.Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X-b.Min.X), float32(p.Y-b.Min.Y))
	}
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// StrokePolygon draws the one pixel outline of the closed polygon pts.
func StrokePolygon(dst draw.Image, pts []image.Point, c color.Color) {
	for i := range pts {
		Line(dst, pts[i], pts[(i+1)%len(pts)], c)
	}
}

// Line draws a one pixel line from p0 to p1 inclusive (Bresenham).
func Line(dst draw.Image, p0, p1 image.Point, c color.Color) {
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	b := dst.Bounds()
	for {
		if image.Pt(x0, y0).In(b) {
			dst.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillCircle fills a disc of the given radius. Radius 0 sets one pixel.
func FillCircle(dst draw.Image, center image.Point, radius int, c color.Color) {
	b := dst.Bounds()
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > radius*radius {
				continue
			}
			p := image.Pt(center.X+x, center.Y+y)
			if p.In(b) {
				dst.Set(p.X, p.Y, c)
			}
		}
	}
}

// FillRect fills r, clipped to dst.
func FillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// StrokeRect draws the one pixel outline just inside r.
func StrokeRect(dst draw.Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	tl, br := r.Min, r.Max.Sub(image.Pt(1, 1))
	Line(dst, tl, image.Pt(br.X, tl.Y), c)
	Line(dst, image.Pt(br.X, tl.Y), br, c)
	Line(dst, br, image.Pt(tl.X, br.Y), c)
	Line(dst, image.Pt(tl.X, br.Y), tl, c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
