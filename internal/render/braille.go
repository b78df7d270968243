package render

import (
	"image"
	"image/color"
	"strings"

	drawille "github.com/exrook/drawille-go"
)

// brailleThreshold is the minimum luma for a pixel to count as lit.
const brailleThreshold = 0x80

// Braille converts img into rows of braille characters, one dot per lit
// pixel (2x4 pixels per character). Every row is padded to the full width.
func Braille(img image.Image) string {
	b := img.Bounds()
	canvas := drawille.NewCanvas()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if lit(img.At(x, y)) {
				canvas.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}

	charWidth := (b.Dx() + 1) / 2
	charHeight := (b.Dy() + 3) / 4
	rows := canvas.Rows(0, 0, b.Dx(), b.Dy())

	lines := make([]string, charHeight)
	for i := range lines {
		var line string
		if i < len(rows) {
			line = rows[i]
		}
		n := len([]rune(line))
		switch {
		case n < charWidth:
			line += strings.Repeat("⠀", charWidth-n)
		case n > charWidth:
			line = string([]rune(line)[:charWidth])
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func lit(c color.Color) bool {
	g := color.GrayModel.Convert(c).(color.Gray)
	_, _, _, a := c.RGBA()
	return a >= 0x8000 && g.Y >= brailleThreshold
}
