package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// blendPixel composites src over the destination pixel using the source
// alpha.
func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	if c.A == 0 {
		return
	}
	if c.A == 255 {
		img.SetRGBA(x, y, c)
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	inv := 255 - a
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(c.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(c.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	})
}

// fillCircle paints a filled disc centered at (cx, cy).
func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r <= 0 {
		return
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= rr {
				blendPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// strokeCircle paints a one pixel circle outline.
func strokeCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r <= 0 {
		return
	}
	x, y, err := r, 0, 0
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			blendPixel(img, cx+p[0], cy+p[1], c)
		}
		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}

// drawLine paints a one pixel line with Bresenham stepping.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		blendPixel(img, x0, y0, c)
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

// fillRect paints a filled axis-aligned rectangle.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			blendPixel(img, x, y, c)
		}
	}
}

var labelFace = basicfont.Face7x13

// textWidth measures a label in pixels.
func textWidth(s string) int {
	return font.MeasureString(labelFace, s).Ceil()
}

// drawText paints a label with its baseline at (x, y).
func drawText(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawTextCentered paints a label horizontally centered on cx.
func drawTextCentered(img *image.RGBA, cx, y int, s string, c color.RGBA) {
	drawText(img, cx-textWidth(s)/2, y, s, c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
