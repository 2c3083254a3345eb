package visualize

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette holds the colors used by the plots and diagrams.
type Palette struct {
	Background color.RGBA
	Axis       color.RGBA
	Grid       color.RGBA
	Line       color.RGBA
	Arrow      color.RGBA
}

// DefaultPalette returns the built-in plot colors.
func DefaultPalette() Palette {
	return Palette{
		Background: mustHex("#ffffff"),
		Axis:       mustHex("#000000"),
		Grid:       mustHex("#dddddd"),
		Line:       mustHex("#1f77b4"),
		Arrow:      mustHex("#ff0000"),
	}
}

// parseHexColor parses a color string like "#FF0000" or "#f00".
func parseHexColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func mustHex(hex string) color.RGBA {
	c, err := parseHexColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// fill paints the whole image with c.
func fill(img *image.RGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// drawLine draws a line of the given thickness from (x0,y0) to (x1,y1).
// Pixels outside the image are skipped.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, thickness int, c color.RGBA) {
	if thickness < 1 {
		thickness = 1
	}
	half := thickness / 2

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	bounds := img.Bounds()
	err := dx + dy
	for {
		for oy := -half; oy < thickness-half; oy++ {
			for ox := -half; ox < thickness-half; ox++ {
				p := image.Pt(x0+ox, y0+oy)
				if p.In(bounds) {
					img.SetRGBA(p.X, p.Y, c)
				}
			}
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

// drawArrow draws a line from start to end with a two-stroke head at end.
func drawArrow(img *image.RGBA, start, end image.Point, thickness int, c color.RGBA) {
	drawLine(img, start.X, start.Y, end.X, end.Y, thickness, c)

	angle := math.Atan2(float64(end.Y-start.Y), float64(end.X-start.X))
	head := 6.0 + 3*float64(thickness)
	for _, spread := range []float64{math.Pi * 5 / 6, -math.Pi * 5 / 6} {
		hx := end.X + int(math.Round(head*math.Cos(angle+spread)))
		hy := end.Y + int(math.Round(head*math.Sin(angle+spread)))
		drawLine(img, end.X, end.Y, hx, hy, thickness, c)
	}
}

// drawLabel draws text with its baseline starting at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// labelWidth returns the rendered width of text in pixels.
func labelWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
