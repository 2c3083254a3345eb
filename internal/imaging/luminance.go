package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FromImage reduces a decoded image to a single-channel Frame.
//
// Grayscale images keep their raw sample values. Any other color model is
// reduced to a weighted sum of its encoded (not linearized) R, G and B
// values, then scaled back to the 8- or 16-bit range of the source. A pixel
// with R == G == B keeps its value, so grayscale data stored as RGB or
// paletted files reduces to the same intensities. Fully transparent pixels
// contribute zero intensity.
//
// # Bit Depth
//
//   - *image.Gray16, *image.RGBA64, *image.NRGBA64 -> 16-bit (0-65535)
//   - All other types -> 8-bit (0-255)
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		f := NewFrame(width, height, 8)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Set(x, y, float64(src.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y))
			}
		}
		return f
	case *image.Gray16:
		f := NewFrame(width, height, 16)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Set(x, y, float64(src.Gray16At(x+bounds.Min.X, y+bounds.Min.Y).Y))
			}
		}
		return f
	}

	depth := bitDepth(img)
	full := 255.0
	if depth == 16 {
		full = 65535.0
	}

	f := NewFrame(width, height, depth)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			f.Set(x, y, snap(luminance(c)*full))
		}
	}
	return f
}

// Weights of the encoded channels in the gray value.
const (
	weightR = 0.2125
	weightG = 0.7154
	weightB = 0.0721
)

// luminance returns the gray value (0-1) of a color from its encoded
// channels.
func luminance(c colorful.Color) float64 {
	c = c.Clamped()
	if c.R == c.G && c.G == c.B {
		return c.R
	}
	return weightR*c.R + weightG*c.G + weightB*c.B
}

// snap removes the rounding error of the 0-1 round trip from values that
// are whole sample levels.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		return r
	}
	return v
}

func bitDepth(img image.Image) int {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return 16
	}
	return 8
}
