package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// RotateFrame rotates a frame counter-clockwise by angle degrees about its
// center using bilinear interpolation. The canvas grows so that no sample is
// clipped; uncovered corners are zero.
//
// Frames that hold only whole 8-bit levels are rotated by imaging.Rotate.
// Every other frame, 16-bit data in particular, is interpolated on its
// float64 samples over the same canvas, so faint structure keeps its full
// precision next to bright pixels. Multiples of 90 degrees permute samples
// exactly; a multiple of 360 returns a copy.
func RotateFrame(f *Frame, angle float64) *Frame {
	angle = angle - math.Floor(angle/360)*360

	switch angle {
	case 0:
		out := NewFrame(f.Width, f.Height, f.BitDepth)
		copy(out.Pix, f.Pix)
		return out
	case 90:
		out := NewFrame(f.Height, f.Width, f.BitDepth)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(x, y, f.At(f.Width-1-y, x))
			}
		}
		return out
	case 180:
		out := NewFrame(f.Width, f.Height, f.BitDepth)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(x, y, f.At(f.Width-1-x, f.Height-1-y))
			}
		}
		return out
	case 270:
		out := NewFrame(f.Height, f.Width, f.BitDepth)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(x, y, f.At(y, f.Height-1-x))
			}
		}
		return out
	}

	if f.BitDepth == 8 && wholeLevels(f) {
		return rotateGray8(f, angle)
	}
	return rotateBilinear(f, angle)
}

// wholeLevels reports whether every sample is an integer in 0-255.
func wholeLevels(f *Frame) bool {
	for _, v := range f.Pix {
		if v < 0 || v > 255 || v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func rotateGray8(f *Frame, angle float64) *Frame {
	gray := image.NewGray(f.Bounds())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(f.At(x, y))})
		}
	}

	rotated := imaging.Rotate(gray, angle, color.Black)

	b := rotated.Bounds()
	out := NewFrame(b.Dx(), b.Dy(), f.BitDepth)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Set(x, y, float64(rotated.NRGBAAt(x+b.Min.X, y+b.Min.Y).R))
		}
	}
	return out
}

// rotateBilinear maps every destination sample back into the source and
// interpolates between its four neighbors. Neighbors outside the source
// count as zero. The canvas and sample geometry match imaging.Rotate.
func rotateBilinear(f *Frame, angle float64) *Frame {
	dstW, dstH := rotatedSize(f.Width, f.Height, angle)
	out := NewFrame(dstW, dstH, f.BitDepth)

	srcXOff := float64(f.Width)/2 - 0.5
	srcYOff := float64(f.Height)/2 - 0.5
	dstXOff := float64(dstW)/2 - 0.5
	dstYOff := float64(dstH)/2 - 0.5
	sin, cos := math.Sincos(math.Pi * angle / 180)

	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			xf, yf := rotatePoint(float64(x)-dstXOff, float64(y)-dstYOff, sin, cos)
			out.Set(x, y, bilinear(f, xf+srcXOff, yf+srcYOff))
		}
	}
	return out
}

func bilinear(f *Frame, xf, yf float64) float64 {
	x0 := int(math.Floor(xf))
	y0 := int(math.Floor(yf))
	if x0 < -1 || y0 < -1 || x0 >= f.Width || y0 >= f.Height {
		return 0
	}
	xq := xf - float64(x0)
	yq := yf - float64(y0)

	return (1-xq)*(1-yq)*sampleOrZero(f, x0, y0) +
		xq*(1-yq)*sampleOrZero(f, x0+1, y0) +
		(1-xq)*yq*sampleOrZero(f, x0, y0+1) +
		xq*yq*sampleOrZero(f, x0+1, y0+1)
}

func sampleOrZero(f *Frame, x, y int) float64 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.At(x, y)
}

func rotatePoint(x, y, sin, cos float64) (float64, float64) {
	return x*cos - y*sin, x*sin + y*cos
}

// rotatedSize returns the canvas that holds a w x h frame rotated by angle.
func rotatedSize(w, h int, angle float64) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}

	sin, cos := math.Sincos(math.Pi * angle / 180)
	x1, y1 := rotatePoint(float64(w-1), 0, sin, cos)
	x2, y2 := rotatePoint(float64(w-1), float64(h-1), sin, cos)
	x3, y3 := rotatePoint(0, float64(h-1), sin, cos)

	minx := math.Min(x1, math.Min(x2, math.Min(x3, 0)))
	maxx := math.Max(x1, math.Max(x2, math.Max(x3, 0)))
	miny := math.Min(y1, math.Min(y2, math.Min(y3, 0)))
	maxy := math.Max(y1, math.Max(y2, math.Max(y3, 0)))

	neww := maxx - minx + 1
	if neww-math.Floor(neww) > 0.1 {
		neww++
	}
	newh := maxy - miny + 1
	if newh-math.Floor(newh) > 0.1 {
		newh++
	}
	return int(neww), int(newh)
}
