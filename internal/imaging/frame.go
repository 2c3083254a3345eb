package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Frame is a single-channel intensity grid decoded from one image file.
//
// Samples keep the native range of the source: 0-255 for 8-bit images and
// 0-65535 for 16-bit images. Pix is stored row-major, so the sample at
// column x, row y is Pix[y*Width+x].
//
// A Frame is never mutated after it is built. Operations that derive a new
// grid (SubFrame, FromImage) return a fresh Frame.
type Frame struct {
	Width  int
	Height int
	Pix    []float64

	// BitDepth is 8 or 16 and records the range of the source samples.
	BitDepth int
}

// NewFrame allocates a zero-filled frame.
func NewFrame(width, height, bitDepth int) *Frame {
	return &Frame{
		Width:    width,
		Height:   height,
		Pix:      make([]float64, width*height),
		BitDepth: bitDepth,
	}
}

// At returns the sample at column x, row y. No bounds checking is performed.
func (f *Frame) At(x, y int) float64 {
	return f.Pix[y*f.Width+x]
}

// Set writes the sample at column x, row y.
func (f *Frame) Set(x, y int, v float64) {
	f.Pix[y*f.Width+x] = v
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// MaxValue returns the largest sample in the frame, or 0 for an empty frame.
func (f *Frame) MaxValue() float64 {
	maxV := 0.0
	for _, v := range f.Pix {
		if v > maxV {
			maxV = v
		}
	}
	return maxV
}

// MinMax returns the smallest and largest samples.
func (f *Frame) MinMax() (float64, float64) {
	if len(f.Pix) == 0 {
		return 0, 0
	}
	lo, hi := f.Pix[0], f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// SubFrame copies the rectangle r (x1,y1 inclusive, x2,y2 exclusive) into a
// new frame.
func (f *Frame) SubFrame(r image.Rectangle) (*Frame, error) {
	if !r.In(f.Bounds()) {
		return nil, fmt.Errorf("sub-frame %v outside frame bounds %v", r, f.Bounds())
	}
	if r.Empty() {
		return nil, fmt.Errorf("sub-frame %v is empty", r)
	}

	sub := NewFrame(r.Dx(), r.Dy(), f.BitDepth)
	for y := 0; y < sub.Height; y++ {
		src := (r.Min.Y+y)*f.Width + r.Min.X
		copy(sub.Pix[y*sub.Width:(y+1)*sub.Width], f.Pix[src:src+sub.Width])
	}
	return sub, nil
}

// ColumnSums returns the sum of every column, left to right.
func (f *Frame) ColumnSums() []float64 {
	sums := make([]float64, f.Width)
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Width : (y+1)*f.Width]
		for x, v := range row {
			sums[x] += v
		}
	}
	return sums
}

// ToGray16 renders the frame as a 16-bit grayscale image. 8-bit samples are
// expanded to the full 16-bit range so that the image round-trips exactly.
func (f *Frame) ToGray16() *image.Gray16 {
	img := image.NewGray16(f.Bounds())
	scale := 1.0
	if f.BitDepth == 8 {
		scale = 257
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := math.Round(f.At(x, y) * scale)
			if v < 0 {
				v = 0
			} else if v > math.MaxUint16 {
				v = math.MaxUint16
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// ToGray8 renders the frame as an 8-bit image stretched so that the
// largest sample maps to 255. It is meant for display, not measurement.
func (f *Frame) ToGray8() *image.Gray {
	img := image.NewGray(f.Bounds())
	maxV := f.MaxValue()
	if maxV <= 0 {
		return img
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := math.Round(f.At(x, y) / maxV * 255)
			if v < 0 {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}
