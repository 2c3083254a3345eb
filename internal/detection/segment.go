package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/streak-scanner/internal/imaging"
)

// Segmentation is the result of segmenting one frame.
type Segmentation struct {
	// Threshold is the binarization level derived for this frame.
	Threshold float64 `json:"threshold"`

	// Regions are the labeled components that do not touch the frame border,
	// in raster order of their first pixel.
	Regions []Region `json:"regions"`

	// BorderRejected counts components discarded for touching the border.
	BorderRejected int `json:"border_rejected"`
}

// Segmenter turns a frame into measured candidate regions.
type Segmenter struct {
	Policy ThresholdPolicy
}

// NewSegmenter creates a segmenter using the given threshold policy.
// A nil policy selects OtsuPolicy with the default divisor.
func NewSegmenter(policy ThresholdPolicy) *Segmenter {
	if policy == nil {
		policy = OtsuPolicy{Divisor: DefaultOtsuDivisor}
	}
	return &Segmenter{Policy: policy}
}

// Segment runs the segmentation pipeline on one frame:
//
//  1. Threshold: derive the level from this frame with the policy
//  2. Binarize: foreground where intensity > level
//  3. Close: 3x3 dilation followed by 3x3 erosion bridges 1-2 pixel gaps
//  4. Label: 8-connected components
//  5. Clear border: drop every component with a pixel on the frame edge
//  6. Measure: area, bbox, centroid, axis lengths, orientation
//
// A frame with no foreground yields an empty region list.
func (s *Segmenter) Segment(f *imaging.Frame) *Segmentation {
	level := s.Policy.ComputeThreshold(f)
	mask := closeMask(Binarize(f, level), f.Width, f.Height)

	seg := &Segmentation{Threshold: level, Regions: make([]Region, 0)}
	for _, c := range labelComponents(mask, f.Width, f.Height) {
		if c.touchesBorder {
			seg.BorderRejected++
			continue
		}
		seg.Regions = append(seg.Regions, measureRegion(c.pixels))
	}
	return seg
}

// Binarize returns a row-major mask with true where intensity > level.
func Binarize(f *imaging.Frame, level float64) []bool {
	mask := make([]bool, len(f.Pix))
	for i, v := range f.Pix {
		mask[i] = v > level
	}
	return mask
}

// closeMask applies a morphological closing with a 3x3 square element.
func closeMask(mask []bool, width, height int) []bool {
	img := image.NewGray(image.Rect(0, 0, width, height))
	hasForeground := false
	for i, on := range mask {
		if on {
			img.Pix[(i/width)*img.Stride+i%width] = 255
			hasForeground = true
		}
	}
	if !hasForeground {
		return mask
	}

	closed := effect.Erode(effect.Dilate(img, 1), 1)

	out := make([]bool, len(mask))
	b := closed.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = closed.RGBAAt(x+b.Min.X, y+b.Min.Y).R > 127
		}
	}
	return out
}
