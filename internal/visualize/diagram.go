package visualize

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/streak-scanner/internal/detection"
	"github.com/ironsheep/streak-scanner/internal/imaging"
)

// diagramMinSide is the size small crops are upsampled towards.
const diagramMinSide = 256

// maxUpscale bounds the upsampling factor of the angle diagram.
const maxUpscale = 8

// AngleDiagram renders the padded crop of a region with an arrow along its
// major axis. The arrow is centered on the region centroid and points to the
// right: up-right for a positive orientation, down-right for a negative one,
// level for zero. bounds is the crop rectangle in frame coordinates.
func AngleDiagram(crop *imaging.Frame, bounds image.Rectangle, r detection.Region, pal Palette) *image.RGBA {
	k := upscaleFactor(crop.Width, crop.Height)

	var base image.Image = crop.ToGray8()
	if k > 1 {
		base = transform.Resize(base, crop.Width*k, crop.Height*k, transform.NearestNeighbor)
	}

	img := image.NewRGBA(image.Rect(0, 0, crop.Width*k, crop.Height*k))
	draw.Draw(img, img.Bounds(), base, base.Bounds().Min, draw.Src)

	scale := float64(k)
	cx := (r.CentroidCol - float64(bounds.Min.X) + 0.5) * scale
	cy := (r.CentroidRow - float64(bounds.Min.Y) + 0.5) * scale
	half := r.MajorAxisLength / 2 * scale
	if math.IsNaN(half) || half < 1 {
		half = math.Min(float64(img.Bounds().Dx()), float64(img.Bounds().Dy())) / 4
	}

	// Image rows grow downwards, so a counter-clockwise angle moves up.
	theta := r.Orientation
	if math.IsNaN(theta) {
		theta = 0
	}
	dx, dy := math.Cos(theta)*half, -math.Sin(theta)*half
	start := image.Pt(int(math.Round(cx-dx)), int(math.Round(cy-dy)))
	end := image.Pt(int(math.Round(cx+dx)), int(math.Round(cy+dy)))

	drawArrow(img, start, end, 2, pal.Arrow)
	drawLabel(img, 4, 14, fmt.Sprintf("%.1f deg", r.OrientationDegrees()), pal.Arrow)

	return img
}

// upscaleFactor picks an integer factor that brings the larger side of a
// small crop near diagramMinSide.
func upscaleFactor(width, height int) int {
	side := width
	if height > side {
		side = height
	}
	if side <= 0 || side >= diagramMinSide {
		return 1
	}
	k := int(math.Ceil(float64(diagramMinSide) / float64(side)))
	if k > maxUpscale {
		k = maxUpscale
	}
	return k
}
