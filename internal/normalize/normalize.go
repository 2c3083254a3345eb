// Package normalize cuts an accepted streak out of its frame and turns it
// into canonical orientation: major axis horizontal, trimmed to the minor
// axis band, with a 1-D brightness profile along its length.
package normalize

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/streak-scanner/internal/detection"
	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
	"github.com/ironsheep/streak-scanner/internal/imaging"
)

// DefaultPadding is the fraction of the bbox height/width added on every side.
const DefaultPadding = 0.1

// Streak is a normalized streak.
type Streak struct {
	// Bounds is the padded bbox in frame coordinates (X = column, Y = row).
	Bounds image.Rectangle

	// Crop is the frame cut to Bounds, before rotation.
	Crop *imaging.Frame

	// Image is the rotated crop trimmed to the minor axis band.
	Image *imaging.Frame

	// RotationDegrees is the counter-clockwise rotation applied to Crop.
	RotationDegrees float64

	// Profile holds the column sums of Image, one value per column.
	Profile []float64
}

// ExtendBBox pads a bbox by int(padding * extent) on every side and clamps
// the result to a width x height frame.
func ExtendBBox(b detection.BBox, padding float64, width, height int) image.Rectangle {
	if padding < 0 {
		padding = 0
	}
	rMargin := int(padding * float64(b.Height()))
	cMargin := int(padding * float64(b.Width()))

	r := image.Rect(b.MinCol-cMargin, b.MinRow-rMargin, b.MaxCol+cMargin, b.MaxRow+rMargin)
	return r.Intersect(image.Rect(0, 0, width, height))
}

// Normalize crops, rotates and trims one region of a frame.
//
// Steps:
//  1. Pad the bbox by padding on every side, clamped to the frame
//  2. Crop the frame to the padded box
//  3. Rotate by -orientation (degrees) about the center, growing the canvas
//  4. Keep the centered band of rows as tall as the minor axis
//  5. Sum each column of the band into the profile
//
// A region whose minor axis rounds to zero, or whose padded box is empty,
// yields an error of type degenerate_region. Callers drop that region from
// normalization output and carry on with the run.
func Normalize(f *imaging.Frame, r detection.Region, padding float64) (*Streak, error) {
	minor := r.MinorAxisLength
	if math.IsNaN(minor) || math.IsInf(minor, 0) || math.Round(minor) <= 0 {
		return nil, apperrors.NewDegenerateRegionError(
			fmt.Sprintf("minor axis length %.3f rounds to zero", minor))
	}
	if math.IsNaN(r.Orientation) {
		return nil, apperrors.NewDegenerateRegionError("orientation is undefined")
	}

	bounds := ExtendBBox(r.BBox, padding, f.Width, f.Height)
	if bounds.Empty() {
		return nil, apperrors.NewDegenerateRegionError(
			fmt.Sprintf("padded box %v is empty", bounds))
	}

	crop, err := imaging.CropFrame(f, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	if err != nil {
		return nil, apperrors.NewDegenerateRegionError(err.Error())
	}

	angle := -r.OrientationDegrees()
	rotated := imaging.RotateFrame(crop, angle)

	h := float64(rotated.Height)
	lo := int(math.Floor((h - minor) / 2))
	hi := int(math.Floor((h + minor) / 2))
	if lo < 0 {
		lo = 0
	}
	if hi > rotated.Height {
		hi = rotated.Height
	}
	if hi <= lo || rotated.Width == 0 {
		return nil, apperrors.NewDegenerateRegionError(
			fmt.Sprintf("trimmed band rows %d..%d is empty", lo, hi))
	}

	band, err := rotated.SubFrame(image.Rect(0, lo, rotated.Width, hi))
	if err != nil {
		return nil, apperrors.NewDegenerateRegionError(err.Error())
	}

	return &Streak{
		Bounds:          bounds,
		Crop:            crop,
		Image:           band,
		RotationDegrees: angle,
		Profile:         band.ColumnSums(),
	}, nil
}
