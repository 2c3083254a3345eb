package detection

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// BBox is a half-open bounding box in row/column order:
// rows MinRow..MaxRow-1 and columns MinCol..MaxCol-1 are covered.
type BBox struct {
	MinRow int `json:"min_row"`
	MinCol int `json:"min_col"`
	MaxRow int `json:"max_row"`
	MaxCol int `json:"max_col"`
}

// Height returns the number of rows covered.
func (b BBox) Height() int { return b.MaxRow - b.MinRow }

// Width returns the number of columns covered.
func (b BBox) Width() int { return b.MaxCol - b.MinCol }

// Rect converts the box to an image rectangle (X = column, Y = row).
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.MinCol, b.MinRow, b.MaxCol, b.MaxRow)
}

// Region is the measurement of one connected component.
//
// Axis lengths are those of the ellipse with the same normalized second
// central moments as the component (4 * sqrt(eigenvalue)). Orientation is
// the angle in radians, in (-pi/2, pi/2], between the horizontal image axis
// and the major axis, positive counter-clockwise as the image is viewed.
// An orientation of 0 is a horizontal streak.
type Region struct {
	BBox            BBox    `json:"bbox"`
	Area            int     `json:"area"`
	CentroidRow     float64 `json:"centroid_row"`
	CentroidCol     float64 `json:"centroid_col"`
	MajorAxisLength float64 `json:"major_axis_length"`
	MinorAxisLength float64 `json:"minor_axis_length"`
	Orientation     float64 `json:"orientation"`
}

// OrientationDegrees returns Orientation in degrees.
func (r Region) OrientationDegrees() float64 {
	return r.Orientation * 180 / math.Pi
}

// measureRegion computes the geometry of a non-empty pixel set.
func measureRegion(pixels []image.Point) Region {
	n := float64(len(pixels))

	bbox := BBox{MinRow: math.MaxInt, MinCol: math.MaxInt}
	var sumX, sumY float64
	for _, p := range pixels {
		sumX += float64(p.X)
		sumY += float64(p.Y)
		if p.Y < bbox.MinRow {
			bbox.MinRow = p.Y
		}
		if p.X < bbox.MinCol {
			bbox.MinCol = p.X
		}
		if p.Y+1 > bbox.MaxRow {
			bbox.MaxRow = p.Y + 1
		}
		if p.X+1 > bbox.MaxCol {
			bbox.MaxCol = p.X + 1
		}
	}
	cx, cy := sumX/n, sumY/n

	// Normalized second central moments.
	var cxx, cyy, cxy float64
	for _, p := range pixels {
		dx := float64(p.X) - cx
		dy := float64(p.Y) - cy
		cxx += dx * dx
		cyy += dy * dy
		cxy += dx * dy
	}
	cxx /= n
	cyy /= n
	cxy /= n

	major, minor := axisLengths(cxx, cyy, cxy)

	// Rows grow downward, so the y term is negated to measure the angle
	// counter-clockwise as the image is viewed.
	theta := 0.5 * math.Atan2(-2*cxy, cxx-cyy)
	if theta <= -math.Pi/2 {
		theta += math.Pi
	}

	return Region{
		BBox:            bbox,
		Area:            len(pixels),
		CentroidRow:     cy,
		CentroidCol:     cx,
		MajorAxisLength: major,
		MinorAxisLength: minor,
		Orientation:     theta,
	}
}

// axisLengths returns the ellipse axis lengths for a 2x2 covariance matrix.
func axisLengths(cxx, cyy, cxy float64) (major, minor float64) {
	cov := mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy})

	var eig mat.EigenSym
	var l1, l2 float64
	if eig.Factorize(cov, false) {
		vals := eig.Values(nil) // ascending
		l1, l2 = vals[1], vals[0]
	} else {
		half := (cxx + cyy) / 2
		d := math.Sqrt(((cxx-cyy)/2)*((cxx-cyy)/2) + cxy*cxy)
		l1, l2 = half+d, half-d
	}

	// Round-off can leave a tiny negative eigenvalue for one-pixel-wide lines.
	if l2 < 0 {
		l2 = 0
	}
	if l1 < 0 {
		l1 = 0
	}
	return 4 * math.Sqrt(l1), 4 * math.Sqrt(l2)
}
