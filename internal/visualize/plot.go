package visualize

import (
	"fmt"
	"image"
	"math"
)

// Plot geometry in pixels.
const (
	PlotWidth  = 640
	PlotHeight = 400

	marginLeft   = 70
	marginRight  = 20
	marginTop    = 30
	marginBottom = 50

	gridDivisions = 5
)

// XAxisLabel is printed under the profile plot.
const XAxisLabel = "distance from streak start [px]"

// PlotProfile renders a brightness profile as a line plot: sample index on
// the x axis, summed brightness on the y axis, with a light grid and tick
// values. An empty profile yields the axes only.
func PlotProfile(profile []float64, title string, pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PlotWidth, PlotHeight))
	fill(img, pal.Background)

	plot := image.Rect(marginLeft, marginTop, PlotWidth-marginRight, PlotHeight-marginBottom)

	yMin, yMax := valueRange(profile)
	xMax := float64(len(profile) - 1)
	if xMax < 1 {
		xMax = 1
	}

	// Grid lines and tick labels
	for i := 0; i <= gridDivisions; i++ {
		x := plot.Min.X + i*plot.Dx()/gridDivisions
		y := plot.Max.Y - i*plot.Dy()/gridDivisions
		drawLine(img, x, plot.Min.Y, x, plot.Max.Y, 1, pal.Grid)
		drawLine(img, plot.Min.X, y, plot.Max.X, y, 1, pal.Grid)

		xTick := fmt.Sprintf("%.0f", xMax*float64(i)/gridDivisions)
		drawLabel(img, x-labelWidth(xTick)/2, plot.Max.Y+16, xTick, pal.Axis)

		yTick := fmt.Sprintf("%.4g", yMin+(yMax-yMin)*float64(i)/gridDivisions)
		drawLabel(img, plot.Min.X-labelWidth(yTick)-6, y+4, yTick, pal.Axis)
	}

	// Axes
	drawLine(img, plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y, 1, pal.Axis)
	drawLine(img, plot.Min.X, plot.Min.Y, plot.Min.X, plot.Max.Y, 1, pal.Axis)

	drawLabel(img, plot.Min.X+(plot.Dx()-labelWidth(XAxisLabel))/2, PlotHeight-10, XAxisLabel, pal.Axis)
	if title != "" {
		drawLabel(img, plot.Min.X+(plot.Dx()-labelWidth(title))/2, marginTop-10, title, pal.Axis)
	}

	toPixel := func(i int, v float64) image.Point {
		px := plot.Min.X + int(math.Round(float64(i)/xMax*float64(plot.Dx())))
		py := plot.Max.Y - int(math.Round((v-yMin)/(yMax-yMin)*float64(plot.Dy())))
		return image.Pt(px, py)
	}

	switch len(profile) {
	case 0:
	case 1:
		p := toPixel(0, profile[0])
		drawLine(img, p.X, p.Y, p.X, p.Y, 3, pal.Line)
	default:
		prev := toPixel(0, profile[0])
		for i := 1; i < len(profile); i++ {
			cur := toPixel(i, profile[i])
			drawLine(img, prev.X, prev.Y, cur.X, cur.Y, 2, pal.Line)
			prev = cur
		}
	}

	return img
}

// valueRange returns the plotted y range. A flat or empty profile gets a
// unit-wide range so that the scale stays finite.
func valueRange(profile []float64) (float64, float64) {
	if len(profile) == 0 {
		return 0, 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range profile {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi-lo < 1e-9 {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}
