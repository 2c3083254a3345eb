package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/streak-scanner/internal/imaging"
)

// Threshold policy names accepted by NewThresholdPolicy.
const (
	PolicyOtsu        = "otsu"
	PolicyMaxFraction = "max-fraction"
)

// Default policy constants.
const (
	DefaultOtsuDivisor = 5.0
	DefaultMaxFraction = 0.085
)

// ThresholdPolicy derives the binarization threshold of one frame. A pixel
// is foreground when its intensity is strictly greater than the threshold.
// Policies are re-evaluated for every frame; nothing is carried between frames.
type ThresholdPolicy interface {
	ComputeThreshold(f *imaging.Frame) float64
	Name() string
}

// OtsuPolicy is Otsu's threshold divided by Divisor.
//
// Dividing the Otsu level pushes the cut well into the background tail, so
// faint streak wings and low-surface-brightness streaks survive binarization.
// The cost is more noise blobs, which the area filter then has to reject.
// The level is computed as OtsuThreshold describes.
// This is the default policy.
type OtsuPolicy struct {
	Divisor float64
}

// Name implements ThresholdPolicy.
func (p OtsuPolicy) Name() string { return PolicyOtsu }

// ComputeThreshold implements ThresholdPolicy.
func (p OtsuPolicy) ComputeThreshold(f *imaging.Frame) float64 {
	divisor := p.Divisor
	if divisor <= 0 {
		divisor = DefaultOtsuDivisor
	}
	return OtsuThreshold(f.Pix) / divisor
}

// MaxFractionPolicy is the brightest sample in the frame times Fraction.
//
// It ignores the shape of the histogram, so a single hot pixel raises the cut
// for the whole frame. On frames without hot pixels it is stricter than
// OtsuPolicy and yields fewer, cleaner candidates.
type MaxFractionPolicy struct {
	Fraction float64
}

// Name implements ThresholdPolicy.
func (p MaxFractionPolicy) Name() string { return PolicyMaxFraction }

// ComputeThreshold implements ThresholdPolicy.
func (p MaxFractionPolicy) ComputeThreshold(f *imaging.Frame) float64 {
	fraction := p.Fraction
	if fraction <= 0 {
		fraction = DefaultMaxFraction
	}
	return f.MaxValue() * fraction
}

// NewThresholdPolicy builds a policy by name. The constant is the Otsu
// divisor or the max fraction, depending on the policy; zero selects the
// default.
func NewThresholdPolicy(name string, constant float64) (ThresholdPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyOtsu:
		return OtsuPolicy{Divisor: constant}, nil
	case PolicyMaxFraction:
		return MaxFractionPolicy{Fraction: constant}, nil
	default:
		return nil, fmt.Errorf("unknown threshold policy: %s", name)
	}
}

const (
	otsuBins = 256

	// maxIntegerBins bounds one-bin-per-value histograms to the 16-bit range.
	maxIntegerBins = 1 << 16
)

// OtsuThreshold returns the Otsu level of the samples.
//
// Integer-valued samples, as decoded from grayscale files of either bit
// depth, get one bin per value over [min, max] and the level is a sample
// value. Fractional samples, as produced by colour reduction, are binned
// into 256 bins spanning [min, max] and the level is a bin center. The
// chosen bin maximizes the between-class variance; on ties the lowest wins.
// When every sample is equal that value is returned.
func OtsuThreshold(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	lo, hi := samples[0], samples[0]
	integral := true
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		if integral && v != math.Trunc(v) {
			integral = false
		}
	}
	if hi == lo {
		return lo
	}

	bins := otsuBins
	binWidth := (hi - lo) / otsuBins
	if integral && hi-lo < maxIntegerBins {
		bins = int(hi-lo) + 1
		binWidth = 1
	}

	hist := make([]float64, bins)
	for _, v := range samples {
		idx := int((v - lo) / binWidth)
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}

	centers := make([]float64, bins)
	for i := range centers {
		if binWidth == 1 {
			centers[i] = lo + float64(i)
		} else {
			centers[i] = lo + (float64(i)+0.5)*binWidth
		}
	}
	return otsuLevel(hist, centers)
}

// otsuLevel picks the bin center that maximizes the between-class variance
// of a histogram.
func otsuLevel(hist, centers []float64) float64 {
	n := len(hist)

	// Cumulative class weights and means from the left and from the right.
	w1 := make([]float64, n)
	m1 := make([]float64, n)
	var cw, cm float64
	for i := 0; i < n; i++ {
		cw += hist[i]
		cm += hist[i] * centers[i]
		w1[i] = cw
		if cw > 0 {
			m1[i] = cm / cw
		}
	}
	w2 := make([]float64, n)
	m2 := make([]float64, n)
	cw, cm = 0, 0
	for i := n - 1; i >= 0; i-- {
		cw += hist[i]
		cm += hist[i] * centers[i]
		w2[i] = cw
		if cw > 0 {
			m2[i] = cm / cw
		}
	}

	best, bestVar := 0, -1.0
	for i := 0; i < n-1; i++ {
		d := m1[i] - m2[i+1]
		v := w1[i] * w2[i+1] * d * d
		if v > bestVar {
			best, bestVar = i, v
		}
	}
	return centers[best]
}
