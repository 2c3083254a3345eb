package classify

import (
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Class is the length classification of one streak.
type Class string

const (
	ClassNormal Class = "normal"
	ClassShort  Class = "short"
	ClassLong   Class = "long"
)

// LongSigma is the number of standard deviations above the mean beyond
// which a streak is a long outlier.
const LongSigma = 3.0

// Counts are the outlier counts of one file.
type Counts struct {
	Short int `json:"short"`
	Long  int `json:"long"`
}

// Classification is the outcome of classifying a corpus.
type Classification struct {
	// Skipped is true when no record had a usable length. Mean, Std and the
	// thresholds are then zero and every record is left unclassified.
	Skipped bool `json:"skipped"`

	Mean          float64 `json:"mean"`
	Std           float64 `json:"std"`
	ShortBelow    float64 `json:"short_below"`
	LongAbove     float64 `json:"long_above"`
	SampleCount   int     `json:"sample_count"`
	ExcludedCount int     `json:"excluded_count"`

	Classes map[uuid.UUID]Class `json:"-"`
	ByFile  map[string]Counts   `json:"-"`
}

// Classify runs the two-phase outlier classification over all records.
//
// Phase 1 collects the length of every record that has one. Phase 2 computes
// the mean and population standard deviation of those lengths and labels
// each record:
//
//   - length < mean/2          -> ClassShort
//   - length > mean + 3*std    -> ClassLong
//   - otherwise                -> ClassNormal
//
// The short rule has no std term while the long rule is a 3-sigma rule; with
// std >= 0 they cannot both hold. An empty corpus is not an error: the
// result has Skipped set and no counts.
//
// The statistics are computed over the sorted lengths, so permuting the
// input yields bit-identical results.
func Classify(records []StreakRecord) *Classification {
	c := &Classification{
		Classes: make(map[uuid.UUID]Class, len(records)),
		ByFile:  make(map[string]Counts),
	}

	lengths := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.HasLength() {
			c.ExcludedCount++
			continue
		}
		lengths = append(lengths, r.Length())
	}
	c.SampleCount = len(lengths)

	if len(lengths) == 0 {
		c.Skipped = true
		return c
	}

	sort.Float64s(lengths)
	c.Mean, c.Std = stat.PopMeanStdDev(lengths, nil)
	c.ShortBelow = c.Mean / 2
	c.LongAbove = c.Mean + LongSigma*c.Std

	for _, r := range records {
		if !r.HasLength() {
			continue
		}
		class := c.classOf(r.Length())
		c.Classes[r.ID] = class

		counts := c.ByFile[r.Filename]
		switch class {
		case ClassShort:
			counts.Short++
		case ClassLong:
			counts.Long++
		}
		c.ByFile[r.Filename] = counts
	}
	return c
}

func (c *Classification) classOf(length float64) Class {
	if length < c.ShortBelow {
		return ClassShort
	}
	if length > c.LongAbove {
		return ClassLong
	}
	return ClassNormal
}

// ClassOf returns the class assigned to a record, or ClassNormal when the
// record was not classified.
func (c *Classification) ClassOf(id uuid.UUID) Class {
	if class, ok := c.Classes[id]; ok {
		return class
	}
	return ClassNormal
}
