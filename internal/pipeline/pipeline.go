// Package pipeline runs a full streak scan over a catalog.
//
// A run has two passes. The first pass processes every file independently
// on a worker pool: load, segment, filter by area, then normalize each
// accepted region and hand it to the Observer. A reduction barrier follows:
// per-file results are merged in scan order into the run's Corpus and
// report Table, so output never depends on worker scheduling. The second
// pass classifies the whole corpus, applies the outlier counts and writes
// the report. Moving no-event files into their partition directory comes
// last and cannot fail the run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/streak-scanner/internal/catalog"
	"github.com/ironsheep/streak-scanner/internal/classify"
	"github.com/ironsheep/streak-scanner/internal/config"
	"github.com/ironsheep/streak-scanner/internal/detection"
	"github.com/ironsheep/streak-scanner/internal/imaging"
	"github.com/ironsheep/streak-scanner/internal/metrics"
	"github.com/ironsheep/streak-scanner/internal/normalize"
	"github.com/ironsheep/streak-scanner/internal/report"
)

// Options configure one run.
type Options struct {
	Catalog string
	Pattern string

	// ReportPath is where the report is written; empty skips writing.
	ReportPath string

	MinArea int
	Padding float64
	Policy  detection.ThresholdPolicy
	Workers int

	// NoEventsDir is the catalog subdirectory receiving files without
	// accepted streaks; empty disables moving files.
	NoEventsDir string
}

// OptionsFromConfig maps a validated configuration onto run options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := cfg.ThresholdPolicy()
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Catalog:    cfg.Catalog,
		Pattern:    cfg.Pattern,
		ReportPath: cfg.ReportPath(),
		MinArea:    cfg.MinArea,
		Padding:    cfg.Padding,
		Policy:     policy,
		Workers:    cfg.Workers,
	}
	if cfg.Partition.Enabled {
		opts.NoEventsDir = cfg.Partition.Dir
	}
	return opts, nil
}

// FailedFile is a catalog file that could not be processed.
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Result is the outcome of a run.
type Result struct {
	Rows           []report.FileStats       `json:"rows"`
	Events         []string                 `json:"events"`
	NoEvents       []string                 `json:"no_events"`
	Failed         []FailedFile             `json:"failed"`
	Classification *classify.Classification `json:"classification"`

	// Records are the accepted streaks in scan order.
	Records []classify.StreakRecord `json:"-"`

	NormalizationFailures int `json:"normalization_failures"`

	// Moved counts files moved into the no-events directory.
	Moved int `json:"moved"`

	// PartitionError is set when moving no-event files failed. The report
	// is still valid.
	PartitionError error `json:"-"`
}

// Runner executes runs with fixed options and collaborators.
type Runner struct {
	opts     Options
	log      *logrus.Logger
	metrics  *metrics.Recorder
	observer Observer
}

// NewRunner creates a runner. A nil observer is allowed; a nil recorder
// gets a private one.
func NewRunner(opts Options, log *logrus.Logger, rec *metrics.Recorder, observer Observer) *Runner {
	if opts.Pattern == "" {
		opts.Pattern = catalog.DefaultPattern
	}
	if opts.MinArea < 1 {
		opts.MinArea = detection.DefaultMinArea
	}
	if rec == nil {
		rec = metrics.New()
	}
	return &Runner{
		opts:     opts,
		log:      log,
		metrics:  rec,
		observer: observer,
	}
}

// fileResult is the first-pass output of one file.
type fileResult struct {
	name         string
	err          error
	accepted     []detection.Region
	normFailures int
}

// Run scans the catalog and produces the report.
//
// Unreadable files are logged, listed in Result.Failed and left out of the
// report and partitions. Degenerate regions are logged and still counted.
// Only a failure to list the catalog, a cancelled context, or a failure to
// write the report is returned as an error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	paths, err := catalog.Scan(r.opts.Catalog, r.opts.Pattern)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"catalog": r.opts.Catalog,
		"files":   len(paths),
	}).Info("Scanning catalog")

	segmenter := detection.NewSegmenter(r.opts.Policy)
	results := make([]fileResult, len(paths))

	pool := NewWorkerPool(r.opts.Workers)
	pool.Start()
	for i, path := range paths {
		i, path := i, path
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				results[i] = fileResult{name: filepath.Base(path), err: err}
				return
			}
			results[i] = r.processFile(segmenter, path)
		})
	}
	pool.Wait()
	pool.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reduction barrier: merge per-file results in scan order.
	corpus := classify.NewCorpus()
	table := report.NewTable()
	res := &Result{Failed: make([]FailedFile, 0)}
	for _, fr := range results {
		if fr.err != nil {
			res.Failed = append(res.Failed, FailedFile{Filename: fr.name, Error: fr.err.Error()})
			continue
		}
		table.Register(fr.name, len(fr.accepted))
		for j, region := range fr.accepted {
			corpus.Add(classify.NewStreakRecord(fr.name, j+1, region))
		}
		res.NormalizationFailures += fr.normFailures
	}

	res.Records = corpus.Records()
	res.Classification = classify.Classify(res.Records)
	table.ApplyClassification(res.Classification)

	r.recordOutliers(res.Classification)
	if res.Classification.Skipped {
		r.log.Info("No accepted streaks in catalog; classification skipped")
	} else {
		r.log.WithFields(logrus.Fields{
			"streaks":    res.Classification.SampleCount,
			"mean":       res.Classification.Mean,
			"std":        res.Classification.Std,
			"long_above": res.Classification.LongAbove,
		}).Info("Classified corpus")
	}

	res.Rows = table.Rows()
	res.Events, res.NoEvents = table.Partition()

	if r.opts.ReportPath != "" {
		if err := report.WriteFile(r.opts.ReportPath, res.Rows); err != nil {
			return res, err
		}
		r.log.WithField("report", r.opts.ReportPath).Info("Report written")
	}

	if r.opts.NoEventsDir != "" && len(res.NoEvents) > 0 {
		res.Moved, res.PartitionError = catalog.MoveFiles(r.opts.Catalog, r.opts.NoEventsDir, res.NoEvents)
		if res.PartitionError != nil {
			r.log.WithError(res.PartitionError).Warn("Partitioning no-event files failed")
		}
	}

	r.log.WithFields(logrus.Fields{
		"files":     len(res.Rows),
		"failed":    len(res.Failed),
		"events":    len(res.Events),
		"no_events": len(res.NoEvents),
		"streaks":   len(res.Records),
	}).Info("Scan complete")

	return res, nil
}

// processFile runs the first pass on one file.
func (r *Runner) processFile(segmenter *detection.Segmenter, path string) fileResult {
	name := filepath.Base(path)
	start := time.Now()

	frame, err := imaging.LoadFrame(path)
	if err != nil {
		r.metrics.ObserveFile(time.Since(start), metrics.OutcomeFailed)
		r.log.WithFields(logrus.Fields{"file": name}).WithError(err).Warn("Skipping unreadable file")
		return fileResult{name: name, err: err}
	}

	seg := segmenter.Segment(frame)
	accepted, rejected := detection.PartitionRegions(seg.Regions, r.opts.MinArea)
	r.metrics.ObserveFile(time.Since(start), metrics.OutcomeScanned)
	r.metrics.AddRegions(metrics.DecisionAccepted, len(accepted))
	r.metrics.AddRegions(metrics.DecisionRejectedArea, len(rejected))
	r.metrics.AddRegions(metrics.DecisionRejectedBorder, seg.BorderRejected)

	r.log.WithFields(logrus.Fields{
		"file":      name,
		"threshold": seg.Threshold,
		"accepted":  len(accepted),
		"rejected":  len(rejected) + seg.BorderRejected,
	}).Debug("Segmented file")

	fr := fileResult{name: name, accepted: accepted}
	for j, region := range accepted {
		streak, err := normalize.Normalize(frame, region, r.opts.Padding)
		if err != nil {
			fr.normFailures++
			r.metrics.IncNormalizationFailure()
			r.log.WithFields(logrus.Fields{
				"file":   name,
				"region": j + 1,
			}).WithError(err).Warn("Cannot normalize region")
		}
		if r.observer != nil {
			r.observer.OnStreakAccepted(AcceptedStreak{
				Filename: name,
				Index:    j + 1,
				Frame:    frame,
				Region:   region,
				Streak:   streak,
			})
		}
	}
	return fr
}

func (r *Runner) recordOutliers(c *classify.Classification) {
	short, long := 0, 0
	for _, counts := range c.ByFile {
		short += counts.Short
		long += counts.Long
	}
	r.metrics.AddOutliers(short, long)
}

// Summary formats the headline numbers of a result for log lines and tool
// output.
func (res *Result) Summary() string {
	return fmt.Sprintf("%d files, %d with events, %d without, %d failed, %d streaks",
		len(res.Rows), len(res.Events), len(res.NoEvents), len(res.Failed), len(res.Records))
}
