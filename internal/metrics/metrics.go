// Package metrics exposes the Prometheus collectors of a scan run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "streak"

// File outcome labels.
const (
	OutcomeScanned = "scanned"
	OutcomeFailed  = "failed"
)

// Region decision labels.
const (
	DecisionAccepted       = "accepted"
	DecisionRejectedArea   = "rejected_area"
	DecisionRejectedBorder = "rejected_border"
)

// Outlier kind labels.
const (
	KindShort = "short"
	KindLong  = "long"
)

// Recorder holds the collectors of one run. Each run owns its registry so
// repeated runs in one process never share counts.
type Recorder struct {
	registry *prometheus.Registry

	filesScanned          *prometheus.CounterVec
	regions               *prometheus.CounterVec
	normalizationFailures prometheus.Counter
	outliers              *prometheus.CounterVec
	scanSeconds           prometheus.Histogram
}

// New creates a recorder with its collectors registered on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		filesScanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_scanned_total",
				Help:      "Catalog files processed, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		regions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "regions_total",
				Help:      "Labeled regions, partitioned by filter decision.",
			},
			[]string{"decision"},
		),
		normalizationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalization_failures_total",
				Help:      "Accepted regions that could not be normalized.",
			},
		),
		outliers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outliers_total",
				Help:      "Streaks classified as outliers, partitioned by kind.",
			},
			[]string{"kind"},
		),
		scanSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_seconds",
				Help:      "Per-file segmentation latency in seconds.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
	}

	r.registry.MustRegister(
		r.filesScanned,
		r.regions,
		r.normalizationFailures,
		r.outliers,
		r.scanSeconds,
	)
	return r
}

// Registry returns the registry holding the run collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFile records one processed file and its latency.
func (r *Recorder) ObserveFile(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeFailed {
		label = OutcomeScanned
	}
	r.filesScanned.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	r.scanSeconds.Observe(duration.Seconds())
}

// AddRegions records n regions with the given filter decision.
func (r *Recorder) AddRegions(decision string, n int) {
	if n <= 0 {
		return
	}
	r.regions.WithLabelValues(decision).Add(float64(n))
}

// IncNormalizationFailure records one degenerate region.
func (r *Recorder) IncNormalizationFailure() {
	r.normalizationFailures.Inc()
}

// AddOutliers records the outlier counts of a classification.
func (r *Recorder) AddOutliers(short, long int) {
	if short > 0 {
		r.outliers.WithLabelValues(KindShort).Add(float64(short))
	}
	if long > 0 {
		r.outliers.WithLabelValues(KindLong).Add(float64(long))
	}
}

// WriteTextfile writes the registry in the text exposition format used by the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
