package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// counterValue finds a counter sample by metric name and optional label value
func counterValue(t *testing.T, r *Recorder, name, labelValue string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue == "" && len(m.GetLabel()) == 0 {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.ObserveFile(10*time.Millisecond, OutcomeScanned)
	r.ObserveFile(-time.Second, "anything")
	r.ObserveFile(0, OutcomeFailed)
	r.AddRegions(DecisionAccepted, 3)
	r.AddRegions(DecisionRejectedArea, 0)
	r.IncNormalizationFailure()
	r.AddOutliers(2, 1)

	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{"streak_files_scanned_total", OutcomeScanned, 2},
		{"streak_files_scanned_total", OutcomeFailed, 1},
		{"streak_regions_total", DecisionAccepted, 3},
		{"streak_regions_total", DecisionRejectedArea, 0},
		{"streak_normalization_failures_total", "", 1},
		{"streak_outliers_total", KindShort, 2},
		{"streak_outliers_total", KindLong, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, r, tt.name, tt.label); got != tt.want {
			t.Errorf("%s{%s}: got %g, want %g", tt.name, tt.label, got, tt.want)
		}
	}
}

func TestRecorder_Independent(t *testing.T) {
	a, b := New(), New()
	a.IncNormalizationFailure()
	if got := counterValue(t, b, "streak_normalization_failures_total", ""); got != 0 {
		t.Errorf("recorders share state: got %g", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveFile(time.Millisecond, OutcomeScanned)

	path := filepath.Join(t.TempDir(), "streak.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `streak_files_scanned_total{outcome="scanned"} 1`) {
		t.Errorf("textfile missing counter:\n%s", data)
	}
	if !strings.Contains(string(data), "streak_scan_seconds_count 1") {
		t.Errorf("textfile missing histogram:\n%s", data)
	}
}
