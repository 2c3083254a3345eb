package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/streak-scanner/internal/detection"
	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pattern != "*.png" {
		t.Errorf("Pattern: got %q", cfg.Pattern)
	}
	if cfg.Report != "analytics.txt" {
		t.Errorf("Report: got %q", cfg.Report)
	}
	if cfg.MinArea != 100 {
		t.Errorf("MinArea: got %d, want 100", cfg.MinArea)
	}
	if cfg.Padding != 0.1 {
		t.Errorf("Padding: got %g, want 0.1", cfg.Padding)
	}
	if cfg.Threshold.Policy != detection.PolicyOtsu || cfg.Threshold.OtsuDivisor != 5 {
		t.Errorf("Threshold: got %+v", cfg.Threshold)
	}
	if !cfg.Profiles.Enabled || !cfg.Partition.Enabled || cfg.Partition.Dir != "no_events" {
		t.Errorf("Profiles/Partition: got %+v %+v", cfg.Profiles, cfg.Partition)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers: got %d", cfg.Workers)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MinArea != detection.DefaultMinArea {
		t.Errorf("expected defaults, got MinArea=%d", cfg.MinArea)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	content := `
catalog: /data/night1
minArea: 50
threshold:
  policy: max-fraction
profiles:
  drawAngle: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Catalog != "/data/night1" || cfg.MinArea != 50 {
		t.Errorf("got catalog=%q minArea=%d", cfg.Catalog, cfg.MinArea)
	}
	if cfg.Threshold.Policy != detection.PolicyMaxFraction {
		t.Errorf("Policy: got %q", cfg.Threshold.Policy)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Threshold.MaxFraction != detection.DefaultMaxFraction || !cfg.Profiles.Enabled {
		t.Errorf("defaults lost: %+v %+v", cfg.Threshold, cfg.Profiles)
	}
	if cfg.Profiles.DrawAngle {
		t.Error("DrawAngle should be false")
	}

	policy, err := cfg.ThresholdPolicy()
	if err != nil {
		t.Fatalf("ThresholdPolicy failed: %v", err)
	}
	if mf, ok := policy.(detection.MaxFractionPolicy); !ok || mf.Fraction != detection.DefaultMaxFraction {
		t.Errorf("policy: got %#v", policy)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("minArea: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scan.yaml")
	cfg := DefaultConfig()
	cfg.Catalog = "/data"
	cfg.Padding = 0.25

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Catalog != "/data" || loaded.Padding != 0.25 {
		t.Errorf("got %+v", loaded)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvWorkers, "3")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.Logging.Level != "debug" || cfg.Workers != 3 {
		t.Errorf("got level=%q workers=%d", cfg.Logging.Level, cfg.Workers)
	}

	t.Setenv(EnvWorkers, "many")
	cfg = DefaultConfig()
	want := cfg.Workers
	cfg.ApplyEnv()
	if cfg.Workers != want {
		t.Errorf("malformed workers override applied: got %d", cfg.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no catalog", func(c *Config) { c.Catalog = "" }, false},
		{"zero min area", func(c *Config) { c.MinArea = 0 }, false},
		{"negative padding", func(c *Config) { c.Padding = -0.1 }, false},
		{"unknown policy", func(c *Config) { c.Threshold.Policy = "triangle" }, false},
		{"zero divisor", func(c *Config) { c.Threshold.OtsuDivisor = 0 }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, false},
		{"empty partition dir", func(c *Config) { c.Partition.Dir = "" }, false},
		{"partition disabled", func(c *Config) { c.Partition.Enabled = false; c.Partition.Dir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Catalog = "/data"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !apperrors.IsType(err, apperrors.ErrorTypeConfig) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog = "/data"

	if got := cfg.ReportPath(); got != filepath.Join("/data", "analytics.txt") {
		t.Errorf("ReportPath: got %s", got)
	}
	cfg.Report = "/tmp/out.txt"
	if got := cfg.ReportPath(); got != "/tmp/out.txt" {
		t.Errorf("absolute ReportPath: got %s", got)
	}
	if got := cfg.ProfilesDir(); got != filepath.Join("/data", "brightness_profile") {
		t.Errorf("ProfilesDir: got %s", got)
	}
	cfg.Profiles.Dir = "/plots"
	if got := cfg.ProfilesDir(); got != "/plots" {
		t.Errorf("explicit ProfilesDir: got %s", got)
	}
}
