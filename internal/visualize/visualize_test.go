package visualize

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/streak-scanner/internal/detection"
	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
	"github.com/ironsheep/streak-scanner/internal/imaging"
	"github.com/ironsheep/streak-scanner/internal/logger"
	"github.com/ironsheep/streak-scanner/internal/normalize"
	"github.com/ironsheep/streak-scanner/internal/pipeline"
)

// createStreak builds a frame with one horizontal bar and its accepted streak
func createStreak(t *testing.T) pipeline.AcceptedStreak {
	t.Helper()
	f := imaging.NewFrame(120, 80, 8)
	for y := 30; y < 36; y++ {
		for x := 20; x < 100; x++ {
			f.Set(x, y, 220)
		}
	}
	seg := detection.NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("segmenter found %d regions, want 1", len(seg.Regions))
	}
	region := seg.Regions[0]
	streak, err := normalize.Normalize(f, region, normalize.DefaultPadding)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return pipeline.AcceptedStreak{
		Filename: "frame_001.png",
		Index:    1,
		Frame:    f,
		Region:   region,
		Streak:   streak,
	}
}

// countColor counts the pixels of img equal to c
func countColor(img *image.RGBA, c [3]uint8) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.RGBAAt(x, y)
			if p.R == c[0] && p.G == c[1] && p.B == c[2] {
				n++
			}
		}
	}
	return n
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    [3]uint8
		wantErr bool
	}{
		{"#ff0000", [3]uint8{255, 0, 0}, false},
		{"#1f77b4", [3]uint8{0x1f, 0x77, 0xb4}, false},
		{"#fff", [3]uint8{255, 255, 255}, false},
		{"red", [3]uint8{}, true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.hex)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.hex)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.hex, err)
			continue
		}
		if got.R != tt.want[0] || got.G != tt.want[1] || got.B != tt.want[2] || got.A != 255 {
			t.Errorf("%s: got %v, want %v", tt.hex, got, tt.want)
		}
	}
}

func TestUpscaleFactor(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{300, 20, 1},
		{64, 10, 4},
		{10, 5, 8},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := upscaleFactor(tt.w, tt.h); got != tt.want {
			t.Errorf("upscaleFactor(%d,%d): got %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestPlotProfile(t *testing.T) {
	pal := DefaultPalette()
	line := [3]uint8{pal.Line.R, pal.Line.G, pal.Line.B}

	profile := make([]float64, 50)
	for i := range profile {
		profile[i] = math.Sin(float64(i) / 8)
	}

	img := PlotProfile(profile, "frame streak 1", pal)
	if img.Bounds().Dx() != PlotWidth || img.Bounds().Dy() != PlotHeight {
		t.Errorf("size: got %v", img.Bounds())
	}
	if countColor(img, line) == 0 {
		t.Error("profile line not drawn")
	}

	// Degenerate inputs render axes only, without panicking.
	for _, p := range [][]float64{nil, {5}, {3, 3, 3}} {
		img := PlotProfile(p, "", pal)
		if img.Bounds().Dx() != PlotWidth {
			t.Errorf("profile %v: size %v", p, img.Bounds())
		}
	}
}

func TestAngleDiagram_ArrowDirection(t *testing.T) {
	pal := DefaultPalette()
	crop := imaging.NewFrame(60, 60, 8)
	bounds := image.Rect(0, 0, 60, 60)

	tests := []struct {
		name        string
		orientation float64
		hit, miss   image.Point
	}{
		// 5x upscale: centroid at (152,152), half-length 100.
		{"rising", math.Pi / 4, image.Pt(223, 82), image.Pt(223, 223)},
		{"falling", -math.Pi / 4, image.Pt(223, 223), image.Pt(223, 82)},
		{"level", 0, image.Pt(252, 152), image.Pt(223, 82)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := detection.Region{
				CentroidRow:     30,
				CentroidCol:     30,
				MajorAxisLength: 40,
				MinorAxisLength: 4,
				Orientation:     tt.orientation,
			}
			img := AngleDiagram(crop, bounds, r, pal)
			if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 300 {
				t.Fatalf("size: got %v, want 300x300", img.Bounds())
			}
			if got := img.RGBAAt(tt.hit.X, tt.hit.Y); got != pal.Arrow {
				t.Errorf("pixel %v: got %v, want arrow color", tt.hit, got)
			}
			if got := img.RGBAAt(tt.miss.X, tt.miss.Y); got == pal.Arrow {
				t.Errorf("pixel %v should not be on the arrow", tt.miss)
			}
		})
	}
}

func TestProfileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	s := createStreak(t)

	w := NewProfileWriter(dir, true, normalize.DefaultPadding, logger.Discard())
	w.OnStreakAccepted(s)

	for _, name := range []string{"profile_1.png", "reference_1.png"} {
		path := filepath.Join(dir, "frame_001", name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestProfileWriter_NoAngleNoStreak(t *testing.T) {
	dir := t.TempDir()
	s := createStreak(t)
	s.Index = 2

	w := NewProfileWriter(dir, false, normalize.DefaultPadding, logger.Discard())
	if err := w.Write(s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_001", "reference_2.png")); !os.IsNotExist(err) {
		t.Error("reference diagram written although disabled")
	}

	// Without a normalized streak only the diagram is drawn.
	s.Streak = nil
	s.Index = 3
	w.DrawAngle = true
	if err := w.Write(s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_001", "profile_3.png")); !os.IsNotExist(err) {
		t.Error("profile written without a normalized streak")
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_001", "reference_3.png")); err != nil {
		t.Errorf("reference diagram missing: %v", err)
	}
}

func TestProfileWriter_DirectoryError(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "plots")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewProfileWriter(blocker, true, normalize.DefaultPadding, logger.Discard())
	err := w.Write(createStreak(t))
	if !apperrors.IsType(err, apperrors.ErrorTypeDirectory) {
		t.Errorf("error: got %v, want directory error", err)
	}
}
