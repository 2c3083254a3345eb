// Package visualize persists per-streak plots: the brightness profile of the
// normalized streak and a diagram of its rotation angle.
//
// Output for streak n of file "frame.png" goes to
//
//	<dir>/frame/profile_<n>.png
//	<dir>/frame/reference_<n>.png
//
// Plot failures are logged and never affect the scan.
package visualize

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
	imgframe "github.com/ironsheep/streak-scanner/internal/imaging"
	"github.com/ironsheep/streak-scanner/internal/normalize"
	"github.com/ironsheep/streak-scanner/internal/pipeline"
)

// ProfileWriter is a pipeline.Observer that saves plots for every accepted
// streak.
type ProfileWriter struct {
	Dir       string
	DrawAngle bool
	Padding   float64
	Palette   Palette

	log *logrus.Logger
}

// NewProfileWriter creates a writer rooted at dir.
func NewProfileWriter(dir string, drawAngle bool, padding float64, log *logrus.Logger) *ProfileWriter {
	return &ProfileWriter{
		Dir:       dir,
		DrawAngle: drawAngle,
		Padding:   padding,
		Palette:   DefaultPalette(),
		log:       log,
	}
}

// OnStreakAccepted implements pipeline.Observer.
func (w *ProfileWriter) OnStreakAccepted(s pipeline.AcceptedStreak) {
	if err := w.Write(s); err != nil {
		w.log.WithFields(logrus.Fields{
			"file":   s.Filename,
			"region": s.Index,
		}).WithError(err).Warn("Cannot write streak plots")
	}
}

// Write saves the plots of one streak. The profile plot needs a normalized
// streak and is skipped without one; the angle diagram only needs the frame.
func (w *ProfileWriter) Write(s pipeline.AcceptedStreak) error {
	dir := w.FileDir(s.Filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewDirectoryError(dir, err)
	}

	if s.Streak != nil {
		title := fmt.Sprintf("%s streak %d", s.Filename, s.Index)
		plot := PlotProfile(s.Streak.Profile, title, w.Palette)
		path := filepath.Join(dir, fmt.Sprintf("profile_%d.png", s.Index))
		if err := imaging.Save(plot, path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}

	if !w.DrawAngle || s.Frame == nil {
		return nil
	}

	crop, bounds, err := w.referenceCrop(s)
	if err != nil {
		return err
	}
	diagram := AngleDiagram(crop, bounds, s.Region, w.Palette)
	path := filepath.Join(dir, fmt.Sprintf("reference_%d.png", s.Index))
	if err := imaging.Save(diagram, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// FileDir returns the output directory of one source file.
func (w *ProfileWriter) FileDir(filename string) string {
	base := filepath.Base(filename)
	return filepath.Join(w.Dir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// referenceCrop reuses the normalized crop when there is one and cuts the
// padded box from the frame otherwise.
func (w *ProfileWriter) referenceCrop(s pipeline.AcceptedStreak) (*imgframe.Frame, image.Rectangle, error) {
	if s.Streak != nil {
		return s.Streak.Crop, s.Streak.Bounds, nil
	}
	bounds := normalize.ExtendBBox(s.Region.BBox, w.Padding, s.Frame.Width, s.Frame.Height)
	crop, err := imgframe.CropFrame(s.Frame, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	if err != nil {
		return nil, bounds, err
	}
	return crop, bounds, nil
}
