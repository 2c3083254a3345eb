package pipeline

import (
	"github.com/ironsheep/streak-scanner/internal/detection"
	"github.com/ironsheep/streak-scanner/internal/imaging"
	"github.com/ironsheep/streak-scanner/internal/normalize"
)

// AcceptedStreak is handed to the Observer once per accepted region.
type AcceptedStreak struct {
	// Filename is the base name of the source file.
	Filename string

	// Index is the 1-based position of the region among the accepted
	// regions of its file.
	Index int

	Frame  *imaging.Frame
	Region detection.Region

	// Streak is the normalized streak, or nil when normalization failed.
	Streak *normalize.Streak
}

// Observer receives every accepted streak of a run. It may be called from
// several workers at once. The run never depends on what it does.
type Observer interface {
	OnStreakAccepted(s AcceptedStreak)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s AcceptedStreak)

// OnStreakAccepted implements Observer.
func (f ObserverFunc) OnStreakAccepted(s AcceptedStreak) {
	f(s)
}
