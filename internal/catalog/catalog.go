// Package catalog lists the candidate images of a catalog directory and
// moves classified files into partition subdirectories.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
)

// DefaultPattern selects the candidate images of a catalog.
const DefaultPattern = "*.png"

// DefaultNoEventsDir is the subdirectory receiving files without streaks.
const DefaultNoEventsDir = "no_events"

// Scan returns the regular files directly inside dir whose base name matches
// pattern, sorted by name. Subdirectories are never descended into, so files
// already moved into a partition directory are not scanned again.
func Scan(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// MoveFiles moves the named files of catalogDir into catalogDir/subdir.
//
// The subdirectory is created if needed; an existing one is not an error.
// A failure to create it is returned as a directory error and nothing is
// moved. Individual rename failures do not stop the remaining moves; they
// are joined into the returned error.
func MoveFiles(catalogDir, subdir string, filenames []string) (int, error) {
	target := filepath.Join(catalogDir, filepath.Clean(subdir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return 0, apperrors.NewDirectoryError(target, err)
	}

	moved := 0
	var errs []error
	for _, name := range filenames {
		base := filepath.Base(name)
		if err := os.Rename(filepath.Join(catalogDir, base), filepath.Join(target, base)); err != nil {
			errs = append(errs, fmt.Errorf("failed to move %s: %w", base, err))
			continue
		}
		moved++
	}
	return moved, errors.Join(errs...)
}
