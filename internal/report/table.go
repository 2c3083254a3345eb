// Package report accumulates per-file streak statistics, partitions files
// into events and no-events, and writes the run report.
package report

import (
	"sync"

	"github.com/ironsheep/streak-scanner/internal/classify"
)

// Header is the first line of the report file.
const Header = "filename | total streaks | short streaks | long streaks"

// FileStats are the counts of one scanned file.
type FileStats struct {
	Filename      string `json:"filename"`
	TotalAccepted int    `json:"total_accepted"`
	ShortOutliers int    `json:"short_outliers"`
	LongOutliers  int    `json:"long_outliers"`
}

// HasEvents reports whether the file holds at least one accepted streak.
func (s FileStats) HasEvents() bool {
	return s.TotalAccepted > 0
}

// Table holds one FileStats per scanned file in first-encounter order.
//
// Table is safe for concurrent use. Rows keep the order in which files were
// first registered, never a sorted order.
type Table struct {
	mu    sync.Mutex
	rows  []FileStats
	index map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Register adds a row for filename with the number of accepted streaks.
// Registering a filename again adds to its total and keeps its position.
func (t *Table) Register(filename string, accepted int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[filename]; ok {
		t.rows[i].TotalAccepted += accepted
		return
	}
	t.index[filename] = len(t.rows)
	t.rows = append(t.rows, FileStats{Filename: filename, TotalAccepted: accepted})
}

// ApplyClassification adds the outlier counts of a classification to the
// matching rows. Files absent from the table are ignored.
func (t *Table) ApplyClassification(c *classify.Classification) {
	if c == nil || c.Skipped {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for file, counts := range c.ByFile {
		i, ok := t.index[file]
		if !ok {
			continue
		}
		t.rows[i].ShortOutliers += counts.Short
		t.rows[i].LongOutliers += counts.Long
	}
}

// Rows returns a copy of the rows in first-encounter order.
func (t *Table) Rows() []FileStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FileStats, len(t.rows))
	copy(out, t.rows)
	return out
}

// Get returns the row for a filename.
func (t *Table) Get(filename string) (FileStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[filename]
	if !ok {
		return FileStats{}, false
	}
	return t.rows[i], true
}

// TotalAccepted sums TotalAccepted over all rows.
func (t *Table) TotalAccepted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, r := range t.rows {
		total += r.TotalAccepted
	}
	return total
}

// Partition splits the filenames into those with at least one accepted
// streak (events) and those with none (noEvents), both in row order. Every
// row lands in exactly one of the two lists.
func (t *Table) Partition() (events, noEvents []string) {
	events = make([]string, 0)
	noEvents = make([]string, 0)
	for _, r := range t.Rows() {
		if r.HasEvents() {
			events = append(events, r.Filename)
		} else {
			noEvents = append(noEvents, r.Filename)
		}
	}
	return events, noEvents
}
