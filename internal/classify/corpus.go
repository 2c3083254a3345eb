// Package classify holds the corpus of accepted streaks of one run and flags
// statistical length outliers across the whole corpus.
//
// Classification is two-phase. Every accepted streak of every file is
// collected first; only then are the corpus mean and population standard
// deviation computed and each streak compared against them. Each record
// keeps its own identity and source filename, so streaks of equal length in
// different files are counted independently.
package classify

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/streak-scanner/internal/detection"
)

// StreakRecord is one accepted region with its provenance.
type StreakRecord struct {
	ID       uuid.UUID        `json:"id"`
	Filename string           `json:"filename"`
	Index    int              `json:"index"` // 1-based within the file
	Region   detection.Region `json:"region"`
}

// NewStreakRecord creates a record with a fresh identity.
func NewStreakRecord(filename string, index int, region detection.Region) StreakRecord {
	return StreakRecord{
		ID:       uuid.New(),
		Filename: filename,
		Index:    index,
		Region:   region,
	}
}

// Length is the major axis length of the streak.
func (r StreakRecord) Length() float64 {
	return r.Region.MajorAxisLength
}

// HasLength reports whether the length can take part in classification.
func (r StreakRecord) HasLength() bool {
	l := r.Length()
	return !math.IsNaN(l) && !math.IsInf(l, 0)
}

// Corpus accumulates the StreakRecords of one run.
//
// Corpus is safe for concurrent use; per-file workers may add to it
// directly. A Corpus is built fresh for every run.
type Corpus struct {
	mu      sync.Mutex
	records []StreakRecord
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{records: make([]StreakRecord, 0)}
}

// Add appends records to the corpus.
func (c *Corpus) Add(records ...StreakRecord) {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
}

// Records returns a copy of the collected records in insertion order.
func (c *Corpus) Records() []StreakRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StreakRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of collected records.
func (c *Corpus) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
