package organize

import (
	"time"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/classify"
)

// DirectoryReport captures what one directory visit did and whether the
// post-move verification matched the pre-move expectation.
type DirectoryReport struct {
	Path     string
	Expected classify.Counts
	Actual   classify.Counts

	Converted          int
	ConversionSkips    int
	ConversionFailures int
	Moved              int
	MoveSkips          int
	MoveFailures       int

	Mismatch bool
}

// Report aggregates the directory reports of a whole organize run.
type Report struct {
	RunID      string
	Root       string
	Quality    int
	StartedAt  time.Time
	FinishedAt time.Time

	// Directories lists every visited directory that had at least one target
	// file, in completion (post-order) sequence.
	Directories []DirectoryReport
}

// Totals sums per-directory tallies across the run.
type Totals struct {
	Expected classify.Counts
	Actual   classify.Counts

	Converted          int
	ConversionSkips    int
	ConversionFailures int
	Moved              int
	MoveSkips          int
	MoveFailures       int

	Mismatches int
}

// Totals rolls the per-directory reports up into run-level tallies.
func (r *Report) Totals() Totals {
	var t Totals
	for _, d := range r.Directories {
		t.Expected.HEIC += d.Expected.HEIC
		t.Expected.MOV += d.Expected.MOV
		t.Expected.MP4 += d.Expected.MP4
		t.Actual.HEIC += d.Actual.HEIC
		t.Actual.MOV += d.Actual.MOV
		t.Actual.MP4 += d.Actual.MP4
		t.Converted += d.Converted
		t.ConversionSkips += d.ConversionSkips
		t.ConversionFailures += d.ConversionFailures
		t.Moved += d.Moved
		t.MoveSkips += d.MoveSkips
		t.MoveFailures += d.MoveFailures
		if d.Mismatch {
			t.Mismatches++
		}
	}
	return t
}
