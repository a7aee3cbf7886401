package state

import (
	"slices"
	"time"

	"github.com/juanzandev/CS487Project/internal/canvas"
)

// FetchStatus is the outcome of one poll cycle.
type FetchStatus string

const (
	StatusComplete FetchStatus = "complete"
	StatusPartial  FetchStatus = "partial"
	StatusFailed   FetchStatus = "failed"
)

// StatusFor classifies a cycle by how many of its course fetches failed.
func StatusFor(total, failed int) FetchStatus {
	switch {
	case failed <= 0:
		return StatusComplete
	case failed >= total:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Entry pairs a course with its grades. Err is set when the enrollment fetch
// failed, in which case every grade field is nil.
type Entry struct {
	Course     canvas.Course
	Enrollment canvas.Enrollment
	Err        string
}

// Failed reports whether the enrollment fetch for this course failed.
func (e Entry) Failed() bool {
	return e.Err != ""
}

// Snapshot is one internally consistent set of course and grade data.
type Snapshot struct {
	CycleID   string
	Timestamp time.Time
	Entries   []Entry
	Status    FetchStatus
}

// NewSnapshot builds a Snapshot ordered by course id and derives its status
// from the failed entries.
func NewSnapshot(cycleID string, ts time.Time, entries []Entry) Snapshot {
	sorted := cloneEntries(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		switch {
		case a.Course.ID < b.Course.ID:
			return -1
		case a.Course.ID > b.Course.ID:
			return 1
		}
		return 0
	})
	failed := 0
	for i := range sorted {
		if sorted[i].Failed() {
			failed++
			sorted[i].Enrollment = canvas.Enrollment{CourseID: sorted[i].Course.ID}
		}
	}
	return Snapshot{
		CycleID:   cycleID,
		Timestamp: ts,
		Entries:   sorted,
		Status:    StatusFor(len(sorted), failed),
	}
}

// Empty reports the "no data yet" sentinel returned before the first cycle.
func (s Snapshot) Empty() bool {
	return s.Timestamp.IsZero()
}

// Failures counts entries whose enrollment fetch failed.
func (s Snapshot) Failures() int {
	n := 0
	for _, e := range s.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}

// Entry looks up a course by id.
func (s Snapshot) Entry(courseID int64) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Course.ID == courseID {
			return e, true
		}
	}
	return Entry{}, false
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.Entries = cloneEntries(s.Entries)
	return s
}

func cloneEntries(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]Entry, len(entries))
	for i, e := range entries {
		e.Enrollment = e.Enrollment.Clone()
		dup[i] = e
	}
	return dup
}
