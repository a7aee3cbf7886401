package state

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAllCoursesFailed is recorded in Health when every enrollment fetch failed.
var ErrAllCoursesFailed = errors.New("every course fetch failed")

// Health tracks poll failures independently of the cached data.
type Health struct {
	LastError           error
	LastAttempt         time.Time
	LastSuccess         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when Canvas has been unreachable for multiple polls.
func (h Health) IsOffline() bool {
	return h.ConsecutiveFailures >= 2
}

// View is what subscribers receive: the current snapshot plus the advisory
// change-set and health. Seq increases with every cache write.
type View struct {
	Snapshot Snapshot
	Changed  []int64
	Health   Health
	Seq      uint64
}

// HasChanged reports whether courseID is in the change-set.
func (v View) HasChanged(courseID int64) bool {
	return slices.Contains(v.Changed, courseID)
}

func (v View) clone() View {
	v.Snapshot = v.Snapshot.Clone()
	v.Changed = slices.Clone(v.Changed)
	return v
}

type cacheEntry struct {
	cur     Snapshot
	prev    Snapshot
	changed []int64
	health  Health
	seq     uint64
}

// Cache holds the current Snapshot and the one before it. Reads never block;
// writes are serialized and swap the whole entry atomically.
type Cache struct {
	writeMu sync.Mutex
	entry   atomic.Pointer[cacheEntry]
}

var emptyEntry = &cacheEntry{}

func (c *Cache) load() *cacheEntry {
	if e := c.entry.Load(); e != nil {
		return e
	}
	return emptyEntry
}

// Current returns a copy of the last reconciled Snapshot, or the empty
// sentinel before the first one.
func (c *Cache) Current() Snapshot {
	return c.load().cur.Clone()
}

// Previous returns the Snapshot that Current replaced.
func (c *Cache) Previous() Snapshot {
	return c.load().prev.Clone()
}

// View returns the current View.
func (c *Cache) View() View {
	return viewOf(c.load()).clone()
}

// Replace installs snap as current and returns the resulting View.
func (c *Cache) Replace(snap Snapshot) View {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	old := c.load()
	snap = snap.Clone()
	next := &cacheEntry{
		cur:     snap,
		prev:    old.cur,
		changed: Changes(old.cur, snap),
		health:  old.health,
		seq:     old.seq + 1,
	}
	next.health.LastAttempt = snap.Timestamp
	if snap.Status == StatusFailed {
		next.health.ConsecutiveFailures++
		next.health.LastError = ErrAllCoursesFailed
	} else {
		next.health.ConsecutiveFailures = 0
		next.health.LastError = nil
		next.health.LastSuccess = snap.Timestamp
	}
	c.entry.Store(next)
	return viewOf(next).clone()
}

// RecordFailure notes a cycle that produced no Snapshot. Current is left
// untouched.
func (c *Cache) RecordFailure(err error, at time.Time) View {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	old := c.load()
	next := *old
	next.changed = nil
	next.health.LastError = err
	next.health.LastAttempt = at
	next.health.ConsecutiveFailures++
	next.seq = old.seq + 1
	c.entry.Store(&next)
	return viewOf(&next).clone()
}

func viewOf(e *cacheEntry) View {
	return View{
		Snapshot: e.cur,
		Changed:  e.changed,
		Health:   e.health,
		Seq:      e.seq,
	}
}
