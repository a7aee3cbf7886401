// Package state holds the grade cache shared by the poller and its readers.
//
// # Overview
//
// The poller is the only writer. Everything else (the publisher, the UI,
// headless output) reads:
//
//	Poller:                          Readers:
//	┌──────────────────────┐        ┌──────────────────┐
//	│ FetchCourses()       │        │                  │
//	│ FetchEnrollment() xN │        │                  │
//	│      ↓               │        │                  │
//	│ NewSnapshot()        │        │                  │
//	│ cache.Replace()      │───────→│ cache.Current()  │
//	│   or RecordFailure() │(atomic)│ cache.View()     │
//	└──────────────────────┘        └──────────────────┘
//
// # Core Types
//
// Snapshot is immutable once built: a timestamp, entries ordered by course id
// and a FetchStatus of complete, partial or failed. The zero Snapshot is the
// "no data yet" sentinel (Empty reports true).
//
// Cache keeps exactly the current Snapshot and the previous one, never a
// history. The previous one exists only to compute Changes, the set of
// courses whose grades moved between two cycles, for highlighting.
//
// View bundles the current Snapshot with that change-set, a Health record
// (consecutive failures, last error, last attempt) and a sequence number that
// increases on every write. The publisher uses Seq to keep delivery monotonic.
//
// # Concurrency Model
//
// Writes build a new immutable entry and swap it in with an atomic pointer,
// so readers never take a lock and never see a half-built Snapshot. All reads
// return deep copies.
//
// # Failure Semantics
//
// A cycle that could not list courses calls RecordFailure: health changes,
// the Snapshot does not, so the UI keeps showing the last good data. A cycle
// in which every course failed is still installed with StatusFailed because
// the course list itself is fresh.
package state
