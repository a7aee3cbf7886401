// Package poller runs refresh cycles against Canvas and writes the results
// to the grade cache.
//
// A cycle lists the active courses, fetches each enrollment with bounded
// parallelism and replaces the cached snapshot in one step. A failed course
// list leaves the cache alone and only records the failure.
//
// Timer and manual triggers share one single-flight guard. Manual refreshes
// skip the backoff delay; any number of them during a cycle collapse into one
// follow-up. After a failed cycle the next automatic attempt waits 2x, 4x, 8x
// the base interval up to the ceiling, and the first good cycle resets it.
package poller
