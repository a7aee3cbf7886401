// Package logtail reads the end of the widget's log file for the diagnostics
// overlay.
//
// Read keeps a ring buffer of the last N lines, so the whole file is never
// held in memory. ParseLevel and Message pick fields out of lines written by
// slog's text handler; the UI uses them to color and shorten entries.
package logtail
