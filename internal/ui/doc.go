// Package ui is the terminal panel for the grade widget, built on Bubble Tea.
//
// # Event Flow
//
//  1. Run() starts the program with the resolved palette
//  2. waitForView blocks on the publisher subscription and turns each
//     state.View into a viewMsg; nothing here reads the cache directly
//  3. Key presses call back into the app (Refresh, Save) through Options
//  4. Context cancellation, including a theme restart, ends the program
//
// # Panels
//
//   - Grades: one card per course, changed courses highlighted, status line
//     with the last update time and the current error
//   - Settings: URL, token, theme and refresh interval; the same form is the
//     first-run wizard when no settings exist
//   - Diagnostics: poller metrics and the tail of the widget log
//   - Help: key reference
//
// # Key Bindings
//
//   - r: Refresh now
//   - s: Settings
//   - d: Diagnostics
//   - h or ?: Help
//   - q or Ctrl+C: Quit
//
// The palette is fixed for the life of the process. A theme change is saved
// and then applied by restarting.
package ui
