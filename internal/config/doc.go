// Package config owns the widget's persisted settings document.
//
// # Overview
//
// The document is a small TOML file holding the Canvas connection (base URL
// and API token) and two preferences (theme and poll interval):
//
//	base_url = 'https://school.instructure.com'
//	api_token = '...'
//	theme = 'auto'
//	poll_interval_seconds = 600
//
// A document without poll_interval_seconds gets 600. A value that is present
// must be between 1 and one week.
//
// Store is the single owner and the only writer. Other components receive a
// *Store and read through Current; nothing holds a package-level copy.
//
// # Location
//
// An explicit path may use ~ for the home directory. Without one the document
// lives at $XDG_CONFIG_HOME/gradewidget/config.toml. A redacted
// config.example.toml can be written alongside it with WriteTemplate; that is
// the file to share or commit, never the live one.
//
// # Writes
//
// Save validates first, then writes a temporary file in the same directory and
// renames it over the document while holding an advisory lock on
// <path>.lock. A process relaunched mid-save therefore sees either the old or
// the new document, never a partial one. Saving a Config identical to the
// loaded one does not touch the file.
//
// # Errors
//
//   - ErrConfigMissing: no document yet (first run)
//   - ErrConfigInvalid: parse failure or a field that fails Validate; the
//     concrete *ValidationError names the field
//
// ValidateConnection runs the configured Prober against candidate credentials
// so broken settings are rejected before they are persisted.
package config
