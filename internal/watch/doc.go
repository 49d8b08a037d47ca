// Package watch provides a live-reload workflow for declaration documents.
// It monitors the input document (and optional extra files) for changes,
// debounces rapid events, and re-runs the expansion pipeline automatically.
package watch
