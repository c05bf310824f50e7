// Package watch provides live reload of open viewers when a served model file
// changes on disk.
//
// This package implements:
//   - Polling file watcher for the served model files
//   - WebSocket hub that notifies connected viewers
//
// # Reload Protocol
//
// The viewer connects to /_modelview/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload", "file": "..."}   // model changed, reload the page
//	{"type": "error", "error": "..."}   // model disappeared
//
// The hub never blocks the caller's connection handling: after the upgrade
// each client is read on its own goroutine.
package watch
