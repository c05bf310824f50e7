// Package server runs ephemeral local HTTP servers that expose one model
// source each to the browser-based viewer.
//
// # Architecture
//
//   - Instance: one listener bound to a (host, port) key, served by a single
//     goroutine that handles one connection at a time
//   - Registry: the set of live instances, at most one per key
//
// # Instance Lifecycle
//
// An instance moves monotonically through
//
//	created -> running -> stop_requested -> stopped
//
// A bind failure moves it straight from created to stopped. Stop is
// idempotent and may be called from any goroutine.
//
// The accept loop wakes up every poll interval so a stop request is observed
// within one interval even when no client connects. Every connection carries
// exactly one request and is closed after the response, except WebSocket
// upgrades which are handed over to the live-reload hub.
//
// # Registry
//
// Serving on a key that is already in use stops the previous instance before
// the new one binds. The registry mutex is held across that stop-then-start,
// so no two instances ever own the same key.
//
//	reg := server.NewRegistry(nil)
//	src, _ := source.FromFile("squeezenet.onnx")
//	if _, err := reg.Serve(src, server.ServeOptions{Port: 8080, Browse: true}); err != nil {
//	    return err
//	}
//	return reg.Wait(ctx)
package server
