// Package jobs implements background work that runs beside the HTTP server.
//
// SessionSweeper drops expired login sessions on a fixed interval. It
// follows the Start/Stop/RunOnce lifecycle: Start launches one goroutine,
// Stop closes it and waits, RunOnce performs a single pass on demand.
package jobs
