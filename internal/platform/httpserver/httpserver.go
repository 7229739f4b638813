// Package httpserver builds the process's HTTP server with timeouts sized
// for the registration API, whose handlers are small JSON exchanges rather
// than streams or uploads.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given handler. Every request body is bounded
// by the handlers themselves, so the read and write timeouts here guard
// against stalled clients, not large payloads.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
