// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber app; this package only defines the
// settings it reads: listen port, API key and shutdown timeout.
package server
