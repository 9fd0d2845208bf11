// Package server holds the HTTP server configuration.
//
// While the start command wires the Fiber application, this package defines the
// settings it reads: listen port, CORS origins of the frontend, request body
// limit and the per-request timeout handed to storage and database calls.
package server
