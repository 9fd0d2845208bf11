// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Validates admin bearer tokens through core/auth and stores the claims
//     in the request locals. Applied to write routes and admin-only groups.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//
// RayID is registered globally; Auth is attached per route or route group by
// the features that need it.
package middleware
