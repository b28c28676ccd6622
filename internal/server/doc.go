// Package server provides the HTTP server for the syncboard dashboard and API.
//
// This package is internal to syncboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML dashboard at "/"
//   - REST API: JSON endpoints under "/api/charts" for chart state, chart
//     options, pans and visibility changes (huma on a chi router)
//   - Server-Sent Events: Real-time chart state updates at "/api/sse"
//
// Every request carries a request ID, is logged, and is shielded from
// handler panics by chi middleware.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
