// Package board assembles the standalone synchronized dashboard.
//
// A [Board] owns one [syncboard.Dashboard], a headless chart per configured
// chart, the chart-state store, an optional live follower, and the HTTP
// server. All chart interaction (initial draws, API pans, visibility
// changes, follower ticks) is serialized through a single lock that stands
// in for a browser's UI loop, so at most one broadcast cycle runs at a time.
package board
