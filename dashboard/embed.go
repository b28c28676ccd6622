// Package dashboard holds the browser UI of the standalone SyncBoard server,
// compiled into the binary with go:embed.
//
// The page lists every chart from /api/charts, pans, zooms and hides charts
// through the chart API, and applies the state changes streamed from
// /api/sse, so a pan in one browser tab moves the charts in every other tab.
package dashboard

import "embed"

// Assets contains assets/index.html, a single page with inline CSS and
// JavaScript. The server renders it at "/" after substituting {{.Title}}.
//
//go:embed assets/*
var Assets embed.FS
