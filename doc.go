// Package syncboard keeps the visible time range of a set of time-series
// charts in step: panning or zooming one chart moves every other chart of the
// dashboard to the same window.
//
// syncboard is an SDK-first library. It does not draw charts; it coordinates
// any widget that implements [ChartHandle] and calls the redraw hook it was
// configured with.
//
// # Quick Start
//
// Create a dashboard, configure each chart with the dashboard defaults, and
// register it:
//
//	dash, _ := syncboard.New()
//
//	opts := dash.ApplyDefaults(&syncboard.ChartOptions{
//	    Legend: syncboard.Ptr(syncboard.LegendAlways),
//	})
//	tracker := dash.Track("CPU")
//
//	chart := newWidget(opts) // calls opts.DrawCallback after each render
//	tracker.Attach(chart)
//
// When the user pans the CPU chart, the widget redraws and calls the hook;
// the dashboard reads the CPU chart's range and sets it on every other
// visible, rendered chart.
//
// # Feedback Loops
//
// Setting a chart's range redraws it, which calls the hook again. The
// dashboard holds a guard for the whole broadcast cycle, so those nested calls
// return immediately. A chart's first render (initial draw) never
// broadcasts, so the dashboard's starting window is not overridden.
//
// # Reference Chart
//
// A reference chart set with [WithReferenceChart] or [Dashboard.SetReference]
// receives every broadcast range, hidden or not. It is meant for an overview
// or range-selector chart.
//
// # Payloads
//
// [BuildPayload] turns a date-range form into a [Payload] with epoch
// millisecond bounds and a map of selected field values. [FormValues] and
// [JSONForm] adapt maps and JSON documents to the [Form] interface.
//
// # Architecture
//
// The standalone binary (cmd/syncboard) adds a few internal packages:
//
//   - internal/chart: Headless chart widget implementing ChartHandle
//   - internal/store: In-memory chart state with pub/sub for live updates
//   - internal/follow: Keeps a chart's window ending at the current time
//   - internal/server: HTTP API and Server-Sent Events
//   - internal/board: Wires the above together from a config file
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package syncboard
