package syncboard

import "reflect"

// ChartHandle is the capability a chart widget exposes to the dashboard.
//
// The dashboard never owns a ChartHandle; it only keeps a reference through a
// [Tracker] or as the reference chart. Implementations must be comparable
// (typically pointer types) so that a chart can be recognised as the source
// of its own broadcast.
//
// SetRange is expected to redraw the chart synchronously, which in turn
// invokes the redraw hook installed by [Dashboard.ApplyDefaults]. The
// dashboard's guard turns that nested call into a no-op.
type ChartHandle interface {
	// CurrentRange returns the chart's visible x-axis window.
	CurrentRange() (Range, error)

	// SetRange moves the chart's visible x-axis window.
	SetRange(r Range) error
}

// Liveness is optionally implemented by a [ChartHandle] whose underlying
// widget can be torn down while a tracker still references it. Stale charts
// are skipped during broadcast instead of receiving the range.
type Liveness interface {
	Live() bool
}

// RedrawFunc is the hook a chart invokes after each render.
//
// initial is true for the chart's first automatic render.
type RedrawFunc func(source ChartHandle, initial bool)

// sameChart reports whether a and b refer to the same chart. Handles with
// non-comparable dynamic types are never considered equal.
func sameChart(a, b ChartHandle) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// isStale reports whether the chart declares itself torn down.
func isStale(c ChartHandle) bool {
	l, ok := c.(Liveness)
	return ok && !l.Live()
}
