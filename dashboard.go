package syncboard

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultXAxisOffset = 40
	defaultLookback    = 14 * 24 * time.Hour
)

// Dashboard is the shared state behind a set of synchronized charts.
//
// A Dashboard is an explicit context object: create one per dashboard view
// with [New], pass it to every chart through [Dashboard.ApplyDefaults], and
// drop it when the view is torn down. It holds the initial date window, the
// axis formatter, the ordered [Tracker] registry, the optional reference
// chart, and the guard that keeps broadcast cycles from nesting.
//
// Registry and reference chart accessors are safe for concurrent use. The
// broadcast itself is designed for a single UI loop: a second cycle started
// while one is running is suppressed, not queued.
type Dashboard struct {
	dateWindow    Range
	xAxisOffset   int
	dateFormatter DateFormatter
	logger        *slog.Logger
	callbacks     []func(Broadcast)

	guard    redrawGuard
	trackers registry

	refMu     sync.RWMutex
	reference ChartHandle
}

// New creates a [Dashboard] with the given options.
//
// Defaults:
//   - Date window: the 14 days ending now
//   - X axis offset: 40
//   - Date formatter: [DefaultDateFormatter]
//   - Logger: [slog.Default]
//
// Returns an error if any option is invalid.
//
// Example:
//
//	dash, err := syncboard.New(
//	    syncboard.WithDateFormatter(syncboard.GranularFormatter()),
//	    syncboard.WithLogger(logger),
//	)
func New(opts ...Option) (*Dashboard, error) {
	cfg := &dashboardConfig{
		xAxisOffset:   defaultXAxisOffset,
		dateFormatter: DefaultDateFormatter,
		now:           time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	window := Range{}
	if cfg.dateWindow != nil {
		window = *cfg.dateWindow
	} else {
		now := cfg.now()
		window = Range{Start: now.Add(-defaultLookback), End: now}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dashboard{
		dateWindow:    window,
		xAxisOffset:   cfg.xAxisOffset,
		dateFormatter: cfg.dateFormatter,
		logger:        logger,
		callbacks:     cfg.callbacks,
		reference:     cfg.reference,
	}, nil
}

// DateWindow returns the window new charts start with.
func (d *Dashboard) DateWindow() Range {
	return d.dateWindow
}

// XAxisOffset returns the shared x-axis offset in pixels.
func (d *Dashboard) XAxisOffset() int {
	return d.xAxisOffset
}

// FormatAxis renders an axis label with the configured [DateFormatter].
func (d *Dashboard) FormatAxis(t time.Time, g Granularity) string {
	return d.dateFormatter(t, g)
}

// Track registers a chart slot and returns its [Tracker]. The chart handle
// is attached later, once the chart has rendered.
func (d *Dashboard) Track(name string) *Tracker {
	return d.trackers.add(name)
}

// Untrack removes a tracker from the registry. It reports whether the
// tracker was registered.
func (d *Dashboard) Untrack(t *Tracker) bool {
	return d.trackers.remove(t)
}

// Trackers returns the registered trackers in insertion order.
// The returned slice is a copy.
func (d *Dashboard) Trackers() []*Tracker {
	return d.trackers.list()
}

// Tracker returns the first tracker registered under name, or nil.
func (d *Dashboard) Tracker(name string) *Tracker {
	return d.trackers.find(name)
}

// SetReference designates the chart kept in sync with every broadcast
// regardless of visibility. A nil chart clears the designation.
func (d *Dashboard) SetReference(c ChartHandle) {
	d.refMu.Lock()
	d.reference = c
	d.refMu.Unlock()
}

// Reference returns the designated reference chart, or nil.
func (d *Dashboard) Reference() ChartHandle {
	d.refMu.RLock()
	defer d.refMu.RUnlock()
	return d.reference
}

// Broadcasting reports whether a broadcast cycle is in progress.
func (d *Dashboard) Broadcasting() bool {
	return d.guard.isHeld()
}
