package syncboard

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
)

// Broadcast summarises one completed broadcast cycle.
type Broadcast struct {
	// Range is the window read from the source chart.
	Range Range

	// Targets is the number of charts that accepted the range, including the
	// reference chart.
	Targets int

	// Skipped is the number of trackers excluded because they were hidden,
	// unrendered, stale or the source itself.
	Skipped int

	// Err joins the errors returned or panics raised by target charts.
	Err error
}

// OnRedraw is the synchronization entry point, called by a chart after each
// render through the hook installed by [Dashboard.ApplyDefaults].
//
// OnRedraw does nothing when initial is true (the chart's first automatic
// render) or when a broadcast cycle is already running (the nested redraw
// caused by the broadcast itself). Otherwise it reads the source chart's
// range and pushes it to every tracker that is visible, rendered, live and
// not the source, in registration order, and then to the reference chart.
//
// A failing target does not stop the cycle. Errors returned by targets are
// joined into the returned error; panics are recovered and reported the same
// way. The guard is released on every exit path.
func (d *Dashboard) OnRedraw(source ChartHandle, initial bool) error {
	if initial {
		return nil
	}

	release, ok := d.guard.acquire()
	if !ok {
		return nil
	}
	b, err := d.broadcast(source, release)
	if err != nil {
		return err
	}

	d.notify(b)
	return b.Err
}

// RedrawHook returns the [RedrawFunc] bound to this dashboard. Errors from
// [Dashboard.OnRedraw] are logged, since widgets do not consume them.
func (d *Dashboard) RedrawHook() RedrawFunc {
	return func(source ChartHandle, initial bool) {
		if err := d.OnRedraw(source, initial); err != nil {
			d.logger.Warn("range synchronization failed", "error", err)
		}
	}
}

// broadcast runs one cycle while holding the guard. It returns an error only
// when the source range cannot be read.
func (d *Dashboard) broadcast(source ChartHandle, release func()) (Broadcast, error) {
	defer release()

	if source == nil {
		return Broadcast{}, errors.New("redraw source chart is nil")
	}

	r, err := d.safeCurrentRange(source)
	if err != nil {
		return Broadcast{}, fmt.Errorf("failed to read source range: %w", err)
	}

	b := Broadcast{Range: r}
	var errs []error

	for _, s := range d.trackers.snapshot() {
		switch {
		case s.hidden, s.graph == nil, sameChart(s.graph, source):
			b.Skipped++
			continue
		case isStale(s.graph):
			d.logger.Debug("skipping stale chart", "tracker", s.name)
			b.Skipped++
			continue
		}

		if err := d.safeSetRange(s.graph, r); err != nil {
			errs = append(errs, fmt.Errorf("tracker %q: %w", s.name, err))
			continue
		}
		b.Targets++
	}

	// the reference chart is always written, even when it is the source
	if ref := d.Reference(); ref != nil {
		if err := d.safeSetRange(ref, r); err != nil {
			errs = append(errs, fmt.Errorf("reference chart: %w", err))
		} else {
			b.Targets++
		}
	}

	b.Err = errors.Join(errs...)

	d.logger.Debug("range broadcast",
		"start_ms", r.StartMillis(),
		"end_ms", r.EndMillis(),
		"targets", b.Targets,
		"skipped", b.Skipped,
	)

	return b, nil
}

// safeCurrentRange reads a chart's range with panic recovery.
func (d *Dashboard) safeCurrentRange(c ChartHandle) (r Range, err error) {
	defer d.recoverChartPanic("CurrentRange", &err)
	return c.CurrentRange()
}

// safeSetRange writes a chart's range with panic recovery.
func (d *Dashboard) safeSetRange(c ChartHandle, r Range) (err error) {
	defer d.recoverChartPanic("SetRange", &err)
	return c.SetRange(r)
}

// recoverChartPanic converts a panic raised by chart code into an error
// carrying a correlation ID. The full stack trace is logged.
func (d *Dashboard) recoverChartPanic(op string, err *error) {
	r := recover()
	if r == nil {
		return
	}

	correlationID := uuid.NewString()
	d.logger.Error("chart panic",
		"correlation_id", correlationID,
		"op", op,
		"panic", fmt.Sprintf("%v", r),
		"stack", string(debug.Stack()),
	)
	*err = fmt.Errorf("chart panic in %s (correlation_id: %s)", op, correlationID)
}

// notify invokes broadcast callbacks with panic recovery.
func (d *Dashboard) notify(b Broadcast) {
	for _, cb := range d.callbacks {
		d.invokeCallbackSafe(cb, b)
	}
}

func (d *Dashboard) invokeCallbackSafe(cb func(Broadcast), b Broadcast) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("broadcast callback panicked", "panic", r)
		}
	}()
	cb(b)
}
