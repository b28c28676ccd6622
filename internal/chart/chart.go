// Package chart provides a headless time-series chart widget.
//
// A [Chart] behaves like a browser chart as far as range synchronization is
// concerned: it keeps a visible window, re-renders synchronously whenever the
// window changes, and calls the redraw hook from its options after each
// render. Rendering publishes the chart's state to a [store.Store] instead of
// painting pixels.
package chart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/internal/store"
)

// ErrClosed is returned by a chart whose widget has been torn down.
var ErrClosed = errors.New("chart is closed")

// LabelFunc renders an axis label for a bound of the given window.
type LabelFunc func(t time.Time, window syncboard.Range) string

// Chart is a headless chart widget implementing [syncboard.ChartHandle].
//
// The redraw hook is always called without the chart's lock held, so the
// hook may read the chart's range back.
type Chart struct {
	name   string
	labels map[string]string
	store  store.Store
	label  LabelFunc
	now    func() time.Time
	hook   syncboard.RedrawFunc

	mu        sync.Mutex
	opts      syncboard.ChartOptions
	window    syncboard.Range
	drawn     bool
	closed    bool
	hidden    bool
	reference bool
	redraws   int
}

// Option configures a [Chart] during construction.
type Option func(*Chart)

// WithLabels attaches metadata labels published with the chart state.
func WithLabels(labels map[string]string) Option {
	return func(c *Chart) {
		c.labels = labels
	}
}

// WithLabelFunc sets the axis label renderer. Defaults to RFC 3339.
func WithLabelFunc(f LabelFunc) Option {
	return func(c *Chart) {
		if f != nil {
			c.label = f
		}
	}
}

// WithClock sets the time source for UpdatedAt. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Chart) {
		if now != nil {
			c.now = now
		}
	}
}

// AsReference marks the chart as the dashboard's reference chart in its
// published state.
func AsReference() Option {
	return func(c *Chart) {
		c.reference = true
	}
}

// New creates a chart from fully resolved options, typically the result of
// [syncboard.Dashboard.ApplyDefaults]. The chart starts at opts.DateWindow
// and does not render until [Chart.Draw] is called.
//
// Returns an error if the options carry no valid date window.
func New(name string, opts syncboard.ChartOptions, st store.Store, chartOpts ...Option) (*Chart, error) {
	if name == "" {
		return nil, errors.New("chart name cannot be empty")
	}
	if opts.DateWindow == nil {
		return nil, fmt.Errorf("chart %q: options have no date window", name)
	}
	if !opts.DateWindow.Valid() {
		return nil, fmt.Errorf("chart %q: %w", name, syncboard.ErrInvalidRange)
	}
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}

	c := &Chart{
		name:   name,
		store:  st,
		now:    time.Now,
		hook:   opts.DrawCallback,
		opts:   opts,
		window: *opts.DateWindow,
		label: func(t time.Time, _ syncboard.Range) string {
			return t.Format(time.RFC3339)
		},
	}
	for _, opt := range chartOpts {
		opt(c)
	}
	return c, nil
}

// Name returns the chart's name.
func (c *Chart) Name() string {
	return c.name
}

// Draw renders the chart. The first call is the initial draw; later calls
// are plain redraws.
func (c *Chart) Draw() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	initial := !c.drawn
	c.drawn = true
	c.renderLocked()
	c.mu.Unlock()

	c.fireHook(initial)
	return nil
}

// CurrentRange implements [syncboard.ChartHandle].
func (c *Chart) CurrentRange() (syncboard.Range, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return syncboard.Range{}, ErrClosed
	}
	return c.window, nil
}

// SetRange implements [syncboard.ChartHandle]. It moves the window and
// redraws, which calls the redraw hook.
func (c *Chart) SetRange(r syncboard.Range) error {
	if !r.Valid() {
		return fmt.Errorf("chart %q: %w", c.name, syncboard.ErrInvalidRange)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.window = r
	c.drawn = true
	c.renderLocked()
	c.mu.Unlock()

	c.fireHook(false)
	return nil
}

// SetHidden records the chart's visibility in its published state.
func (c *Chart) SetHidden(hidden bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hidden = hidden
	if c.drawn && !c.closed {
		c.publishLocked()
	}
}

// Options returns the chart's options with the date window set to the
// current window.
func (c *Chart) Options() syncboard.ChartOptions {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := c.opts
	window := c.window
	opts.DateWindow = &window
	return opts
}

// Live implements [syncboard.Liveness].
func (c *Chart) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close tears the widget down. Later calls to CurrentRange and SetRange
// fail with [ErrClosed].
func (c *Chart) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// renderLocked counts the render and publishes the new state.
func (c *Chart) renderLocked() {
	c.redraws++
	c.publishLocked()
}

func (c *Chart) publishLocked() {
	c.store.Update(store.ChartState{
		Name:       c.name,
		StartMs:    c.window.StartMillis(),
		EndMs:      c.window.EndMillis(),
		StartLabel: c.label(c.window.Start, c.window),
		EndLabel:   c.label(c.window.End, c.window),
		Hidden:     c.hidden,
		Reference:  c.reference,
		Labels:     c.labels,
		Redraws:    c.redraws,
		UpdatedAt:  c.now(),
	})
}

func (c *Chart) fireHook(initial bool) {
	if c.hook != nil {
		c.hook(c, initial)
	}
}
