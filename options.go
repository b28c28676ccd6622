package syncboard

import (
	"errors"
	"log/slog"
	"time"
)

// dashboardConfig holds mutable state during Dashboard construction.
type dashboardConfig struct {
	dateWindow    *Range
	xAxisOffset   int
	dateFormatter DateFormatter
	reference     ChartHandle
	logger        *slog.Logger
	now           func() time.Time
	callbacks     []func(Broadcast)
}

// Option is a function that configures a [Dashboard] during construction.
//
// Option implements the functional options pattern; options return an error
// if validation fails.
//
// Built-in options: [WithDateWindow], [WithXAxisOffset], [WithDateFormatter],
// [WithReferenceChart], [WithLogger], [WithClock], [WithBroadcastCallback].
type Option func(*dashboardConfig) error

// WithDateWindow sets the initial visible window handed to every chart
// configured through [Dashboard.ApplyDefaults].
//
// Defaults to the 14 days ending at construction time.
//
// Returns an error if the range does not start before it ends.
func WithDateWindow(r Range) Option {
	return func(cfg *dashboardConfig) error {
		if !r.Valid() {
			return ErrInvalidRange
		}
		cfg.dateWindow = &r
		return nil
	}
}

// WithXAxisOffset sets the pixel offset reserved left of the plotting area,
// shared by all charts so their x-axes line up. Defaults to 40.
//
// Returns an error if the offset is negative.
func WithXAxisOffset(px int) Option {
	return func(cfg *dashboardConfig) error {
		if px < 0 {
			return errors.New("x axis offset cannot be negative")
		}
		cfg.xAxisOffset = px
		return nil
	}
}

// WithDateFormatter sets the axis label formatter.
// Defaults to [DefaultDateFormatter].
//
// Returns an error if the formatter is nil.
func WithDateFormatter(f DateFormatter) Option {
	return func(cfg *dashboardConfig) error {
		if f == nil {
			return errors.New("date formatter cannot be nil")
		}
		cfg.dateFormatter = f
		return nil
	}
}

// WithReferenceChart designates the chart that receives every broadcast
// range regardless of visibility, typically an overview or range selector.
// It can also be set later with [Dashboard.SetReference].
func WithReferenceChart(c ChartHandle) Option {
	return func(cfg *dashboardConfig) error {
		cfg.reference = c
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Dashboard.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *dashboardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the time source used to compute the default date window.
//
// Returns an error if now is nil.
func WithClock(now func() time.Time) Option {
	return func(cfg *dashboardConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithBroadcastCallback registers a function called after every completed
// broadcast cycle, once the guard has been released.
//
// Callbacks run synchronously in registration order. Panics are recovered
// and logged. A callback that moves a chart starts a new broadcast cycle.
//
// Nil callbacks are silently ignored.
func WithBroadcastCallback(cb func(Broadcast)) Option {
	return func(cfg *dashboardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
