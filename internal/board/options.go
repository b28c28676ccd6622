package board

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jpalmerr/syncboard"
)

// ChartSpec describes one chart of the board.
type ChartSpec struct {
	// Name is the chart's display name, unique within the board.
	Name string

	// Hidden charts are drawn but excluded from range broadcasts.
	Hidden bool

	// Reference marks the overview chart that receives every broadcast
	// regardless of visibility. At most one chart may be the reference.
	Reference bool

	// Labels are metadata published with the chart state.
	Labels map[string]string

	// Options are caller choices; unset fields take dashboard defaults.
	Options syncboard.ChartOptions
}

type followSpec struct {
	interval time.Duration
	chart    string
}

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title    string
	port     int
	charts   []ChartSpec
	logger   *slog.Logger
	dashOpts []syncboard.Option
	follow   *followSpec
	assets   fs.FS
}

// Option configures a [Board] during construction.
type Option func(*boardConfig) error

// WithChart adds a chart to the board. Charts are drawn and registered in
// the order they are added.
//
// Returns an error if the name is empty.
func WithChart(spec ChartSpec) Option {
	return func(cfg *boardConfig) error {
		if spec.Name == "" {
			return errors.New("chart name cannot be empty")
		}
		cfg.charts = append(cfg.charts, spec)
		return nil
	}
}

// WithTitle sets the dashboard title shown in the browser.
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPort sets the HTTP port. Defaults to 8080; 0 picks a free port.
//
// Returns an error if port is outside 0 to 65535.
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("port must be between 0 and 65535, got %d", port)
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets the logger for the board and its dashboard.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithDashboardOptions passes options through to [syncboard.New].
func WithDashboardOptions(opts ...syncboard.Option) Option {
	return func(cfg *boardConfig) error {
		cfg.dashOpts = append(cfg.dashOpts, opts...)
		return nil
	}
}

// WithFollow keeps the named chart's window ending at the current time,
// sliding it every interval.
//
// Returns an error if interval is not positive or chart is empty.
func WithFollow(interval time.Duration, chart string) Option {
	return func(cfg *boardConfig) error {
		if interval <= 0 {
			return fmt.Errorf("follow interval must be positive, got %v", interval)
		}
		if chart == "" {
			return errors.New("follow chart cannot be empty")
		}
		cfg.follow = &followSpec{interval: interval, chart: chart}
		return nil
	}
}

// WithAssets overrides the embedded dashboard assets. A nil filesystem
// disables the dashboard page and leaves only the API.
func WithAssets(assets fs.FS) Option {
	return func(cfg *boardConfig) error {
		cfg.assets = assets
		return nil
	}
}
