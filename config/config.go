// Package config provides YAML configuration parsing for the syncboard
// standalone server.
//
// This package enables running a synchronized dashboard as a standalone
// binary with a configuration file, as an alternative to wiring charts with
// the SDK.
//
// Example configuration:
//
//	title: Ops
//	port: 8080
//	date_format: granular
//
//	window:
//	  lookback: 336h
//
//	follow:
//	  interval: 30s
//	  chart: Overview
//
//	charts:
//	  - name: Overview
//	    reference: true
//	  - name: CPU
//	    legend: always
//
//	grids:
//	  - name: Latency
//	    dimensions:
//	      region: [us, eu]
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/syncboard"
)

const (
	defaultPort = 8080

	// minFollowInterval keeps live follow from re-rendering every chart in a
	// tight loop.
	minFollowInterval = 1 * time.Second
)

// Date format keywords accepted by date_format. Any other value is used as
// a Go time layout.
const (
	DateFormatDefault  = "default"
	DateFormatGranular = "granular"
	DateFormatRelative = "relative"
)

// Config is the root configuration structure for syncboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "SyncBoard" if not set.
	// Supports environment variable substitution.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// XAxisOffset is the pixel offset shared by all chart x-axes.
	// Defaults to 40.
	XAxisOffset *int `yaml:"x_axis_offset"`

	// DateFormat selects the axis label formatter: "default" (month/day),
	// "granular", "relative", or a Go time layout such as "Jan 2 15:04".
	DateFormat string `yaml:"date_format"`

	// Window is the initial visible window of every chart.
	Window WindowConfig `yaml:"window"`

	// Follow keeps one chart, and with it the dashboard, at the live edge.
	Follow *FollowConfig `yaml:"follow"`

	// Charts defines individual charts, drawn in order.
	Charts []ChartConfig `yaml:"charts"`

	// Grids defines chart grids that expand via cartesian product.
	Grids []GridConfig `yaml:"grids"`
}

// WindowConfig defines the initial date window.
//
// Either Lookback or both Start and End may be set. When nothing is set
// the window is the 14 days ending at startup.
type WindowConfig struct {
	// Lookback is the width of a window ending at startup, e.g. "24h".
	Lookback Duration `yaml:"lookback"`

	// Start and End are RFC 3339 timestamps. Environment variables are
	// expanded before parsing.
	Start string `yaml:"start"`
	End   string `yaml:"end"`

	start, end time.Time
}

// FollowConfig defines live follow.
type FollowConfig struct {
	// Interval is the time between slides. Must be at least 1s.
	Interval Duration `yaml:"interval"`

	// Chart is the name of the chart to slide. Grid charts are named by
	// their expanded names.
	Chart string `yaml:"chart"`
}

// ChartStyle holds the per-chart options that may be set in YAML. Unset
// fields take the dashboard defaults.
type ChartStyle struct {
	Legend                *string  `yaml:"legend"`
	InteractionModel      *string  `yaml:"interaction_model"`
	ShowLabelsOnHighlight *bool    `yaml:"show_labels_on_highlight"`
	ShowRoller            *bool    `yaml:"show_roller"`
	RollPeriod            *int     `yaml:"roll_period"`
	ShowRangeSelector     *bool    `yaml:"show_range_selector"`
	XRangePad             *float64 `yaml:"x_range_pad"`
	ErrorBars             *bool    `yaml:"error_bars"`
	StrokeWidth           *float64 `yaml:"stroke_width"`
	PanEdgeFraction       *float64 `yaml:"pan_edge_fraction"`
}

// ChartConfig defines a single chart.
type ChartConfig struct {
	// Name is the display name shown in the dashboard.
	Name string `yaml:"name"`

	// Reference marks the overview chart that follows every broadcast,
	// even while hidden. At most one chart may be the reference.
	Reference bool `yaml:"reference"`

	// Hidden charts are excluded from range broadcasts.
	Hidden bool `yaml:"hidden"`

	// Labels are metadata key-value pairs. Values support environment
	// variable substitution.
	Labels map[string]string `yaml:"labels"`

	ChartStyle `yaml:",inline"`
}

// GridConfig defines a chart grid that expands via cartesian product.
//
// For example, with dimensions {region: [us, eu], tier: [api, web]}, the
// grid expands to 4 charts: "Latency us api", "Latency us web", and so on.
type GridConfig struct {
	// Name is the base name for generated charts.
	Name string `yaml:"name"`

	// Dimensions maps dimension names to their possible values.
	// The cartesian product of all dimensions generates the charts.
	Dimensions map[string][]string `yaml:"dimensions"`

	// Hidden applies to all generated charts.
	Hidden bool `yaml:"hidden"`

	// Labels are additional labels applied to all generated charts.
	// These are merged with auto-generated dimension labels.
	Labels map[string]string `yaml:"labels"`

	ChartStyle `yaml:",inline"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Range returns the configured window for a dashboard started at now, and
// false if the default window should be used.
func (w WindowConfig) Range(now time.Time) (syncboard.Range, bool) {
	switch {
	case w.Lookback != 0:
		return syncboard.Range{Start: now.Add(-w.Lookback.Duration()), End: now}, true
	case !w.start.IsZero():
		return syncboard.Range{Start: w.start, End: w.end}, true
	default:
		return syncboard.Range{}, false
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded after parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the title, label values and window
// timestamps. Port defaults to 8080.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = title

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.XAxisOffset != nil && *c.XAxisOffset < 0 {
		return fmt.Errorf("x_axis_offset cannot be negative, got %d", *c.XAxisOffset)
	}

	if err := c.Window.validate(); err != nil {
		return fmt.Errorf("window: %w", err)
	}

	if c.Follow != nil {
		if c.Follow.Chart == "" {
			return errors.New("follow: chart is required")
		}
		if c.Follow.Interval.Duration() < minFollowInterval {
			return fmt.Errorf("follow: interval must be at least %s, got %s",
				minFollowInterval, c.Follow.Interval.Duration())
		}
	}

	references := 0
	for i := range c.Charts {
		ch := &c.Charts[i]
		context := fmt.Sprintf("charts[%d]", i)

		if ch.Name == "" {
			return fmt.Errorf("%s: name is required", context)
		}
		context = fmt.Sprintf("charts[%d] (%s)", i, ch.Name)

		if ch.Reference {
			references++
		}
		if err := expandLabels(ch.Labels, context); err != nil {
			return err
		}
		if err := ch.ChartStyle.validate(context); err != nil {
			return err
		}
	}
	if references > 1 {
		return fmt.Errorf("at most one chart may be the reference, got %d", references)
	}

	for i := range c.Grids {
		g := &c.Grids[i]

		if g.Name == "" {
			return fmt.Errorf("grids[%d]: name is required", i)
		}
		context := fmt.Sprintf("grids[%d] (%s)", i, g.Name)

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("%s: at least one dimension is required", context)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("%s: dimension %q has no values", context, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("%s: dimension %q has duplicate value %q", context, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		if err := expandLabels(g.Labels, context); err != nil {
			return err
		}
		if err := g.ChartStyle.validate(context); err != nil {
			return err
		}
	}

	if len(c.Charts) == 0 && len(c.Grids) == 0 {
		return errors.New("at least one chart or grid must be defined")
	}

	return nil
}

func (w *WindowConfig) validate() error {
	hasBounds := w.Start != "" || w.End != ""

	if w.Lookback != 0 {
		if hasBounds {
			return errors.New("lookback cannot be combined with start/end")
		}
		if w.Lookback.Duration() < 0 {
			return fmt.Errorf("lookback cannot be negative, got %s", w.Lookback.Duration())
		}
		return nil
	}
	if !hasBounds {
		return nil
	}
	if w.Start == "" || w.End == "" {
		return errors.New("start and end must be set together")
	}

	start, err := parseTimestamp("start", w.Start)
	if err != nil {
		return err
	}
	end, err := parseTimestamp("end", w.End)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("start %s must be before end %s", w.Start, w.End)
	}

	w.start, w.end = start, end
	return nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	expanded, err := expandEnvVars(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	t, err := time.Parse(time.RFC3339, expanded)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid RFC 3339 timestamp %q", field, expanded)
	}
	return t, nil
}

func expandLabels(labels map[string]string, context string) error {
	for k, v := range labels {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("%s: labels[%s]: %w", context, k, err)
		}
		labels[k] = expanded
	}
	return nil
}

// validate checks enumerated and ranged chart options.
func (s *ChartStyle) validate(context string) error {
	if s.Legend != nil {
		switch syncboard.Legend(*s.Legend) {
		case syncboard.LegendNever, syncboard.LegendAlways, syncboard.LegendOnMouseOver, syncboard.LegendFollow:
		default:
			return fmt.Errorf("%s: legend must be never, always, onmouseover, or follow, got %q", context, *s.Legend)
		}
	}

	if s.InteractionModel != nil {
		switch syncboard.InteractionModel(*s.InteractionModel) {
		case syncboard.InteractionDragIsPan, syncboard.InteractionDefault:
		default:
			return fmt.Errorf("%s: interaction_model must be dragIsPan or default, got %q", context, *s.InteractionModel)
		}
	}

	if s.RollPeriod != nil && *s.RollPeriod < 0 {
		return fmt.Errorf("%s: roll_period cannot be negative, got %d", context, *s.RollPeriod)
	}
	if s.StrokeWidth != nil && *s.StrokeWidth <= 0 {
		return fmt.Errorf("%s: stroke_width must be positive, got %g", context, *s.StrokeWidth)
	}
	if s.XRangePad != nil && *s.XRangePad < 0 {
		return fmt.Errorf("%s: x_range_pad cannot be negative, got %g", context, *s.XRangePad)
	}
	if s.PanEdgeFraction != nil && (*s.PanEdgeFraction <= 0 || *s.PanEdgeFraction > 1) {
		return fmt.Errorf("%s: pan_edge_fraction must be in (0, 1], got %g", context, *s.PanEdgeFraction)
	}

	return nil
}
