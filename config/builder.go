package config

import (
	"log/slog"
	"sort"
	"time"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/internal/board"
)

// BuildCharts converts parsed configuration into chart specs.
//
// It processes both direct charts and grids, returning direct charts first
// in file order, then grid charts. Grid dimensions are expanded via
// cartesian product.
func BuildCharts(cfg *Config) []board.ChartSpec {
	var charts []board.ChartSpec

	for _, cc := range cfg.Charts {
		charts = append(charts, buildChart(cc))
	}

	for _, gc := range cfg.Grids {
		charts = append(charts, buildGridCharts(gc)...)
	}

	return charts
}

// BuildOptions converts parsed configuration into board options, resolving
// a lookback window against now.
func BuildOptions(cfg *Config, now time.Time, logger *slog.Logger) []board.Option {
	opts := []board.Option{
		board.WithTitle(cfg.Title),
		board.WithPort(cfg.Port),
		board.WithDashboardOptions(dashboardOptions(cfg, now)...),
	}

	if logger != nil {
		opts = append(opts, board.WithLogger(logger))
	}

	for _, spec := range BuildCharts(cfg) {
		opts = append(opts, board.WithChart(spec))
	}

	if cfg.Follow != nil {
		opts = append(opts, board.WithFollow(cfg.Follow.Interval.Duration(), cfg.Follow.Chart))
	}

	return opts
}

func dashboardOptions(cfg *Config, now time.Time) []syncboard.Option {
	opts := []syncboard.Option{
		syncboard.WithClock(func() time.Time { return now }),
		syncboard.WithDateFormatter(DateFormatter(cfg.DateFormat)),
	}

	if cfg.XAxisOffset != nil {
		opts = append(opts, syncboard.WithXAxisOffset(*cfg.XAxisOffset))
	}
	if r, ok := cfg.Window.Range(now); ok {
		opts = append(opts, syncboard.WithDateWindow(r))
	}

	return opts
}

// DateFormatter resolves a date_format value to an axis formatter.
func DateFormatter(format string) syncboard.DateFormatter {
	switch format {
	case "", DateFormatDefault:
		return syncboard.DefaultDateFormatter
	case DateFormatGranular:
		return syncboard.GranularFormatter()
	case DateFormatRelative:
		return syncboard.RelativeFormatter(nil)
	default:
		return syncboard.LayoutFormatter(format)
	}
}

func buildChart(cc ChartConfig) board.ChartSpec {
	return board.ChartSpec{
		Name:      cc.Name,
		Hidden:    cc.Hidden,
		Reference: cc.Reference,
		Labels:    cc.Labels,
		Options:   cc.ChartStyle.options(),
	}
}

// options converts the YAML style into chart options, leaving unset
// fields nil so dashboard defaults apply.
func (s ChartStyle) options() syncboard.ChartOptions {
	opts := syncboard.ChartOptions{
		ShowLabelsOnHighlight: s.ShowLabelsOnHighlight,
		ShowRoller:            s.ShowRoller,
		RollPeriod:            s.RollPeriod,
		ShowRangeSelector:     s.ShowRangeSelector,
		XRangePad:             s.XRangePad,
		ErrorBars:             s.ErrorBars,
		PanEdgeFraction:       s.PanEdgeFraction,
	}

	if s.Legend != nil {
		opts.Legend = syncboard.Ptr(syncboard.Legend(*s.Legend))
	}
	if s.InteractionModel != nil {
		opts.InteractionModel = syncboard.Ptr(syncboard.InteractionModel(*s.InteractionModel))
	}
	if s.StrokeWidth != nil {
		opts.HighlightSeriesOpts = &syncboard.HighlightSeriesOptions{StrokeWidth: *s.StrokeWidth}
	}

	return opts
}

// buildGridCharts expands a GridConfig into multiple charts via cartesian product.
func buildGridCharts(gc GridConfig) []board.ChartSpec {
	combinations := cartesianProduct(gc.Dimensions)

	charts := make([]board.ChartSpec, 0, len(combinations))
	for _, combo := range combinations {
		// merge grid labels with dimension labels
		labels := make(map[string]string, len(gc.Labels)+len(combo))
		for k, v := range gc.Labels {
			labels[k] = v
		}
		for k, v := range combo {
			labels[k] = v
		}

		charts = append(charts, board.ChartSpec{
			Name:    buildGridName(gc.Name, combo),
			Hidden:  gc.Hidden,
			Labels:  labels,
			Options: gc.ChartStyle.options(),
		})
	}

	return charts
}

// buildGridName creates a display name for a grid chart.
func buildGridName(baseName string, combo map[string]string) string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(combo))
	for k := range combo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	name := baseName
	for _, k := range keys {
		name += " " + combo[k]
	}
	return name
}

// cartesianProduct generates all combinations of dimension values.
func cartesianProduct(dimensions map[string][]string) []map[string]string {
	if len(dimensions) == 0 {
		return nil
	}

	// sort dimension keys for deterministic ordering
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// start with single empty combination
	result := []map[string]string{{}}

	for _, key := range keys {
		values := dimensions[key]
		var newResult []map[string]string

		for _, combo := range result {
			for _, val := range values {
				newCombo := make(map[string]string, len(combo)+1)
				for k, v := range combo {
					newCombo[k] = v
				}
				newCombo[key] = val
				newResult = append(newResult, newCombo)
			}
		}
		result = newResult
	}

	return result
}
