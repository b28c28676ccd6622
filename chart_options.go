package syncboard

// InteractionModel selects how mouse gestures move a chart.
type InteractionModel string

const (
	// InteractionDragIsPan pans on drag and never zooms by drag.
	InteractionDragIsPan InteractionModel = "dragIsPan"

	// InteractionDefault zooms on drag and pans on shift-drag.
	InteractionDefault InteractionModel = "default"
)

// Legend controls when a chart shows its legend.
type Legend string

const (
	LegendNever       Legend = "never"
	LegendAlways      Legend = "always"
	LegendOnMouseOver Legend = "onmouseover"
	LegendFollow      Legend = "follow"
)

// HighlightSeriesOptions styles the series under the cursor.
type HighlightSeriesOptions struct {
	StrokeWidth float64 `json:"strokeWidth"`
}

// ChartOptions is the configuration a participating chart is built with.
//
// Every field is optional: a nil field is "left as default" and is filled by
// [Dashboard.ApplyDefaults]; a non-nil field is the caller's choice and is
// never overwritten. JSON names follow the dygraphs option names so the
// options can be handed to a browser chart as-is.
type ChartOptions struct {
	HighlightSeriesOpts   *HighlightSeriesOptions `json:"highlightSeriesOpts,omitempty"`
	InteractionModel      *InteractionModel       `json:"interactionModel,omitempty"`
	ShowLabelsOnHighlight *bool                   `json:"showLabelsOnHighlight,omitempty"`
	Legend                *Legend                 `json:"legend,omitempty"`
	ShowRoller            *bool                   `json:"showRoller,omitempty"`
	RollPeriod            *int                    `json:"rollPeriod,omitempty"`
	ShowRangeSelector     *bool                   `json:"showRangeSelector,omitempty"`
	DrawCallback          RedrawFunc              `json:"-"`
	DateWindow            *Range                  `json:"dateWindow,omitempty"`
	XRangePad             *float64                `json:"xRangePad,omitempty"`
	ErrorBars             *bool                   `json:"errorBars,omitempty"`

	// PanEdgeFraction limits how far past its data a chart can be panned.
	// The default of 1.0 allows panning fully to the data edge; charts whose
	// data covers different time spans then disagree at the edges, so
	// callers should keep the domains of participating charts consistent.
	PanEdgeFraction *float64 `json:"panEdgeFraction,omitempty"`
}

// Ptr returns a pointer to v, for filling optional [ChartOptions] fields.
func Ptr[T any](v T) *T {
	return &v
}

// ApplyDefaults fills every unset field of target with the dashboard
// default and returns target. Fields already set are left untouched. A nil
// target is replaced by a new [ChartOptions].
//
// The merge is one-time: the date window is copied, and the draw callback
// is bound to this dashboard at the time of the call.
//
// Defaults:
//   - HighlightSeriesOpts: stroke width 2
//   - InteractionModel: [InteractionDragIsPan]
//   - ShowLabelsOnHighlight, ShowRoller, ShowRangeSelector, ErrorBars: false
//   - Legend: [LegendNever]
//   - RollPeriod: 0
//   - DrawCallback: [Dashboard.RedrawHook]
//   - DateWindow: [Dashboard.DateWindow]
//   - XRangePad: 0
//   - PanEdgeFraction: 1.0
func (d *Dashboard) ApplyDefaults(target *ChartOptions) *ChartOptions {
	if target == nil {
		target = &ChartOptions{}
	}

	if target.HighlightSeriesOpts == nil {
		target.HighlightSeriesOpts = &HighlightSeriesOptions{StrokeWidth: 2}
	}
	if target.InteractionModel == nil {
		target.InteractionModel = Ptr(InteractionDragIsPan)
	}
	if target.ShowLabelsOnHighlight == nil {
		target.ShowLabelsOnHighlight = Ptr(false)
	}
	if target.Legend == nil {
		target.Legend = Ptr(LegendNever)
	}
	if target.ShowRoller == nil {
		target.ShowRoller = Ptr(false)
	}
	if target.RollPeriod == nil {
		target.RollPeriod = Ptr(0)
	}
	if target.ShowRangeSelector == nil {
		target.ShowRangeSelector = Ptr(false)
	}
	if target.DrawCallback == nil {
		target.DrawCallback = d.RedrawHook()
	}
	if target.DateWindow == nil {
		target.DateWindow = Ptr(d.dateWindow)
	}
	if target.XRangePad == nil {
		target.XRangePad = Ptr(0.0)
	}
	if target.ErrorBars == nil {
		target.ErrorBars = Ptr(false)
	}
	if target.PanEdgeFraction == nil {
		target.PanEdgeFraction = Ptr(1.0)
	}

	return target
}

// DefaultChartOptions returns a fresh [ChartOptions] with every field set to
// the dashboard default.
func (d *Dashboard) DefaultChartOptions() ChartOptions {
	return *d.ApplyDefaults(nil)
}
