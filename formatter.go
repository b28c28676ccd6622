package syncboard

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Granularity is the tick spacing hint a chart passes to its axis label
// formatter.
type Granularity int

const (
	Millisecondly Granularity = iota
	Secondly
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Annual
)

var granularityNames = [...]string{
	Millisecondly: "millisecondly",
	Secondly:      "secondly",
	Minutely:      "minutely",
	Hourly:        "hourly",
	Daily:         "daily",
	Weekly:        "weekly",
	Monthly:       "monthly",
	Annual:        "annual",
}

// String returns the lower-case name of the granularity.
func (g Granularity) String() string {
	if g < 0 || int(g) >= len(granularityNames) {
		return "unknown"
	}
	return granularityNames[g]
}

// ParseGranularity returns the granularity with the given name.
func ParseGranularity(s string) (Granularity, bool) {
	for i, name := range granularityNames {
		if name == s {
			return Granularity(i), true
		}
	}
	return 0, false
}

// DateFormatter maps an x-axis timestamp to its label.
//
// DateFormatter must be a pure function. It is used only for axis labels and
// never takes part in range synchronization.
type DateFormatter func(t time.Time, g Granularity) string

// defaultDateLayout renders month/day without padding, e.g. "3/7".
const defaultDateLayout = "1/2"

// DefaultDateFormatter labels every tick as month/day, ignoring granularity.
func DefaultDateFormatter(t time.Time, _ Granularity) string {
	return t.Format(defaultDateLayout)
}

// LayoutFormatter returns a [DateFormatter] that renders every tick with the
// given Go time layout.
func LayoutFormatter(layout string) DateFormatter {
	return func(t time.Time, _ Granularity) string {
		return t.Format(layout)
	}
}

// GranularFormatter returns a [DateFormatter] that picks a layout suited to
// the tick spacing: clock times for sub-day ticks, dates for day and week
// ticks, month and year names beyond that.
func GranularFormatter() DateFormatter {
	return func(t time.Time, g Granularity) string {
		switch g {
		case Millisecondly:
			return t.Format("15:04:05.000")
		case Secondly:
			return t.Format("15:04:05")
		case Minutely, Hourly:
			return t.Format("15:04")
		case Monthly:
			return t.Format("Jan 2006")
		case Annual:
			return t.Format("2006")
		default:
			return t.Format(defaultDateLayout)
		}
	}
}

// RelativeFormatter returns a [DateFormatter] that labels ticks relative to
// now, e.g. "3 days ago". If now is nil, [time.Now] is used.
func RelativeFormatter(now func() time.Time) DateFormatter {
	if now == nil {
		now = time.Now
	}
	return func(t time.Time, _ Granularity) string {
		return humanize.RelTime(t, now(), "ago", "from now")
	}
}

// GranularityFor suggests a tick granularity for a window of the given
// width, aiming at a handful of ticks across the axis.
func GranularityFor(width time.Duration) Granularity {
	switch {
	case width < 2*time.Second:
		return Millisecondly
	case width < 2*time.Minute:
		return Secondly
	case width < 2*time.Hour:
		return Minutely
	case width < 2*24*time.Hour:
		return Hourly
	case width < 14*24*time.Hour:
		return Daily
	case width < 60*24*time.Hour:
		return Weekly
	case width < 2*365*24*time.Hour:
		return Monthly
	default:
		return Annual
	}
}
