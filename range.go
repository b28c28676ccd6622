package syncboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a [Range] does not start before it ends.
var ErrInvalidRange = errors.New("range start must be before end")

// Range is the visible x-axis window of a time-series chart.
//
// Range is a value type; copying it never shares state. Its JSON form is the
// two-element array of epoch milliseconds used by dygraphs' dateWindow
// option, e.g. [1700000000000, 1700086400000].
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange creates a [Range] and validates it.
//
// Returns [ErrInvalidRange] if start is not strictly before end.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: start, End: end}
	if !r.Valid() {
		return Range{}, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return r, nil
}

// RangeFromMillis builds a [Range] from two epoch-millisecond timestamps.
// No validation is performed.
func RangeFromMillis(start, end int64) Range {
	return Range{Start: time.UnixMilli(start), End: time.UnixMilli(end)}
}

// Valid reports whether the range starts strictly before it ends.
func (r Range) Valid() bool {
	return r.Start.Before(r.End)
}

// StartMillis returns the start of the range in epoch milliseconds.
func (r Range) StartMillis() int64 {
	return r.Start.UnixMilli()
}

// EndMillis returns the end of the range in epoch milliseconds.
func (r Range) EndMillis() int64 {
	return r.End.UnixMilli()
}

// Width returns the duration covered by the range.
func (r Range) Width() time.Duration {
	return r.End.Sub(r.Start)
}

// Shift returns the range moved by d, keeping its width.
func (r Range) Shift(d time.Duration) Range {
	return Range{Start: r.Start.Add(d), End: r.End.Add(d)}
}

// EndingAt returns a range of the same width that ends at t.
func (r Range) EndingAt(t time.Time) Range {
	return r.Shift(t.Sub(r.End))
}

// Equal reports whether both bounds denote the same instants.
func (r Range) Equal(other Range) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// String returns the range as "[start, end]" in RFC 3339.
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// MarshalJSON encodes the range as [startMillis, endMillis].
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{r.StartMillis(), r.EndMillis()})
}

// UnmarshalJSON decodes a [startMillis, endMillis] array.
func (r *Range) UnmarshalJSON(data []byte) error {
	var ms [2]int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("range must be [startMillis, endMillis]: %w", err)
	}
	*r = RangeFromMillis(ms[0], ms[1])
	return nil
}
