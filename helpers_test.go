package syncboard

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

// fakeChart is a ChartHandle that records every range it receives and,
// like a real widget, calls its redraw hook after a successful SetRange.
type fakeChart struct {
	name       string
	rng        Range
	sets       []Range
	hook       RedrawFunc
	setErr     error
	rangeErr   error
	panicOnSet bool
}

func (c *fakeChart) CurrentRange() (Range, error) {
	if c.rangeErr != nil {
		return Range{}, c.rangeErr
	}
	return c.rng, nil
}

func (c *fakeChart) SetRange(r Range) error {
	if c.panicOnSet {
		panic("widget destroyed mid-render")
	}
	c.sets = append(c.sets, r)
	if c.setErr != nil {
		return c.setErr
	}
	c.rng = r
	if c.hook != nil {
		c.hook(c, false)
	}
	return nil
}

// pan simulates a user drag: the widget moves and then redraws.
func (c *fakeChart) pan(r Range) {
	c.rng = r
	if c.hook != nil {
		c.hook(c, false)
	}
}

// liveChart is a fakeChart that can be marked as torn down.
type liveChart struct {
	fakeChart
	live bool
}

func (c *liveChart) Live() bool {
	return c.live
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDashboard(t *testing.T, opts ...Option) *Dashboard {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	d, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

var (
	epoch   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	window1 = Range{Start: epoch, End: epoch.Add(24 * time.Hour)}
	window2 = Range{Start: epoch.Add(time.Hour), End: epoch.Add(25 * time.Hour)}
)
