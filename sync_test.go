package syncboard

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestOnRedraw_PropagatesToVisibleRenderedTrackers(t *testing.T) {
	d := newTestDashboard(t)

	a := &fakeChart{name: "a"}
	b := &fakeChart{name: "b"}
	c := &fakeChart{name: "c"}
	for _, ch := range []*fakeChart{a, b, c} {
		d.Track(ch.name).Attach(ch)
	}

	a.rng = window2
	if err := d.OnRedraw(a, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}

	if len(a.sets) != 0 {
		t.Errorf("source chart received %d SetRange calls, want 0", len(a.sets))
	}
	for _, ch := range []*fakeChart{b, c} {
		if len(ch.sets) != 1 {
			t.Fatalf("chart %s received %d SetRange calls, want 1", ch.name, len(ch.sets))
		}
		if !ch.sets[0].Equal(window2) {
			t.Errorf("chart %s range = %v, want %v", ch.name, ch.sets[0], window2)
		}
	}
}

// TestOnRedraw_AllRegistryCompositions checks every combination of hidden and
// rendered states for three trackers, broadcasting from a fourth chart.
func TestOnRedraw_AllRegistryCompositions(t *testing.T) {
	type state struct {
		hidden   bool
		rendered bool
	}
	states := []state{
		{false, false},
		{false, true},
		{true, false},
		{true, true},
	}

	for i := 0; i < len(states)*len(states)*len(states); i++ {
		combo := []state{
			states[i%4],
			states[(i/4)%4],
			states[(i/16)%4],
		}

		t.Run(fmt.Sprintf("combo_%02d", i), func(t *testing.T) {
			d := newTestDashboard(t)
			source := &fakeChart{name: "source", rng: window2}
			d.Track("source").Attach(source)

			charts := make([]*fakeChart, len(combo))
			for j, st := range combo {
				charts[j] = &fakeChart{name: fmt.Sprintf("t%d", j)}
				tr := d.Track(charts[j].name)
				if st.rendered {
					tr.Attach(charts[j])
				}
				if st.hidden {
					tr.Hide()
				}
			}

			if err := d.OnRedraw(source, false); err != nil {
				t.Fatalf("OnRedraw() error = %v", err)
			}

			for j, st := range combo {
				want := 0
				if st.rendered && !st.hidden {
					want = 1
				}
				if got := len(charts[j].sets); got != want {
					t.Errorf("tracker %d (hidden=%v rendered=%v) SetRange calls = %d, want %d",
						j, st.hidden, st.rendered, got, want)
				}
			}
			if len(source.sets) != 0 {
				t.Errorf("source SetRange calls = %d, want 0", len(source.sets))
			}
		})
	}
}

func TestOnRedraw_InitialDrawNeverBroadcasts(t *testing.T) {
	tests := []struct {
		name      string
		guardHeld bool
	}{
		{"guard free", false},
		{"guard held", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := &fakeChart{name: "ref"}
			d := newTestDashboard(t, WithReferenceChart(ref))
			src := &fakeChart{name: "src", rng: window2}
			other := &fakeChart{name: "other"}
			d.Track("src").Attach(src)
			d.Track("other").Attach(other)

			if tt.guardHeld {
				release, ok := d.guard.acquire()
				if !ok {
					t.Fatal("acquire() failed on a fresh dashboard")
				}
				defer release()
			}

			if err := d.OnRedraw(src, true); err != nil {
				t.Fatalf("OnRedraw() error = %v", err)
			}
			if len(other.sets) != 0 || len(ref.sets) != 0 {
				t.Errorf("initial draw produced SetRange calls: other=%d ref=%d", len(other.sets), len(ref.sets))
			}
			if d.Broadcasting() != tt.guardHeld {
				t.Errorf("Broadcasting() = %v, want %v", d.Broadcasting(), tt.guardHeld)
			}
		})
	}
}

func TestOnRedraw_SuppressedWhileBroadcasting(t *testing.T) {
	d := newTestDashboard(t)
	src := &fakeChart{name: "src", rng: window2}
	other := &fakeChart{name: "other"}
	d.Track("src").Attach(src)
	d.Track("other").Attach(other)

	release, ok := d.guard.acquire()
	if !ok {
		t.Fatal("acquire() failed on a fresh dashboard")
	}
	defer release()

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if len(other.sets) != 0 {
		t.Errorf("SetRange calls while guard held = %d, want 0", len(other.sets))
	}
}

// TestOnRedraw_NestedRedrawsAreNoOps wires every chart's hook back into the
// dashboard, as a real widget would, and verifies a single pan yields exactly
// one broadcast cycle.
func TestOnRedraw_NestedRedrawsAreNoOps(t *testing.T) {
	var cycles int
	d := newTestDashboard(t, WithBroadcastCallback(func(Broadcast) { cycles++ }))

	charts := make([]*fakeChart, 4)
	for i := range charts {
		charts[i] = &fakeChart{name: fmt.Sprintf("c%d", i), rng: window1}
		charts[i].hook = d.RedrawHook()
		d.Track(charts[i].name).Attach(charts[i])
	}

	charts[0].pan(window2)

	if cycles != 1 {
		t.Errorf("broadcast cycles = %d, want 1", cycles)
	}
	for _, c := range charts[1:] {
		if len(c.sets) != 1 {
			t.Errorf("chart %s SetRange calls = %d, want 1", c.name, len(c.sets))
		}
		if !c.rng.Equal(window2) {
			t.Errorf("chart %s range = %v, want %v", c.name, c.rng, window2)
		}
	}
	if d.Broadcasting() {
		t.Error("Broadcasting() = true after cycle, want false")
	}
}

func TestOnRedraw_GuardReleasedAfterTargetError(t *testing.T) {
	d := newTestDashboard(t)
	src := &fakeChart{name: "src", rng: window2}
	bad := &fakeChart{name: "bad", setErr: errors.New("canvas gone")}
	good := &fakeChart{name: "good"}
	d.Track("src").Attach(src)
	d.Track("bad").Attach(bad)
	d.Track("good").Attach(good)

	err := d.OnRedraw(src, false)
	if err == nil {
		t.Fatal("OnRedraw() expected error from failing target, got nil")
	}
	if !strings.Contains(err.Error(), "canvas gone") {
		t.Errorf("OnRedraw() error = %v, want error containing 'canvas gone'", err)
	}
	if d.Broadcasting() {
		t.Fatal("Broadcasting() = true after failed cycle, want false")
	}

	// targets after the failing one still receive the range
	if len(good.sets) != 1 {
		t.Errorf("good chart SetRange calls = %d, want 1", len(good.sets))
	}

	// subsequent broadcasts still proceed
	src.rng = window1
	_ = d.OnRedraw(src, false)
	if len(good.sets) != 2 {
		t.Errorf("good chart SetRange calls after second cycle = %d, want 2", len(good.sets))
	}
}

func TestOnRedraw_GuardReleasedAfterTargetPanic(t *testing.T) {
	d := newTestDashboard(t)
	src := &fakeChart{name: "src", rng: window2}
	bad := &fakeChart{name: "bad", panicOnSet: true}
	good := &fakeChart{name: "good"}
	d.Track("src").Attach(src)
	d.Track("bad").Attach(bad)
	d.Track("good").Attach(good)

	err := d.OnRedraw(src, false)
	if err == nil {
		t.Fatal("OnRedraw() expected error from panicking target, got nil")
	}
	if !strings.Contains(err.Error(), "correlation_id") {
		t.Errorf("OnRedraw() error = %v, want correlation id", err)
	}
	if d.Broadcasting() {
		t.Fatal("Broadcasting() = true after panic, want false")
	}

	bad.panicOnSet = false
	src.rng = window1
	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() after recovery error = %v", err)
	}
	if !bad.rng.Equal(window1) {
		t.Errorf("recovered chart range = %v, want %v", bad.rng, window1)
	}
}

func TestOnRedraw_SourceRangeError(t *testing.T) {
	ref := &fakeChart{name: "ref"}
	d := newTestDashboard(t, WithReferenceChart(ref))
	src := &fakeChart{name: "src", rangeErr: errors.New("no data")}
	other := &fakeChart{name: "other"}
	d.Track("src").Attach(src)
	d.Track("other").Attach(other)

	if err := d.OnRedraw(src, false); err == nil {
		t.Fatal("OnRedraw() expected error, got nil")
	}
	if len(other.sets) != 0 || len(ref.sets) != 0 {
		t.Errorf("SetRange calls after source error: other=%d ref=%d, want 0", len(other.sets), len(ref.sets))
	}
	if d.Broadcasting() {
		t.Error("Broadcasting() = true after source error, want false")
	}
}

func TestOnRedraw_NilSource(t *testing.T) {
	d := newTestDashboard(t)
	if err := d.OnRedraw(nil, false); err == nil {
		t.Error("OnRedraw(nil) expected error, got nil")
	}
	if d.Broadcasting() {
		t.Error("Broadcasting() = true after nil source, want false")
	}
}

func TestOnRedraw_EmptyRegistryUpdatesReferenceOnly(t *testing.T) {
	ref := &fakeChart{name: "ref"}
	d := newTestDashboard(t, WithReferenceChart(ref))
	src := &fakeChart{name: "src", rng: window2}

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if len(ref.sets) != 1 || !ref.sets[0].Equal(window2) {
		t.Errorf("reference sets = %v, want [%v]", ref.sets, window2)
	}
	if len(src.sets) != 0 {
		t.Errorf("source SetRange calls = %d, want 0", len(src.sets))
	}
}

func TestOnRedraw_EmptyRegistryWithoutReference(t *testing.T) {
	var got Broadcast
	d := newTestDashboard(t, WithBroadcastCallback(func(b Broadcast) { got = b }))
	src := &fakeChart{name: "src", rng: window2}

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if got.Targets != 0 {
		t.Errorf("Broadcast.Targets = %d, want 0", got.Targets)
	}
	if !got.Range.Equal(window2) {
		t.Errorf("Broadcast.Range = %v, want %v", got.Range, window2)
	}
}

// TestOnRedraw_Scenario covers a visible rendered T1, a hidden rendered T2
// and a visible unrendered T3, broadcasting from T1.
func TestOnRedraw_Scenario(t *testing.T) {
	r := RangeFromMillis(100, 200)

	t.Run("separate reference", func(t *testing.T) {
		ref := &fakeChart{name: "overview"}
		d := newTestDashboard(t, WithReferenceChart(ref))
		g1 := &fakeChart{name: "g1", rng: r}
		g2 := &fakeChart{name: "g2"}

		d.Track("T1").Attach(g1)
		t2 := d.Track("T2")
		t2.Attach(g2)
		t2.Hide()
		d.Track("T3")

		if err := d.OnRedraw(g1, false); err != nil {
			t.Fatalf("OnRedraw() error = %v", err)
		}

		if len(g1.sets) != 0 {
			t.Errorf("T1 SetRange calls = %d, want 0", len(g1.sets))
		}
		if len(g2.sets) != 0 {
			t.Errorf("T2 SetRange calls = %d, want 0", len(g2.sets))
		}
		if len(ref.sets) != 1 || !ref.sets[0].Equal(r) {
			t.Errorf("reference sets = %v, want [%v]", ref.sets, r)
		}
	})

	t.Run("T1 is reference", func(t *testing.T) {
		g1 := &fakeChart{name: "g1", rng: r}
		g2 := &fakeChart{name: "g2"}
		d := newTestDashboard(t, WithReferenceChart(g1))

		d.Track("T1").Attach(g1)
		t2 := d.Track("T2")
		t2.Attach(g2)
		t2.Hide()
		d.Track("T3")

		if err := d.OnRedraw(g1, false); err != nil {
			t.Fatalf("OnRedraw() error = %v", err)
		}

		if len(g1.sets) != 1 || !g1.sets[0].Equal(r) {
			t.Errorf("T1 reference sets = %v, want [%v]", g1.sets, r)
		}
		if len(g2.sets) != 0 {
			t.Errorf("T2 SetRange calls = %d, want 0", len(g2.sets))
		}
	})
}

func TestOnRedraw_HiddenReferenceStillUpdated(t *testing.T) {
	ref := &fakeChart{name: "ref"}
	d := newTestDashboard(t, WithReferenceChart(ref))
	tr := d.Track("ref")
	tr.Attach(ref)
	tr.Hide()

	src := &fakeChart{name: "src", rng: window2}
	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if len(ref.sets) != 1 {
		t.Errorf("hidden reference SetRange calls = %d, want 1", len(ref.sets))
	}
}

func TestOnRedraw_SkipsStaleCharts(t *testing.T) {
	var got Broadcast
	d := newTestDashboard(t, WithBroadcastCallback(func(b Broadcast) { got = b }))
	src := &fakeChart{name: "src", rng: window2}
	stale := &liveChart{fakeChart: fakeChart{name: "stale"}, live: false}
	live := &liveChart{fakeChart: fakeChart{name: "live"}, live: true}
	d.Track("src").Attach(src)
	d.Track("stale").Attach(stale)
	d.Track("live").Attach(live)

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if len(stale.sets) != 0 {
		t.Errorf("stale chart SetRange calls = %d, want 0", len(stale.sets))
	}
	if len(live.sets) != 1 {
		t.Errorf("live chart SetRange calls = %d, want 1", len(live.sets))
	}
	if got.Skipped != 2 {
		t.Errorf("Broadcast.Skipped = %d, want 2", got.Skipped)
	}
}

func TestOnRedraw_InsertionOrder(t *testing.T) {
	d := newTestDashboard(t)
	var order []string

	src := &fakeChart{name: "src", rng: window2}
	d.Track("src").Attach(src)
	for _, name := range []string{"first", "second", "third"} {
		name := name
		c := &orderChart{record: func() { order = append(order, name) }}
		d.Track(name).Attach(c)
	}

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}

	want := "first,second,third"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("broadcast order = %s, want %s", got, want)
	}
}

// TestOnRedraw_RegistryMutationDuringBroadcast verifies that a target which
// registers and hides trackers mid-cycle neither deadlocks nor changes the
// set of charts updated by the running cycle.
func TestOnRedraw_RegistryMutationDuringBroadcast(t *testing.T) {
	d := newTestDashboard(t)
	src := &fakeChart{name: "src", rng: window2}
	late := &fakeChart{name: "late"}
	victim := &fakeChart{name: "victim"}

	d.Track("src").Attach(src)
	var victimTracker *Tracker
	mutator := &orderChart{record: func() {
		d.Track("late").Attach(late)
		victimTracker.Hide()
	}}
	d.Track("mutator").Attach(mutator)
	victimTracker = d.Track("victim")
	victimTracker.Attach(victim)

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if len(late.sets) != 0 {
		t.Errorf("tracker added mid-cycle SetRange calls = %d, want 0", len(late.sets))
	}
	if len(victim.sets) != 1 {
		t.Errorf("tracker hidden mid-cycle SetRange calls = %d, want 1", len(victim.sets))
	}

	_ = d.OnRedraw(src, false)
	if len(late.sets) != 1 {
		t.Errorf("late tracker SetRange calls on next cycle = %d, want 1", len(late.sets))
	}
	if len(victim.sets) != 1 {
		t.Errorf("hidden tracker SetRange calls on next cycle = %d, want 1", len(victim.sets))
	}
}

func TestOnRedraw_CallbackPanicRecovered(t *testing.T) {
	var calls int
	d := newTestDashboard(t,
		WithBroadcastCallback(func(Broadcast) { panic("callback bug") }),
		WithBroadcastCallback(func(Broadcast) { calls++ }),
	)
	src := &fakeChart{name: "src", rng: window2}

	if err := d.OnRedraw(src, false); err != nil {
		t.Fatalf("OnRedraw() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("second callback calls = %d, want 1", calls)
	}
	if d.Broadcasting() {
		t.Error("Broadcasting() = true after callback panic, want false")
	}
}

func TestRedrawHook_LogsErrors(t *testing.T) {
	d := newTestDashboard(t)
	src := &fakeChart{name: "src", rangeErr: errors.New("no data")}

	// must not panic and must release the guard
	d.RedrawHook()(src, false)

	if d.Broadcasting() {
		t.Error("Broadcasting() = true after hook error, want false")
	}
}

func TestSameChart_NonComparable(t *testing.T) {
	a := funcChart(func() {})
	b := funcChart(func() {})
	if sameChart(a, b) {
		t.Error("sameChart() = true for non-comparable handles, want false")
	}
	c := &fakeChart{}
	if !sameChart(c, c) {
		t.Error("sameChart() = false for identical pointer, want true")
	}
	if sameChart(c, nil) {
		t.Error("sameChart(c, nil) = true, want false")
	}
}

// orderChart calls record on every SetRange.
type orderChart struct {
	record func()
}

func (c *orderChart) CurrentRange() (Range, error) { return Range{}, nil }

func (c *orderChart) SetRange(Range) error {
	c.record()
	return nil
}

// funcChart is a ChartHandle with a non-comparable dynamic type.
type funcChart func()

func (funcChart) CurrentRange() (Range, error) { return Range{}, nil }
func (funcChart) SetRange(Range) error        { return nil }
