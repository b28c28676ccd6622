package syncboard

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker is a dashboard slot for one participating chart.
//
// A Tracker exists from the moment a chart is registered with [Dashboard.Track],
// independent of whether the chart has rendered. The chart handle is attached
// with [Tracker.Attach] once the widget exists. Hidden trackers are excluded
// from broadcast; a tracker may be hidden and shown any number of times.
//
// Tracker methods are safe for concurrent use.
type Tracker struct {
	id   string
	name string
	reg  *registry

	// guarded by reg.mu
	hidden bool
	graph  ChartHandle
}

// ID returns the tracker's unique identifier.
func (t *Tracker) ID() string {
	return t.id
}

// Name returns the display name given at registration.
func (t *Tracker) Name() string {
	return t.name
}

// Hide excludes the tracker from subsequent broadcasts.
func (t *Tracker) Hide() {
	t.reg.mu.Lock()
	t.hidden = true
	t.reg.mu.Unlock()
}

// Show includes the tracker in subsequent broadcasts.
func (t *Tracker) Show() {
	t.reg.mu.Lock()
	t.hidden = false
	t.reg.mu.Unlock()
}

// Hidden reports whether the tracker is excluded from broadcast.
func (t *Tracker) Hidden() bool {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()
	return t.hidden
}

// Attach associates the rendered chart with this tracker, replacing any
// previous handle.
func (t *Tracker) Attach(c ChartHandle) {
	t.reg.mu.Lock()
	t.graph = c
	t.reg.mu.Unlock()
}

// Detach clears the chart handle, e.g. when the widget is destroyed.
func (t *Tracker) Detach() {
	t.Attach(nil)
}

// Graph returns the attached chart handle, or nil if the chart has not
// rendered yet.
func (t *Tracker) Graph() ChartHandle {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()
	return t.graph
}

// registry is the ordered tracker collection of a [Dashboard].
type registry struct {
	mu       sync.RWMutex
	trackers []*Tracker
}

// slot is an immutable view of a tracker taken at broadcast start.
type slot struct {
	name   string
	hidden bool
	graph  ChartHandle
}

func (r *registry) add(name string) *Tracker {
	t := &Tracker{
		id:   uuid.NewString(),
		name: name,
		reg:  r,
	}

	r.mu.Lock()
	r.trackers = append(r.trackers, t)
	r.mu.Unlock()

	return t
}

func (r *registry) remove(t *Tracker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.trackers {
		if existing == t {
			r.trackers = append(r.trackers[:i], r.trackers[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry) list() []*Tracker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := make([]*Tracker, len(r.trackers))
	copy(cp, r.trackers)
	return cp
}

func (r *registry) find(name string) *Tracker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.trackers {
		if t.name == name {
			return t
		}
	}
	return nil
}

// snapshot copies the broadcast-relevant state of every tracker in
// insertion order.
func (r *registry) snapshot() []slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]slot, len(r.trackers))
	for i, t := range r.trackers {
		slots[i] = slot{name: t.name, hidden: t.hidden, graph: t.graph}
	}
	return slots
}
