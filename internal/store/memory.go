package store

import (
	"sort"
	"sync"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Chart states are keyed by chart name, with new states replacing previous
// values. Subscribers receive updates via buffered channels; if a
// subscriber's buffer is full the update is dropped for that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	charts      map[string]ChartState
	subscribers map[chan ChartState]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		charts:      make(map[string]ChartState),
		subscribers: make(map[chan ChartState]struct{}),
	}
}

// Update stores a [ChartState] and notifies all subscribers.
func (m *MemoryStore) Update(state ChartState) {
	state.Labels = copyLabels(state.Labels)

	m.mu.Lock()
	m.charts[state.Name] = state
	m.mu.Unlock()

	m.notifySubscribers(state)
}

// Get returns the stored state for the named chart.
func (m *MemoryStore) Get(name string) (ChartState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.charts[name]
	if ok {
		state.Labels = copyLabels(state.Labels)
	}
	return state, ok
}

// GetAll returns a snapshot of all stored chart states ordered by name.
func (m *MemoryStore) GetAll() []ChartState {
	m.mu.RLock()
	states := make([]ChartState, 0, len(m.charts))
	for _, state := range m.charts {
		state.Labels = copyLabels(state.Labels)
		states = append(states, state)
	}
	m.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		return states[i].Name < states[j].Name
	})
	return states
}

// Subscribe creates a new subscription and returns a channel for receiving
// updates. Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan ChartState {
	ch := make(chan ChartState, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan ChartState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the state to all active subscribers without
// blocking.
func (m *MemoryStore) notifySubscribers(state ChartState) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- state:
		default:
			// subscriber is slow, drop the message
		}
	}
}

func copyLabels(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
