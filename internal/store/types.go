package store

import "time"

// ChartState represents the current viewport of a chart in storage.
//
// ChartState is optimized for JSON serialization (used by the REST API and
// SSE). It is decoupled from the syncboard types so the wire format can
// evolve independently.
type ChartState struct {
	// Name is the chart's display name and storage key.
	Name string `json:"name"`

	// StartMs and EndMs bound the visible window in epoch milliseconds.
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`

	// StartLabel and EndLabel are the window bounds rendered by the
	// dashboard's axis formatter.
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`

	// Hidden charts are excluded from range broadcasts.
	Hidden bool `json:"hidden"`

	// Reference marks the overview chart that always follows broadcasts.
	Reference bool `json:"reference"`

	// Labels contains key-value metadata, e.g. grid dimensions.
	Labels map[string]string `json:"labels,omitempty"`

	// Redraws counts renders since the chart was created.
	Redraws int `json:"redraws"`

	// UpdatedAt is the time of the last render.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing and subscribing to chart updates.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update stores a chart state and notifies all subscribers.
	// The state is keyed by Name, so subsequent updates replace previous values.
	Update(state ChartState)

	// Get returns the stored state for the named chart.
	Get(name string) (ChartState, bool)

	// GetAll returns all currently stored chart states ordered by name.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []ChartState

	// Subscribe returns a channel that receives chart updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan ChartState

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan ChartState)
}
