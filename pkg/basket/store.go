// Package basket implements the unit price core: sliding-window smoothing of
// spot observations and weighted basket composition.
package basket

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is a single timestamped spot value. Immutable once pushed.
type Observation struct {
	Timestamp time.Time
	Value     decimal.Decimal
}

// WindowStore is an append-only, time-bounded sequence of observations for one
// instrument. Every retained observation satisfies now-ts <= window, where now
// is the timestamp of the most recent push.
//
// WindowStore is not safe for concurrent use on its own; the Engine serializes
// access per instrument so that a push+evict+mean sequence is atomic with
// respect to other compute cycles.
type WindowStore struct {
	window time.Duration
	obs    []Observation
}

// NewWindowStore creates an empty store with the given eviction window.
func NewWindowStore(window time.Duration) *WindowStore {
	return &WindowStore{window: window}
}

// Push appends an observation at now, then evicts every observation older
// than the window. Eviction filters in place to avoid allocations, so
// insertion order survives out-of-order arrivals.
func (s *WindowStore) Push(value decimal.Decimal, now time.Time) {
	s.obs = append(s.obs, Observation{Timestamp: now, Value: value})

	n := 0
	for _, o := range s.obs {
		if now.Sub(o.Timestamp) <= s.window {
			s.obs[n] = o
			n++
		}
	}
	s.obs = s.obs[:n]
}

// Len returns the number of retained observations.
func (s *WindowStore) Len() int {
	return len(s.obs)
}

// Window returns the eviction window.
func (s *WindowStore) Window() time.Duration {
	return s.window
}

// Snapshot returns a copy of the retained observations.
func (s *WindowStore) Snapshot() []Observation {
	out := make([]Observation, len(s.obs))
	copy(out, s.obs)
	return out
}
