package telemetry

import (
	"sort"
	"sync"

	"trizzaone/internal/types"
)

// DefaultCapacity is the bounded window of samples a session retains.
const DefaultCapacity = 100

// InsertListener observes samples accepted by the store. Listeners run
// synchronously on the ingesting goroutine and must not block.
type InsertListener func(types.Sample)

// Store maintains the most recent N samples for a session, newest-first.
//
// The store is the only shared mutable resource in a session. There is a
// single logical writer (the simulation loop), but the realtime push path
// and the poll timer both deliver samples, so Ingest is idempotent on
// sample ID and restores timestamp order on out-of-order arrival. Reads are
// snapshot-style: Snapshot returns a copy, never the backing slice.
type Store struct {
	mu        sync.RWMutex
	samples   []types.Sample // newest-first
	byID      map[string]struct{}
	capacity  int
	listeners []InsertListener
}

// NewStore creates a Store with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		byID:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// Subscribe registers a listener invoked after each accepted insert.
func (s *Store) Subscribe(l InsertListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Ingest is the single entry point for both the push listener and the poll
// timer. Duplicate sample IDs are absorbed; accepted samples are merged in
// timestamp order and the oldest entries beyond capacity are evicted.
// Returns true when the sample was accepted.
func (s *Store) Ingest(sample types.Sample) bool {
	s.mu.Lock()

	if _, seen := s.byID[sample.ID]; seen {
		s.mu.Unlock()
		return false
	}

	s.byID[sample.ID] = struct{}{}
	s.samples = append([]types.Sample{sample}, s.samples...)

	// Out-of-order arrival from the poll path: restore newest-first order.
	if len(s.samples) > 1 && s.samples[1].Timestamp.After(sample.Timestamp) {
		sort.SliceStable(s.samples, func(i, j int) bool {
			return s.samples[i].Timestamp.After(s.samples[j].Timestamp)
		})
	}

	// Evict the oldest entries beyond capacity.
	for len(s.samples) > s.capacity {
		evicted := s.samples[len(s.samples)-1]
		delete(s.byID, evicted.ID)
		s.samples = s.samples[:len(s.samples)-1]
	}

	listeners := make([]InsertListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(sample)
	}
	return true
}

// Snapshot returns a copy of the current contents, newest-first.
func (s *Store) Snapshot() []types.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Head returns the newest sample, or false when the store is empty.
func (s *Store) Head() (types.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return types.Sample{}, false
	}
	return s.samples[0], true
}

// Len returns the current number of retained samples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Capacity returns the configured retention bound.
func (s *Store) Capacity() int {
	return s.capacity
}
