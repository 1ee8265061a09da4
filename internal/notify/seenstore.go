// Package notify deduplicates detected events and forwards them to the
// user-facing alert surfaces: the persisted event feed and, for warning and
// critical severities, the platform notification queue.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"trizzaone/internal/types"
)

// SeenStore records dispatched event identities so semantically equivalent
// repeats within the cooldown window are suppressed. Entries expire after
// the cooldown; the store never grows for the lifetime of a session.
type SeenStore interface {
	// MarkIfNew records the identity and returns true when it was not
	// already present (i.e. the event should be dispatched). Implementations
	// apply the cooldown as the entry's time-to-live.
	MarkIfNew(ctx context.Context, identity string, cooldown time.Duration) (bool, error)
}

// MemorySeenStore is the in-process SeenStore for single-instance sessions.
// Expired entries are swept lazily on each call.
type MemorySeenStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // identity -> expiry
	clock   types.Clock
}

// NewMemorySeenStore creates an empty in-process store.
func NewMemorySeenStore(clock types.Clock) *MemorySeenStore {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &MemorySeenStore{
		entries: make(map[string]time.Time),
		clock:   clock,
	}
}

// MarkIfNew implements SeenStore. It never returns an error.
func (s *MemorySeenStore) MarkIfNew(_ context.Context, identity string, cooldown time.Duration) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, id)
		}
	}

	if expiry, ok := s.entries[identity]; ok && expiry.After(now) {
		return false, nil
	}
	s.entries[identity] = now.Add(cooldown)
	return true, nil
}

// Len returns the number of live entries. Intended for tests and health
// reporting.
func (s *MemorySeenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RedisSeenStore shares dispatch state across instances via SET NX with a
// TTL equal to the cooldown, so pruning is handled by Redis expiry.
type RedisSeenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSeenStore creates a SeenStore over the given Redis client.
func NewRedisSeenStore(client *redis.Client) *RedisSeenStore {
	return &RedisSeenStore{
		client: client,
		prefix: "trizzaone:seen:",
	}
}

// MarkIfNew implements SeenStore via SET NX EX.
func (s *RedisSeenStore) MarkIfNew(ctx context.Context, identity string, cooldown time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+identity, 1, cooldown).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
