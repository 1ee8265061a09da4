package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/types"
)

func sampleAt(id string, ts time.Time) types.Sample {
	return types.Sample{
		ID:        id,
		Zone:      types.ZoneKitchen,
		Timestamp: ts,
	}
}

func TestStore_CapacityNeverExceeded(t *testing.T) {
	store := NewStore(10)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		store.Ingest(sampleAt(fmt.Sprintf("s-%d", i), base.Add(time.Duration(i)*time.Second)))
		assert.LessOrEqual(t, store.Len(), 10)
	}

	require.Equal(t, 10, store.Len())

	// Oldest entries were evicted; the newest survive.
	snap := store.Snapshot()
	assert.Equal(t, "s-49", snap[0].ID)
	assert.Equal(t, "s-40", snap[9].ID)
}

func TestStore_NewestFirstOrdering(t *testing.T) {
	store := NewStore(100)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store.Ingest(sampleAt("a", base))
	store.Ingest(sampleAt("b", base.Add(time.Minute)))
	store.Ingest(sampleAt("c", base.Add(2*time.Minute)))

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "c", snap[0].ID)
	assert.Equal(t, "b", snap[1].ID)
	assert.Equal(t, "a", snap[2].ID)
}

func TestStore_OutOfOrderArrivalIsResorted(t *testing.T) {
	store := NewStore(100)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store.Ingest(sampleAt("new", base.Add(time.Hour)))
	// The poll path can deliver an older row after a newer one.
	store.Ingest(sampleAt("old", base))

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "new", snap[0].ID)
	assert.Equal(t, "old", snap[1].ID)
}

func TestStore_IngestIsIdempotentByID(t *testing.T) {
	store := NewStore(100)
	s := sampleAt("dup", time.Now().UTC())

	require.True(t, store.Ingest(s))
	require.False(t, store.Ingest(s), "duplicate delivery must be absorbed")
	assert.Equal(t, 1, store.Len())
}

func TestStore_SubscribeObservesAcceptedInserts(t *testing.T) {
	store := NewStore(100)

	var got []string
	store.Subscribe(func(s types.Sample) {
		got = append(got, s.ID)
	})

	s := sampleAt("x", time.Now().UTC())
	store.Ingest(s)
	store.Ingest(s) // duplicate, must not notify

	require.Equal(t, []string{"x"}, got)
}

func TestStore_HeadOnEmpty(t *testing.T) {
	store := NewStore(5)
	_, ok := store.Head()
	assert.False(t, ok)
}

func TestStore_NonPositiveCapacityFallsBack(t *testing.T) {
	store := NewStore(0)
	assert.Equal(t, DefaultCapacity, store.Capacity())
}
