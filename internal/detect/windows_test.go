package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/types"
)

type fakeOrderStats struct {
	current int
	prior   int
	qtyErr  error

	board    []types.DishCount
	boardErr error
}

func (f *fakeOrderStats) QuantityBetween(_ context.Context, from, to time.Time) (int, error) {
	if f.qtyErr != nil {
		return 0, f.qtyErr
	}
	// The detector asks for [now-1h, now) first, then [now-2h, now-1h).
	if to.Sub(from) != time.Hour {
		return 0, errors.New("unexpected window width")
	}
	if to.After(time.Now().Add(-30 * time.Minute)) {
		return f.current, nil
	}
	return f.prior, nil
}

func (f *fakeOrderStats) LeaderboardToday(context.Context) ([]types.DishCount, error) {
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	return f.board, nil
}

func TestWindowDetector_ConsumptionSpike(t *testing.T) {
	orders := &fakeOrderStats{current: 16, prior: 10}
	det := NewWindowDetector(orders, nil, quietLogger())

	events := det.Check(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, types.EventConsumptionSpike, events[0].Kind)
	assert.Equal(t, types.SeverityWarning, events[0].Severity)
}

func TestWindowDetector_SpikeNeedsMoreThanFactor(t *testing.T) {
	// 15 is exactly 1.5x of 10; the spike must be strictly greater.
	orders := &fakeOrderStats{current: 15, prior: 10}
	det := NewWindowDetector(orders, nil, quietLogger())

	assert.Empty(t, det.Check(context.Background()))
}

func TestWindowDetector_SpikeNeedsPositivePrior(t *testing.T) {
	orders := &fakeOrderStats{current: 40, prior: 0}
	det := NewWindowDetector(orders, nil, quietLogger())

	assert.Empty(t, det.Check(context.Background()))
}

func TestWindowDetector_PopularityChange(t *testing.T) {
	orders := &fakeOrderStats{board: []types.DishCount{
		{DishName: "margherita", Quantity: 5},
		{DishName: "carbonara", Quantity: 3},
	}}
	det := NewWindowDetector(orders, nil, quietLogger())
	ctx := context.Background()

	// First check records the baseline only.
	require.Empty(t, det.Check(ctx))

	// Same top dish: quiet even though quantities moved.
	orders.board = []types.DishCount{
		{DishName: "margherita", Quantity: 7},
		{DishName: "carbonara", Quantity: 6},
	}
	require.Empty(t, det.Check(ctx))

	// Carbonara overtakes: exactly one info event.
	orders.board = []types.DishCount{
		{DishName: "carbonara", Quantity: 8},
		{DishName: "margherita", Quantity: 7},
	}
	events := det.Check(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventPopularityChange, events[0].Kind)
	assert.Equal(t, types.SeverityInfo, events[0].Severity)

	// And only once per change.
	assert.Empty(t, det.Check(ctx))
}

func TestWindowDetector_EmptyLeaderboardIsQuiet(t *testing.T) {
	orders := &fakeOrderStats{}
	det := NewWindowDetector(orders, nil, quietLogger())

	assert.Empty(t, det.Check(context.Background()))
}

func TestWindowDetector_QueryFailuresYieldNoEvents(t *testing.T) {
	orders := &fakeOrderStats{
		qtyErr:   errors.New("db down"),
		boardErr: errors.New("db down"),
	}
	det := NewWindowDetector(orders, nil, quietLogger())

	assert.Empty(t, det.Check(context.Background()))
}
