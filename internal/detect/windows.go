package detect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"trizzaone/internal/types"
)

// spikeFactor: the trailing 1h consumption total must exceed the prior 1h
// total by more than 50% to count as a spike.
const spikeFactor = 1.5

// consumptionWindow is the width of the spike comparison windows.
const consumptionWindow = time.Hour

// OrderStats abstracts the order-history queries the windowed detector
// needs. Backed by the Postgres order repository in production.
type OrderStats interface {
	// QuantityBetween returns the summed consumed quantity in [from, to).
	QuantityBetween(ctx context.Context, from, to time.Time) (int, error)
	// LeaderboardToday returns today's dishes with summed quantities,
	// highest first; ties break alphabetically by dish name.
	LeaderboardToday(ctx context.Context) ([]types.DishCount, error)
}

// WindowDetector evaluates order-history windows: consumption spikes and
// most-popular-dish changes. Like the sample detector it is best-effort;
// query failures are logged and produce no event.
type WindowDetector struct {
	orders OrderStats
	clock  types.Clock
	logger *slog.Logger

	mu         sync.Mutex
	lastTop    string
	hasLastTop bool
}

// NewWindowDetector creates a WindowDetector over the given order stats.
func NewWindowDetector(orders OrderStats, clock types.Clock, logger *slog.Logger) *WindowDetector {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WindowDetector{
		orders: orders,
		clock:  clock,
		logger: logger,
	}
}

// Check runs both windowed rules and returns any detected events.
func (w *WindowDetector) Check(ctx context.Context) []types.Event {
	var events []types.Event
	if ev := w.checkConsumptionSpike(ctx); ev != nil {
		events = append(events, *ev)
	}
	if ev := w.checkPopularity(ctx); ev != nil {
		events = append(events, *ev)
	}
	return events
}

// checkConsumptionSpike compares the trailing 1h order total against the
// prior 1h window. Fires only when the prior window total is positive.
func (w *WindowDetector) checkConsumptionSpike(ctx context.Context) *types.Event {
	now := w.clock.Now()

	current, err := w.orders.QuantityBetween(ctx, now.Add(-consumptionWindow), now)
	if err != nil {
		w.logger.WarnContext(ctx, "consumption window query failed", "error", err)
		return nil
	}
	prior, err := w.orders.QuantityBetween(ctx, now.Add(-2*consumptionWindow), now.Add(-consumptionWindow))
	if err != nil {
		w.logger.WarnContext(ctx, "prior consumption window query failed", "error", err)
		return nil
	}

	if prior <= 0 || float64(current) <= float64(prior)*spikeFactor {
		return nil
	}

	ev := types.Event{
		ID:        uuid.NewString(),
		Kind:      types.EventConsumptionSpike,
		Message:   fmt.Sprintf("consumption spiked: %d in the last hour vs %d the hour before", current, prior),
		Severity:  types.SeverityWarning,
		Timestamp: now,
	}
	return &ev
}

// checkPopularity fires when the top dish by summed quantity today changes
// identity from the previously recorded top dish. The first observation only
// records the baseline.
func (w *WindowDetector) checkPopularity(ctx context.Context) *types.Event {
	board, err := w.orders.LeaderboardToday(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "leaderboard query failed", "error", err)
		return nil
	}
	if len(board) == 0 {
		return nil
	}
	top := board[0].DishName

	w.mu.Lock()
	prev, had := w.lastTop, w.hasLastTop
	w.lastTop, w.hasLastTop = top, true
	w.mu.Unlock()

	if !had || prev == top {
		return nil
	}

	ev := types.Event{
		ID:        uuid.NewString(),
		Kind:      types.EventPopularityChange,
		Message:   fmt.Sprintf("%q overtook %q as today's most popular dish", top, prev),
		Severity:  types.SeverityInfo,
		Timestamp: w.clock.Now(),
	}
	return &ev
}
