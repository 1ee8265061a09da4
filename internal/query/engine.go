package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trizzaone/internal/aggregate"
	"trizzaone/internal/external"
	"trizzaone/internal/telemetry"
	"trizzaone/internal/types"
)

// IntentSelector maps free text to a template label. Backed by the remote
// natural-language client in production.
type IntentSelector interface {
	SelectIntent(ctx context.Context, text string) (*external.IntentSelection, error)
}

// OrderSource supplies the order aggregates the query handlers need.
type OrderSource interface {
	QuantityBetween(ctx context.Context, from, to time.Time) (int, error)
	LeaderboardToday(ctx context.Context) ([]types.DishCount, error)
}

// EventSource supplies recent dispatched events.
type EventSource interface {
	ListRecent(ctx context.Context, limit int) ([]types.Event, error)
}

// Answer is the structured reply to one chat question.
type Answer struct {
	Intent Intent `json:"intent"`
	Text   string `json:"text"`
	Data   any    `json:"data,omitempty"`
}

// Engine resolves a free-text question to an intent and executes the
// matching handler over the live store and the order history.
type Engine struct {
	selector IntentSelector
	store    *telemetry.Store
	orders   OrderSource
	events   EventSource
	clock    types.Clock
	logger   *slog.Logger
}

// EngineConfig holds the configuration for creating an Engine.
type EngineConfig struct {
	Selector IntentSelector
	Store    *telemetry.Store
	Orders   OrderSource
	Events   EventSource
	Clock    types.Clock
	Logger   *slog.Logger
}

// NewEngine creates an Engine from the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		selector: cfg.Selector,
		store:    cfg.Store,
		orders:   cfg.Orders,
		events:   cfg.Events,
		clock:    clock,
		logger:   logger,
	}
}

// Ask resolves the question via the remote selector and answers it. A failed
// selection propagates as an upstream AppError; an unknown label answers
// with the unsupported intent.
func (e *Engine) Ask(ctx context.Context, text string) (Answer, error) {
	sel, err := e.selector.SelectIntent(ctx, text)
	if err != nil {
		return Answer{}, err
	}

	intent := ParseIntent(sel.Label)
	e.logger.DebugContext(ctx, "query intent resolved",
		"label", sel.Label,
		"intent", intent,
	)
	return e.Execute(ctx, intent, sel.Args)
}

// Execute runs the handler for a resolved intent.
func (e *Engine) Execute(ctx context.Context, intent Intent, args map[string]string) (Answer, error) {
	switch intent {
	case IntentOrdersToday:
		return e.ordersToday(ctx)
	case IntentAvgMetric:
		return e.avgMetric(args)
	case IntentZoneStatus:
		return e.zoneStatus(args)
	case IntentTopDish:
		return e.topDish(ctx)
	case IntentAlertsRecent:
		return e.alertsRecent(ctx)
	default:
		return Answer{
			Intent: IntentUnsupported,
			Text:   "Sorry, I can't answer that yet. Try asking about orders, zone status, or recent alerts.",
		}, nil
	}
}

func (e *Engine) ordersToday(ctx context.Context) (Answer, error) {
	now := e.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total, err := e.orders.QuantityBetween(ctx, midnight, now)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Intent: IntentOrdersToday,
		Text:   fmt.Sprintf("%d items have been ordered today.", total),
		Data:   map[string]int{"quantity": total},
	}, nil
}

func (e *Engine) avgMetric(args map[string]string) (Answer, error) {
	metric, ok := types.ParseMetric(args["metric"])
	if !ok {
		return Answer{}, types.NewAppError(types.ErrCodeValidationInvalidMetric,
			fmt.Sprintf("unknown metric %q", args["metric"]), nil)
	}

	avg := aggregate.AverageOf(metric, e.store.Snapshot())
	return Answer{
		Intent: IntentAvgMetric,
		Text:   fmt.Sprintf("The current average %s is %.1f.", metric, avg),
		Data:   map[string]float64{"average": avg},
	}, nil
}

func (e *Engine) zoneStatus(args map[string]string) (Answer, error) {
	zone, ok := types.ParseZone(args["zone"])
	if !ok {
		return Answer{}, types.NewAppError(types.ErrCodeValidationInvalidZone,
			fmt.Sprintf("unknown zone %q", args["zone"]), nil)
	}

	samples := aggregate.FilterZone(zone, e.store.Snapshot())
	if len(samples) == 0 {
		return Answer{
			Intent: IntentZoneStatus,
			Text:   fmt.Sprintf("No recent readings for %s.", zone),
		}, nil
	}

	latest := samples[0]
	return Answer{
		Intent: IntentZoneStatus,
		Text: fmt.Sprintf("%s: %.1f°C, %.0f%% humidity, %d people, CO2 %.0f ppm.",
			zone, latest.Temperature, latest.Humidity, latest.OccupancyCount, latest.CO2Level),
		Data: latest,
	}, nil
}

func (e *Engine) topDish(ctx context.Context) (Answer, error) {
	board, err := e.orders.LeaderboardToday(ctx)
	if err != nil {
		return Answer{}, err
	}
	if len(board) == 0 {
		return Answer{
			Intent: IntentTopDish,
			Text:   "No orders yet today.",
		}, nil
	}
	top := board[0]
	return Answer{
		Intent: IntentTopDish,
		Text:   fmt.Sprintf("Today's most popular dish is %s (%d ordered).", top.DishName, top.Quantity),
		Data:   board,
	}, nil
}

func (e *Engine) alertsRecent(ctx context.Context) (Answer, error) {
	events, err := e.events.ListRecent(ctx, 5)
	if err != nil {
		return Answer{}, err
	}
	if len(events) == 0 {
		return Answer{
			Intent: IntentAlertsRecent,
			Text:   "No recent alerts.",
		}, nil
	}
	return Answer{
		Intent: IntentAlertsRecent,
		Text:   fmt.Sprintf("There are %d recent alerts; the latest is: %s", len(events), events[0].Message),
		Data:   events,
	}, nil
}
