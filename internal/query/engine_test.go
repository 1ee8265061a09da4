package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/external"
	"trizzaone/internal/telemetry"
	"trizzaone/internal/types"
)

type fakeSelector struct {
	sel *external.IntentSelection
	err error

	gotText string
}

func (f *fakeSelector) SelectIntent(_ context.Context, text string) (*external.IntentSelection, error) {
	f.gotText = text
	return f.sel, f.err
}

type fakeOrders struct {
	quantity int
	board    []types.DishCount
	err      error
}

func (f *fakeOrders) QuantityBetween(context.Context, time.Time, time.Time) (int, error) {
	return f.quantity, f.err
}

func (f *fakeOrders) LeaderboardToday(context.Context) ([]types.DishCount, error) {
	return f.board, f.err
}

type fakeEvents struct {
	events []types.Event
	err    error
}

func (f *fakeEvents) ListRecent(context.Context, int) ([]types.Event, error) {
	return f.events, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(cfg EngineConfig) *Engine {
	if cfg.Store == nil {
		cfg.Store = telemetry.NewStore(100)
	}
	if cfg.Orders == nil {
		cfg.Orders = &fakeOrders{}
	}
	if cfg.Events == nil {
		cfg.Events = &fakeEvents{}
	}
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	return NewEngine(cfg)
}

func TestEngine_OrdersToday(t *testing.T) {
	selector := &fakeSelector{sel: &external.IntentSelection{Label: "orders_today"}}
	engine := newTestEngine(EngineConfig{
		Selector: selector,
		Orders:   &fakeOrders{quantity: 42},
	})

	ans, err := engine.Ask(context.Background(), "how many orders today?")
	require.NoError(t, err)
	assert.Equal(t, IntentOrdersToday, ans.Intent)
	assert.Contains(t, ans.Text, "42")
	assert.Equal(t, "how many orders today?", selector.gotText)
}

func TestEngine_AvgMetric(t *testing.T) {
	store := telemetry.NewStore(100)
	now := time.Now().UTC()
	store.Ingest(types.Sample{ID: "a", Zone: types.ZoneKitchen, Temperature: 20, Timestamp: now})
	store.Ingest(types.Sample{ID: "b", Zone: types.ZoneDining, Temperature: 24, Timestamp: now})

	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{
			Label: "avg_metric",
			Args:  map[string]string{"metric": "temperature"},
		}},
		Store: store,
	})

	ans, err := engine.Ask(context.Background(), "average temperature?")
	require.NoError(t, err)
	assert.Equal(t, IntentAvgMetric, ans.Intent)
	assert.Equal(t, map[string]float64{"average": 22}, ans.Data)
}

func TestEngine_AvgMetricUnknownMetric(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{
			Label: "avg_metric",
			Args:  map[string]string{"metric": "loudness"},
		}},
	})

	_, err := engine.Ask(context.Background(), "average loudness?")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidMetric, appErr.Code)
}

func TestEngine_ZoneStatus(t *testing.T) {
	store := telemetry.NewStore(100)
	store.Ingest(types.Sample{
		ID: "k1", Zone: types.ZoneKitchen,
		Temperature: 26.5, Humidity: 55, OccupancyCount: 4, CO2Level: 700,
		Timestamp: time.Now().UTC(),
	})

	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{
			Label: "zone_status",
			Args:  map[string]string{"zone": "kitchen"},
		}},
		Store: store,
	})

	ans, err := engine.Ask(context.Background(), "what's up in the kitchen?")
	require.NoError(t, err)
	assert.Equal(t, IntentZoneStatus, ans.Intent)
	assert.Contains(t, ans.Text, "26.5")
}

func TestEngine_ZoneStatusUnknownZone(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{
			Label: "zone_status",
			Args:  map[string]string{"zone": "rooftop"},
		}},
	})

	_, err := engine.Ask(context.Background(), "rooftop status?")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidZone, appErr.Code)
}

func TestEngine_ZoneStatusNoReadings(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{
			Label: "zone_status",
			Args:  map[string]string{"zone": "storage"},
		}},
	})

	ans, err := engine.Ask(context.Background(), "storage status?")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "No recent readings")
}

func TestEngine_TopDish(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{Label: "top_dish"}},
		Orders: &fakeOrders{board: []types.DishCount{
			{DishName: "margherita", Quantity: 9},
			{DishName: "carbonara", Quantity: 4},
		}},
	})

	ans, err := engine.Ask(context.Background(), "most popular dish?")
	require.NoError(t, err)
	assert.Equal(t, IntentTopDish, ans.Intent)
	assert.Contains(t, ans.Text, "margherita")
}

func TestEngine_AlertsRecent(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{Label: "alerts_recent"}},
		Events: &fakeEvents{events: []types.Event{
			{ID: "e1", Kind: types.EventFireAlarm, Message: "fire alarm triggered in kitchen"},
		}},
	})

	ans, err := engine.Ask(context.Background(), "any recent alerts?")
	require.NoError(t, err)
	assert.Equal(t, IntentAlertsRecent, ans.Intent)
	assert.Contains(t, ans.Text, "fire alarm triggered in kitchen")
}

func TestEngine_UnknownLabelAnswersUnsupported(t *testing.T) {
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{sel: &external.IntentSelection{Label: "book_a_table"}},
	})

	ans, err := engine.Ask(context.Background(), "book me a table")
	require.NoError(t, err)
	assert.Equal(t, IntentUnsupported, ans.Intent)
	assert.NotEmpty(t, ans.Text)
}

func TestEngine_SelectorFailurePropagates(t *testing.T) {
	upstream := types.NewAppError(types.ErrCodeUpstreamQuery, "endpoint unavailable", errors.New("503"))
	engine := newTestEngine(EngineConfig{
		Selector: &fakeSelector{err: upstream},
	})

	_, err := engine.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, upstream)
}
