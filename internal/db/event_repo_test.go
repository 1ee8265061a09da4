package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/types"
)

func TestEventRepository_Insert_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEventRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), types.Event{
		ID:        "ev_1",
		Kind:      types.EventFireAlarm,
		Zone:      types.ZoneKitchen,
		Message:   "fire alarm triggered in kitchen",
		Severity:  types.SeverityCritical,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestEventRepository_Insert_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEventRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), types.Event{ID: "ev_1"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestEventRepository_ListRecent(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEventRepository(db)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{"ev_2", types.EventGasLeak, types.ZoneStorage, types.Metric(""), "gas leak detected in storage", types.SeverityCritical, now},
		{"ev_1", types.EventThresholdChange, types.ZoneKitchen, types.MetricTemperature, "temperature in kitchen changed 20%", types.SeverityWarning, now.Add(-time.Minute)},
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	result, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, types.EventGasLeak, result[0].Kind)
	assert.Equal(t, types.MetricTemperature, result[1].Metric)
	db.AssertExpectations(t)
}

func TestEventRepository_ListRecent_DefaultsLimit(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEventRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			values := args.Get(2).([]any)
			assert.Equal(t, 5, values[0])
		}).
		Return(newMockRows(nil), nil)

	_, err := repo.ListRecent(context.Background(), -3)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestEventRepository_ListRecent_ScanError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEventRepository(db)

	rows := newMockRows([][]any{{"ev_1"}})
	rows.scanErr = errors.New("type mismatch")

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	_, err := repo.ListRecent(context.Background(), 5)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
