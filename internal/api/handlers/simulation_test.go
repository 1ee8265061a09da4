package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizzaone/internal/types"
)

type mockSession struct {
	enabled     []bool
	intervals   []time.Duration
	enabledErr  error
	intervalErr error
}

func (m *mockSession) SetEnabled(_ context.Context, enabled bool) error {
	if m.enabledErr != nil {
		return m.enabledErr
	}
	m.enabled = append(m.enabled, enabled)
	return nil
}

func (m *mockSession) SetInterval(_ context.Context, d time.Duration) error {
	if m.intervalErr != nil {
		return m.intervalErr
	}
	m.intervals = append(m.intervals, d)
	return nil
}

func makeSimulationRouter(h *SimulationHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/simulation", h.RegisterRoutes)
	return r
}

func TestHandleControl_Enable(t *testing.T) {
	session := &mockSession{}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"enabled":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []bool{true}, session.enabled)
	assert.Empty(t, session.intervals)
	assert.Contains(t, rec.Body.String(), `"applied":true`)
}

func TestHandleControl_IntervalMilliseconds(t *testing.T) {
	session := &mockSession{}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"interval_ms":2500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []time.Duration{2500 * time.Millisecond}, session.intervals)
}

func TestHandleControl_IntervalDurationString(t *testing.T) {
	session := &mockSession{}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"interval":"3s"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []time.Duration{3 * time.Second}, session.intervals)
}

func TestHandleControl_IntervalMSWinsOverString(t *testing.T) {
	session := &mockSession{}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"interval_ms":1000,"interval":"9s"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []time.Duration{time.Second}, session.intervals)
}

func TestHandleControl_CombinedAppliesIntervalFirst(t *testing.T) {
	session := &mockSession{}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"enabled":true,"interval_ms":500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []time.Duration{500 * time.Millisecond}, session.intervals)
	require.Equal(t, []bool{true}, session.enabled)
}

func TestHandleControl_Validation(t *testing.T) {
	router := makeSimulationRouter(NewSimulationHandler(&mockSession{}, quietLogger()))

	t.Run("empty body object", func(t *testing.T) {
		rec := postJSON(router, "/v1/simulation", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeValidationMissingField))
	})

	t.Run("non-positive interval_ms", func(t *testing.T) {
		rec := postJSON(router, "/v1/simulation", `{"interval_ms":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeValidationInvalidInterval))
	})

	t.Run("unparsable interval string", func(t *testing.T) {
		rec := postJSON(router, "/v1/simulation", `{"interval":"soon"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleControl_SessionErrorSurfaces(t *testing.T) {
	session := &mockSession{
		intervalErr: types.NewAppError(types.ErrCodeValidationInvalidInterval, "tick interval must be positive", nil),
	}
	router := makeSimulationRouter(NewSimulationHandler(session, quietLogger()))

	rec := postJSON(router, "/v1/simulation", `{"interval_ms":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
