// Package handlers contains the HTTP handler implementations for the
// TrizzaOne dashboard API.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trizzaone/internal/aggregate"
	"trizzaone/internal/core"
	"trizzaone/internal/telemetry"
	"trizzaone/internal/types"
)

// defaultHourlyWindow is the trailing window used when the hours query
// parameter is omitted.
const defaultHourlyWindow = 24

// TelemetryHandler serves the live sample window and its derived aggregates.
type TelemetryHandler struct {
	store  *telemetry.Store
	clock  types.Clock
	logger *slog.Logger
}

// NewTelemetryHandler creates a TelemetryHandler over the given store.
func NewTelemetryHandler(store *telemetry.Store, clock types.Clock, logger *slog.Logger) *TelemetryHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelemetryHandler{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// RegisterRoutes mounts the telemetry endpoints onto the mux.
func (h *TelemetryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/samples", h.HandleListSamples)
	r.Get("/zones", h.HandleZoneAggregates)
	r.Get("/hourly", h.HandleHourly)
}

// HandleListSamples handles GET /v1/telemetry/samples.
// Optional query parameters: zone (filter), limit (cap the result).
func (h *TelemetryHandler) HandleListSamples(w http.ResponseWriter, r *http.Request) {
	samples := h.store.Snapshot()

	if zoneStr := r.URL.Query().Get("zone"); zoneStr != "" {
		zone, ok := types.ParseZone(zoneStr)
		if !ok {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidZone,
				"unknown zone: "+zoneStr, nil))
			return
		}
		samples = aggregate.FilterZone(zone, samples)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidWindow,
				"limit must be a positive integer", nil))
			return
		}
		if limit < len(samples) {
			samples = samples[:limit]
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: samples})
}

// HandleZoneAggregates handles GET /v1/telemetry/zones: per-zone counts,
// averages, and the latest sample, over the live window.
func (h *TelemetryHandler) HandleZoneAggregates(w http.ResponseWriter, r *http.Request) {
	aggs := aggregate.GroupByZone(h.store.Snapshot())
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: aggs})
}

// HandleHourly handles GET /v1/telemetry/hourly.
// Query parameters: metric (required), hours (optional, default 24).
func (h *TelemetryHandler) HandleHourly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	metricStr := q.Get("metric")
	if metricStr == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"metric query parameter is required", nil))
		return
	}
	metric, ok := types.ParseMetric(metricStr)
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidMetric,
			"unknown metric: "+metricStr, nil))
		return
	}

	hours := defaultHourlyWindow
	if hoursStr := q.Get("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed <= 0 || parsed > 168 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidWindow,
				"hours must be an integer between 1 and 168", nil))
			return
		}
		hours = parsed
	}

	buckets := aggregate.GroupByHour(metric, h.store.Snapshot(), h.clock.Now(), hours)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: buckets})
}
