package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trizzaone/internal/core"
	"trizzaone/internal/types"
)

// SessionController is the runtime control surface of the simulation
// session.
type SessionController interface {
	SetEnabled(ctx context.Context, enabled bool) error
	SetInterval(ctx context.Context, d time.Duration) error
}

// simulationRequest is the POST /v1/simulation body. Both fields are
// optional; omitted fields leave the corresponding setting untouched.
type simulationRequest struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	IntervalMS *int64  `json:"interval_ms,omitempty"`
	Interval   *string `json:"interval,omitempty"`
}

type simulationResponse struct {
	Applied bool `json:"applied"`
}

// SimulationHandler exposes runtime control of the telemetry session.
type SimulationHandler struct {
	session SessionController
	logger  *slog.Logger
}

// NewSimulationHandler creates a SimulationHandler over the given session.
func NewSimulationHandler(session SessionController, logger *slog.Logger) *SimulationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationHandler{
		session: session,
		logger:  logger,
	}
}

// RegisterRoutes mounts the simulation control endpoint onto the mux.
func (h *SimulationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleControl)
}

// HandleControl handles POST /v1/simulation. Interval may be given as
// interval_ms (integer milliseconds) or interval (Go duration string); when
// both are present interval_ms wins.
func (h *SimulationHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.Enabled == nil && req.IntervalMS == nil && req.Interval == nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"at least one of enabled, interval_ms, interval is required", nil))
		return
	}

	interval, err := h.resolveInterval(req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	// Interval first so a combined enable+retune starts at the new cadence.
	if interval > 0 {
		if err := h.session.SetInterval(r.Context(), interval); err != nil {
			core.Error(w, r, err)
			return
		}
	}
	if req.Enabled != nil {
		if err := h.session.SetEnabled(r.Context(), *req.Enabled); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: simulationResponse{Applied: true}})
}

func (h *SimulationHandler) resolveInterval(req simulationRequest) (time.Duration, error) {
	if req.IntervalMS != nil {
		if *req.IntervalMS <= 0 {
			return 0, types.NewAppError(types.ErrCodeValidationInvalidInterval,
				"interval_ms must be a positive integer", nil)
		}
		return time.Duration(*req.IntervalMS) * time.Millisecond, nil
	}
	if req.Interval != nil {
		d, err := time.ParseDuration(*req.Interval)
		if err != nil || d <= 0 {
			return 0, types.NewAppError(types.ErrCodeValidationInvalidInterval,
				"interval must be a positive duration string", err)
		}
		return d, nil
	}
	return 0, nil
}
