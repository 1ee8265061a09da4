package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trizzaone/internal/core"
	"trizzaone/internal/types"
)

// EventLister supplies recent dispatched events. Backed by the Postgres
// event repository in production.
type EventLister interface {
	ListRecent(ctx context.Context, limit int) ([]types.Event, error)
}

// EventsHandler serves the dispatched-event feed.
type EventsHandler struct {
	events EventLister
	logger *slog.Logger
}

// NewEventsHandler creates an EventsHandler over the given event source.
func NewEventsHandler(events EventLister, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

// RegisterRoutes mounts the event endpoints onto the mux.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListEvents)
}

// HandleListEvents handles GET /v1/events.
// Optional query parameter: limit (default 5, max 100).
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 100 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidWindow,
				"limit must be an integer between 1 and 100", nil))
			return
		}
		limit = parsed
	}

	events, err := h.events.ListRecent(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: events})
}
