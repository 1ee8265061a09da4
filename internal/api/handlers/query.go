package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trizzaone/internal/core"
	"trizzaone/internal/query"
	"trizzaone/internal/types"
)

// QueryEngine answers free-text dashboard questions.
type QueryEngine interface {
	Ask(ctx context.Context, text string) (query.Answer, error)
}

type queryRequest struct {
	Text string `json:"text"`
}

// QueryHandler exposes the natural-language query endpoint.
type QueryHandler struct {
	engine QueryEngine
	logger *slog.Logger
}

// NewQueryHandler creates a QueryHandler over the given engine.
func NewQueryHandler(engine QueryEngine, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{
		engine: engine,
		logger: logger,
	}
}

// RegisterRoutes mounts the query endpoint onto the mux.
func (h *QueryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleQuery)
}

// HandleQuery handles POST /v1/query.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.Text == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"text is required", nil))
		return
	}

	answer, err := h.engine.Ask(r.Context(), req.Text)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: answer})
}
