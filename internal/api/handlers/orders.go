package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trizzaone/internal/core"
	"trizzaone/internal/types"
)

// OrderStore supplies order persistence and listing for the handler.
type OrderStore interface {
	Insert(ctx context.Context, o types.Order) error
	ListRecent(ctx context.Context, limit int) ([]types.Order, error)
}

// EventDispatcher forwards a detected event through the notification policy.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev types.Event) bool
}

// maxRating is the top of the 0-5 dish rating scale.
const maxRating = 5

// createOrderRequest is the POST /v1/orders body. Rating and comment are
// optional and defaulted downstream.
type createOrderRequest struct {
	DishName string `json:"dish_name"`
	Quantity int    `json:"quantity"`
	Rating   int    `json:"rating,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// OrdersHandler serves the order history and accepts new orders.
type OrdersHandler struct {
	orders     OrderStore
	dispatcher EventDispatcher // optional
	clock      types.Clock
	logger     *slog.Logger
}

// NewOrdersHandler creates an OrdersHandler. The dispatcher is optional;
// without it order submission skips the informational event.
func NewOrdersHandler(orders OrderStore, dispatcher EventDispatcher, clock types.Clock, logger *slog.Logger) *OrdersHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersHandler{
		orders:     orders,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
	}
}

// RegisterRoutes mounts the order endpoints onto the mux.
func (h *OrdersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListOrders)
	r.Post("/", h.HandleCreateOrder)
}

// HandleListOrders handles GET /v1/orders.
// Optional query parameter: limit (default 20, max 100).
func (h *OrdersHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 100 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidWindow,
				"limit must be an integer between 1 and 100", nil))
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListRecent(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: orders})
}

// HandleCreateOrder handles POST /v1/orders: persists the order and emits an
// informational order-received event through the dispatcher.
func (h *OrdersHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.DishName == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"dish_name is required", nil))
		return
	}
	if req.Quantity <= 0 {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"quantity must be a positive integer", nil))
		return
	}
	if req.Rating < 0 || req.Rating > maxRating {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidRating,
			fmt.Sprintf("rating must be between 0 and %d", maxRating), nil))
		return
	}

	order := types.Order{
		ID:        uuid.NewString(),
		DishName:  req.DishName,
		Quantity:  req.Quantity,
		Rating:    req.Rating,
		Comment:   req.Comment,
		OrderedAt: h.clock.Now(),
	}

	if err := h.orders.Insert(r.Context(), order); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(r.Context(), types.Event{
			ID:        uuid.NewString(),
			Kind:      types.EventOrderReceived,
			Message:   fmt.Sprintf("order received: %dx %s", order.Quantity, order.DishName),
			Severity:  types.SeverityInfo,
			Timestamp: h.clock.Now(),
		})
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: order})
}
