package handler

import (
	"net/http"

	"pos-inventory/internal/model"
	"pos-inventory/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	carts   service.CartService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, carts service.CartService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		carts:   carts,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/orders requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Quote handles POST /api/orders/quote requests.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.QuoteRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	quote, err := h.carts.Quote(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to price cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
