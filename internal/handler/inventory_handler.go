package handler

import (
	"net/http"

	"pos-inventory/internal/model"
	"pos-inventory/internal/service"

	"github.com/rs/zerolog"
)

// InventoryHandler handles ingredient stock and purchase HTTP requests.
type InventoryHandler struct {
	inventory service.InventoryService
	purchases service.PurchaseService
	logger    zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory service.InventoryService, purchases service.PurchaseService, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		purchases: purchases,
		logger:    logger.With().Str("handler", "inventory").Logger(),
	}
}

// ListIngredients handles GET /api/ingredients requests.
func (h *InventoryHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.inventory.ListIngredients(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve ingredients", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ingredients)
}

// GetIngredient handles GET /api/ingredients/{id} requests.
func (h *InventoryHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	ingredient, err := h.inventory.GetIngredient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve ingredient", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ingredient)
}

// LogPurchase handles POST /api/purchases requests.
func (h *InventoryHandler) LogPurchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	purchase, err := h.purchases.LogPurchase(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to log purchase", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, purchase)
}

// ListPurchases handles GET /api/ingredients/{id}/purchases requests.
func (h *InventoryHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid limit parameter", h.logger)
		return
	}

	entries, err := h.purchases.ListByIngredient(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve purchases", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
