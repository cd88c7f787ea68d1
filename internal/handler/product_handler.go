package handler

import (
	"net/http"

	"pos-inventory/internal/model"
	"pos-inventory/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service  service.ProductService
	restocks service.RestockService
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, restocks service.RestockService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		restocks: restocks,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid limit parameter", h.logger)
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid offset parameter", h.logger)
		return
	}

	products, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ProductListResponse{
		Products: products,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Restock handles POST /api/preparations/{id}/restock requests.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.RestockRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.restocks.Restock(r.Context(), productID, req.Quantity); err != nil {
		writeServiceError(w, r, err, "failed to restock product", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

