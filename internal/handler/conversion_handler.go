package handler

import (
	"net/http"
	"strconv"

	"pos-inventory/internal/model"
	"pos-inventory/internal/service"

	"github.com/rs/zerolog"
)

// ConversionHandler handles unit conversion HTTP requests.
type ConversionHandler struct {
	service service.ConversionService
	logger  zerolog.Logger
}

// NewConversionHandler creates a new conversion handler.
func NewConversionHandler(service service.ConversionService, logger zerolog.Logger) *ConversionHandler {
	return &ConversionHandler{
		service: service,
		logger:  logger.With().Str("handler", "conversion").Logger(),
	}
}

// List handles GET /api/conversions requests.
func (h *ConversionHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve conversions", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}

// Create handles POST /api/conversions requests.
func (h *ConversionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ConversionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	rule, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create conversion", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// Update handles PUT /api/conversions/{id} requests.
func (h *ConversionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ConversionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	rule, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update conversion", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/conversions/{id} requests.
func (h *ConversionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete conversion", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resolve handles GET /api/conversions/resolve requests.
func (h *ConversionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var ingredientID *int64
	if raw := query.Get("ingredientId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidConversion, "invalid ingredientId parameter", h.logger)
			return
		}
		ingredientID = &id
	}

	resolved, err := h.service.Resolve(r.Context(), query.Get("from"), query.Get("to"), ingredientID)
	if err != nil {
		writeServiceError(w, r, err, "failed to resolve conversion", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resolved)
}
