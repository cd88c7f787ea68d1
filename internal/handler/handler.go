package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"pos-inventory/internal/middleware"
	"pos-inventory/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// statusByCode maps API error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:         http.StatusBadRequest,
	model.ErrCodeMissingField:        http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:     http.StatusBadRequest,
	model.ErrCodeInvalidConversion:   http.StatusBadRequest,
	model.ErrCodeInvalidPurchase:     http.StatusBadRequest,
	model.ErrCodeInvalidOrder:        http.StatusBadRequest,
	model.ErrCodeProductNotFound:     http.StatusNotFound,
	model.ErrCodeIngredientNotFound:  http.StatusNotFound,
	model.ErrCodeConversionNotFound:  http.StatusNotFound,
	model.ErrCodeDuplicateConversion: http.StatusConflict,
	model.ErrCodeTransactionConflict: http.StatusConflict,
	model.ErrCodeStockUnitChanged:    http.StatusConflict,
	model.ErrCodeProductNotTracked:   http.StatusUnprocessableEntity,
	model.ErrCodeNoConversionPath:    http.StatusUnprocessableEntity,
	model.ErrCodeRecipeDepthExceeded: http.StatusUnprocessableEntity,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
}

// StatusForCode returns the HTTP status for an API error code.
func StatusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.CorrelationIDFromContext(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("correlation_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         message,
		Code:          code,
		CorrelationID: correlationID,
	})
}

// writeServiceError maps a service error to its status and writes it.
// Domain messages are returned verbatim; internal failures get fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	code := model.CodeOf(err)
	status := StatusForCode(code)

	message := err.Error()
	if code == model.ErrCodeInternalError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		message = fallback
	}

	writeError(w, r, status, code, message, logger)
}

// decodeJSON decodes the request body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		message := "invalid request body"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			message = "request body too large"
		} else if errors.Is(err, io.EOF) {
			message = "request body is empty"
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, message, logger)
		return false
	}
	return true
}

// pathID parses a positive integer path parameter and writes a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField,
			fmt.Sprintf("invalid %s %q", name, raw), logger)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
