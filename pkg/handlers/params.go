package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseTeacherID extracts and validates the teacher ID from the request path.
// Returns the parsed ID and true on success, or 0 and false on error (after
// writing an error response).
// Expects path parameter: id
func ParseTeacherID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseInt64(w, r, "id", "invalid_teacher_id", "Invalid teacher ID format", logger)
}

// ParseTransactionID extracts and validates the transaction ID from the
// request path. Returns the parsed ID and true on success, or 0 and false on
// error (after writing an error response).
// Expects path parameter: id
func ParseTransactionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseInt64(w, r, "id", "invalid_transaction_id", "Invalid transaction ID format", logger)
}

// ParseRunID extracts and validates the load run ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: id
func ParseRunID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_run_id", "Invalid run ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// parseInt64 is the internal helper that does the actual parsing work.
func parseInt64(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	idStr := r.PathValue(pathParam)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

// parsePagination reads limit and offset query parameters. Missing or
// malformed values fall back to the defaults.
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
