package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// TransactionListResponse for GET /api/transactions
type TransactionListResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// TransactionHandler handles circulation HTTP requests: submitting borrows
// and returns, and reading the transaction log.
type TransactionHandler struct {
	circulationService services.CirculationService
	logger             *zap.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(circulationService services.CirculationService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		circulationService: circulationService,
		logger:             logger,
	}
}

// RegisterRoutes registers the transaction handler's routes on the given mux.
// Any authenticated user may submit and read circulation records.
func (h *TransactionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.Handle("POST /api/transactions",
		authMiddleware.RequireAuth(http.HandlerFunc(h.Submit)))
	mux.Handle("GET /api/transactions",
		authMiddleware.RequireAuth(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/transactions/{id}",
		authMiddleware.RequireAuth(http.HandlerFunc(h.Get)))
}

// Submit handles POST /api/transactions
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.CirculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	txn, err := h.circulationService.Submit(r.Context(), &req)
	if err != nil {
		h.logger.Warn("Circulation request failed",
			zap.String("book_id", req.BookID),
			zap.Int64("teacher_id", req.TeacherID),
			zap.String("action", req.Action),
			zap.Error(err))

		var statusErr *apperrors.StatusViolationError
		switch {
		case errors.As(err, &statusErr):
			// The message names the book's current status.
			if err := ErrorResponse(w, http.StatusConflict, "status_violation", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			// The message names what is missing, book or teacher.
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrInvalidAction),
			err.Error() == "book_id is required",
			err.Error() == "teacher_id is required":
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "submit_transaction_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: txn}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseListFilter(w, r)
	if !ok {
		return
	}

	transactions, err := h.circulationService.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_transactions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := TransactionListResponse{
		Transactions: transactions,
		Total:        len(transactions),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := ParseTransactionID(w, r, h.logger)
	if !ok {
		return
	}

	txn, err := h.circulationService.GetTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "transaction_not_found", "Transaction not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get transaction",
			zap.Int64("transaction_id", transactionID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_transaction_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: txn}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// parseListFilter builds a TransactionFilter from query parameters. Dates use
// the form YYYY-MM-DD.
func (h *TransactionHandler) parseListFilter(w http.ResponseWriter, r *http.Request) (models.TransactionFilter, bool) {
	filter := models.TransactionFilter{
		BookID: r.URL.Query().Get("book_id"),
		Action: r.URL.Query().Get("action"),
	}
	filter.Limit, filter.Offset = parsePagination(r, 50)

	if v := r.URL.Query().Get("teacher_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_teacher_id", "Invalid teacher ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return filter, false
		}
		filter.TeacherID = &id
	}

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_date", "Invalid 'from' date, expected YYYY-MM-DD"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return filter, false
		}
		filter.DateFrom = &t
	}

	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_date", "Invalid 'to' date, expected YYYY-MM-DD"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return filter, false
		}
		filter.DateTo = &t
	}

	return filter, true
}
