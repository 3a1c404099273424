package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// BookListResponse for GET /api/books
type BookListResponse struct {
	Books []*models.Book `json:"books"`
	Total int            `json:"total"`
}

// CreateBookRequest for POST /api/books
type CreateBookRequest struct {
	BookID            string `json:"book_id"`
	Name              string `json:"name"`
	CategoryID        *int64 `json:"category_id,omitempty"`
	StorageLocationID *int64 `json:"storage_location_id,omitempty"`
	Status            string `json:"status,omitempty"`
}

// CategoryListResponse for GET /api/categories
type CategoryListResponse struct {
	Categories []*models.Category `json:"categories"`
	Total      int                `json:"total"`
}

// LocationListResponse for GET /api/locations
type LocationListResponse struct {
	Locations []*models.Location `json:"locations"`
	Total     int                `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// BookHandler handles book catalog HTTP requests.
type BookHandler struct {
	bookService services.BookService
	logger      *zap.Logger
}

// NewBookHandler creates a new book handler.
func NewBookHandler(bookService services.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// RegisterRoutes registers the book handler's routes on the given mux.
// Reads require authentication; writes additionally require the admin role.
func (h *BookHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.Handle("GET /api/books",
		authMiddleware.RequireAuth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/books",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Create))))
	mux.Handle("GET /api/books/stats",
		authMiddleware.RequireAuth(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/books/{id}",
		authMiddleware.RequireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/books/{id}",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Update))))
	mux.Handle("DELETE /api/books/{id}",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Delete))))
	mux.Handle("GET /api/categories",
		authMiddleware.RequireAuth(http.HandlerFunc(h.ListCategories)))
	mux.Handle("GET /api/locations",
		authMiddleware.RequireAuth(http.HandlerFunc(h.ListLocations)))
}

// List handles GET /api/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.BookFilter{
		Status: r.URL.Query().Get("status"),
	}
	filter.Limit, filter.Offset = parsePagination(r, 50)

	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_category_id", "Invalid category ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		filter.CategoryID = &id
	}

	books, err := h.bookService.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidStatus) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_status", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to list books", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_books_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := BookListResponse{
		Books: books,
		Total: len(books),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	book := &models.Book{
		BookID:            req.BookID,
		Name:              req.Name,
		CategoryID:        req.CategoryID,
		StorageLocationID: req.StorageLocationID,
		Status:            req.Status,
	}

	if err := h.bookService.Create(r.Context(), book); err != nil {
		h.logger.Error("Failed to create book",
			zap.String("book_id", req.BookID),
			zap.Error(err))

		switch {
		case errors.Is(err, apperrors.ErrConflict):
			if err := ErrorResponse(w, http.StatusConflict, "book_exists", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			// A referenced category or location does not exist.
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_reference", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrInvalidStatus),
			err.Error() == "book_id is required",
			err.Error() == "name is required":
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "create_book_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: book}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	book, err := h.bookService.Get(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "book_not_found", "Book not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get book",
			zap.String("book_id", bookID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_book_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: book}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	// Updates are field-enumerated. Unknown fields are rejected rather than
	// silently dropped.
	var update models.BookUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	book, err := h.bookService.Update(r.Context(), bookID, update)
	if err != nil {
		h.logger.Error("Failed to update book",
			zap.String("book_id", bookID),
			zap.Error(err))

		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			// The message names what is missing: the book itself or a
			// referenced dimension.
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrInvalidStatus),
			err.Error() == "name cannot be blank":
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "update_book_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: book}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	if err := h.bookService.Delete(r.Context(), bookID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "book_not_found", "Book not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete book",
			zap.String("book_id", bookID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "delete_book_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]string{"status": "deleted"}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Stats handles GET /api/books/stats
func (h *BookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to get book stats", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_stats_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: stats}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListCategories handles GET /api/categories
func (h *BookHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.bookService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_categories_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListLocations handles GET /api/locations
func (h *BookHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.bookService.ListLocations(r.Context())
	if err != nil {
		h.logger.Error("Failed to list locations", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_locations_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := LocationListResponse{
		Locations: locations,
		Total:     len(locations),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
