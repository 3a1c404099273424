package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// TeacherListResponse for GET /api/teachers
type TeacherListResponse struct {
	Teachers []*models.Teacher `json:"teachers"`
	Total    int               `json:"total"`
}

// CreateTeacherRequest for POST /api/teachers
type CreateTeacherRequest struct {
	Name      string  `json:"name"`
	Classroom *string `json:"classroom,omitempty"`
}

// ============================================================================
// Handler
// ============================================================================

// TeacherHandler handles borrower roster HTTP requests.
type TeacherHandler struct {
	teacherService services.TeacherService
	logger         *zap.Logger
}

// NewTeacherHandler creates a new teacher handler.
func NewTeacherHandler(teacherService services.TeacherService, logger *zap.Logger) *TeacherHandler {
	return &TeacherHandler{
		teacherService: teacherService,
		logger:         logger,
	}
}

// RegisterRoutes registers the teacher handler's routes on the given mux.
// Reads require authentication; writes additionally require the admin role.
func (h *TeacherHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.Handle("GET /api/teachers",
		authMiddleware.RequireAuth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/teachers",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Create))))
	mux.Handle("GET /api/teachers/{id}",
		authMiddleware.RequireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/teachers/{id}",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Update))))
	mux.Handle("DELETE /api/teachers/{id}",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Delete))))
}

// List handles GET /api/teachers
func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 50)

	teachers, err := h.teacherService.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list teachers", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_teachers_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := TeacherListResponse{
		Teachers: teachers,
		Total:    len(teachers),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/teachers
func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	teacher := &models.Teacher{
		Name:      req.Name,
		Classroom: req.Classroom,
	}

	if err := h.teacherService.Create(r.Context(), teacher); err != nil {
		h.logger.Error("Failed to create teacher",
			zap.String("name", req.Name),
			zap.Error(err))

		if err.Error() == "name is required" {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := ErrorResponse(w, http.StatusInternalServerError, "create_teacher_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: teacher}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/teachers/{id}
func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := ParseTeacherID(w, r, h.logger)
	if !ok {
		return
	}

	teacher, err := h.teacherService.Get(r.Context(), teacherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "teacher_not_found", "Teacher not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get teacher",
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_teacher_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: teacher}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/teachers/{id}
func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := ParseTeacherID(w, r, h.logger)
	if !ok {
		return
	}

	var update models.TeacherUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	teacher, err := h.teacherService.Update(r.Context(), teacherID, update)
	if err != nil {
		h.logger.Error("Failed to update teacher",
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))

		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "teacher_not_found", "Teacher not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case err.Error() == "name cannot be blank":
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "update_teacher_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: teacher}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/teachers/{id}
func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := ParseTeacherID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.teacherService.Delete(r.Context(), teacherID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "teacher_not_found", "Teacher not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete teacher",
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "delete_teacher_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]string{"status": "deleted"}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
