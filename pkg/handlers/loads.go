package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/logging"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/services/load"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// LoadRunListResponse for GET /api/loads
type LoadRunListResponse struct {
	Runs  []*models.LoadRun `json:"runs"`
	Total int               `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// LoadHandler handles bulk load HTTP requests: uploading CSV files and
// reading run history.
type LoadHandler struct {
	loadService    load.Service
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewLoadHandler creates a new load handler.
func NewLoadHandler(loadService load.Service, maxUploadBytes int64, logger *zap.Logger) *LoadHandler {
	return &LoadHandler{
		loadService:    loadService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the load handler's routes on the given mux.
// Bulk loads rewrite inventory, so every route requires the admin role.
func (h *LoadHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.Handle("POST /api/loads",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Upload))))
	mux.Handle("GET /api/loads",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.List))))
	mux.Handle("GET /api/loads/{id}",
		authMiddleware.RequireAuth(authMiddleware.RequireAdmin(http.HandlerFunc(h.Get))))
}

// Upload handles POST /api/loads. It accepts a multipart form with the CSV
// under "file" and an optional "profile" field naming the source profile.
func (h *LoadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "File too large or invalid multipart form"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_file", "No file provided under field 'file'"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	defer file.Close()

	profile := r.FormValue("profile")
	// The filename is client input and lands in run history, which caps the
	// source at 255 characters.
	source := logging.TruncateString(header.Filename, 250)

	run, err := h.loadService.LoadReader(r.Context(), file, source, profile)
	if err != nil {
		h.logger.Error("Load run failed",
			zap.String("source", source),
			zap.String("profile", profile),
			zap.Error(err))

		switch {
		case errors.Is(err, load.ErrMissingColumn):
			if err := ErrorResponse(w, http.StatusBadRequest, "missing_column", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case strings.Contains(err.Error(), "unknown source profile"):
			if err := ErrorResponse(w, http.StatusBadRequest, "unknown_profile", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "load_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: run}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/loads
func (h *LoadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	runs, err := h.loadService.ListRuns(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list load runs", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_load_runs_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := LoadRunListResponse{
		Runs:  runs,
		Total: len(runs),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/loads/{id}
func (h *LoadHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID, ok := ParseRunID(w, r, h.logger)
	if !ok {
		return
	}

	run, err := h.loadService.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "run_not_found", "Load run not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get load run",
			zap.String("run_id", runID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_load_run_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: run}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
