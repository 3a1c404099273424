package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/config"
)

const dbProbeTimeout = 2 * time.Second

// Pinger reports database reachability for status probes. *database.DB
// satisfies it via the embedded pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingResponse describes the running service and its database.
type PingResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	Database      string `json:"database"`
	GoVersion     string `json:"go_version"`
	Hostname      string `json:"hostname,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthHandler serves the liveness and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	db      Pinger
	started time.Time
	logger  *zap.Logger
}

// NewHealthHandler creates a HealthHandler. db may be nil, in which case the
// database probe is skipped.
func NewHealthHandler(cfg *config.Config, db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, started: time.Now(), logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Health handles GET /health. It answers "ok" without touching the database,
// so container liveness checks do not flap during database outages.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping. It reports build and environment details plus a
// bounded database reachability probe.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	status, dbStatus := "ok", "ok"
	if h.db == nil {
		dbStatus = "skipped"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), dbProbeTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Status probe found database unreachable", zap.Error(err))
			status, dbStatus = "degraded", "unreachable"
		}
	}

	hostname, _ := os.Hostname()

	response := PingResponse{
		Status:        status,
		Service:       "librarian",
		Version:       h.cfg.Version,
		Environment:   h.cfg.Env,
		Database:      dbStatus,
		GoVersion:     runtime.Version(),
		Hostname:      hostname,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
