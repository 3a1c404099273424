package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthHandler_Health(t *testing.T) {
	// Liveness must not depend on the database; a failing pinger is fine.
	handler := NewHealthHandler(&config.Config{}, stubPinger{err: errors.New("down")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthHandler_Ping(t *testing.T) {
	cfg := &config.Config{Env: "test", Version: "1.2.3"}
	handler := NewHealthHandler(cfg, stubPinger{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	handler.Ping(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response PingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "librarian", response.Service)
	assert.Equal(t, "1.2.3", response.Version)
	assert.Equal(t, "test", response.Environment)
	assert.Equal(t, "ok", response.Database)
	assert.NotEmpty(t, response.GoVersion)
}

func TestHealthHandler_Ping_DatabaseUnreachable(t *testing.T) {
	cfg := &config.Config{Env: "test", Version: "1.2.3"}
	handler := NewHealthHandler(cfg, stubPinger{err: errors.New("connection refused")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	handler.Ping(rec, req)

	// Degraded, not an error: the probe reports, callers decide.
	assert.Equal(t, http.StatusOK, rec.Code)

	var response PingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "unreachable", response.Database)
}

func TestHealthHandler_Ping_NoDatabase(t *testing.T) {
	handler := NewHealthHandler(&config.Config{}, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	handler.Ping(rec, req)

	var response PingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "skipped", response.Database)
}
