package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware enforces bearer-token authentication on HTTP handlers.
type Middleware struct {
	auth    AuthService
	enabled bool
	logger  *zap.Logger
}

// NewMiddleware creates an auth middleware. When enabled is false every
// request passes through unauthenticated; use only for local development.
func NewMiddleware(auth AuthService, enabled bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		auth:    auth,
		enabled: enabled,
		logger:  logger.Named("auth-middleware"),
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		claims, _, err := m.auth.ValidateRequest(r)
		if err != nil {
			m.logger.Debug("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated requests whose token lacks the admin
// role. It must run after RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		claims := GetClaims(r.Context())
		if claims == nil {
			m.unauthorized(w, "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			m.logger.Debug("Rejected non-admin request",
				zap.String("path", r.URL.Path),
				zap.String("username", claims.Subject))
			m.forbidden(w, "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusUnauthorized, "unauthorized", message)
}

func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusForbidden, "forbidden", message)
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	}); err != nil {
		m.logger.Error("Failed to write auth error response", zap.Error(err))
	}
}
