// Package auth issues and verifies the bearer tokens that protect the HTTP
// API. Tokens are signed locally with HS256; there is no external identity
// provider. Login exchanges a username and password for a short-lived token,
// and the middleware in this package gates requests on it.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/libreshelf/librarian/pkg/models"
)

type contextKey string

// ClaimsKey is the context key under which RequireAuth stores the verified
// claims for downstream handlers.
const ClaimsKey contextKey = "auth_claims"

// Claims is the token payload. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role,omitempty"`
}

// IsAdmin reports whether the token belongs to an admin user.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// GetClaims extracts verified claims from a request context. Returns nil if
// the request did not pass through RequireAuth (for example when verification
// is disabled).
func GetClaims(ctx context.Context) *Claims {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUsernameFromContext returns the authenticated username, or "" when the
// request is unauthenticated.
func GetUsernameFromContext(ctx context.Context) string {
	claims := GetClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// GetRoleFromContext returns the authenticated user's role, or "" when the
// request is unauthenticated.
func GetRoleFromContext(ctx context.Context) string {
	claims := GetClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Role
}
