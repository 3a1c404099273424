package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
)

func newTestAuthService(t *testing.T) (AuthService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	tokens := NewTokenManager("test-secret", 60)
	return NewAuthService(users, tokens, zap.NewNop()), users
}

func seedUser(t *testing.T, repo *mockUserRepo, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users[username] = &models.User{
		UserID:       int64(len(repo.users) + 1),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice", "correct horse", models.RoleAdmin)

	token, user, err := svc.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice", "correct horse", models.RoleUser)

	_, _, err := svc.Login(context.Background(), "alice", "battery staple")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_RepoError(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.getErr = errors.New("connection refused")

	_, _, err := svc.Login(context.Background(), "alice", "correct horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAuthService_ValidateRequest(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice", "correct horse", models.RoleUser)

	token, _, err := svc.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/books", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	claims, raw, err := svc.ValidateRequest(r)
	require.NoError(t, err)
	assert.Equal(t, token, raw)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthService_ValidateRequest_MissingHeader(t *testing.T) {
	svc, _ := newTestAuthService(t)

	r := httptest.NewRequest("GET", "/api/books", nil)
	_, _, err := svc.ValidateRequest(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing Authorization header")
}

func TestAuthService_ValidateRequest_MalformedHeader(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, header := range []string{"Bearer", "Basic dXNlcjpwYXNz", "Bearer a b"} {
		r := httptest.NewRequest("GET", "/api/books", nil)
		r.Header.Set("Authorization", header)

		_, _, err := svc.ValidateRequest(r)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}

func TestAuthService_ValidateRequest_LowercaseBearer(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice", "correct horse", models.RoleUser)

	token, _, err := svc.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/books", nil)
	r.Header.Set("Authorization", "bearer "+token)

	claims, _, err := svc.ValidateRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestAuthService_ValidateRequest_GarbageToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	r := httptest.NewRequest("GET", "/api/books", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")

	_, _, err := svc.ValidateRequest(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
