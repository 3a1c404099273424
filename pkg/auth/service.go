package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// AuthService authenticates users and validates bearer tokens on incoming
// requests.
type AuthService interface {
	// Login verifies a username/password pair and returns a signed access
	// token for the user. Returns apperrors.ErrInvalidCredentials for an
	// unknown username or a wrong password; callers must not distinguish
	// the two.
	Login(ctx context.Context, username, password string) (string, *models.User, error)

	// ValidateRequest checks the Authorization header of an HTTP request
	// and returns the verified claims and the raw token.
	ValidateRequest(r *http.Request) (*Claims, string, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthService creates an AuthService backed by the given user repository
// and token manager.
func NewAuthService(users repositories.UserRepository, tokens *TokenManager, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("auth-service"),
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug("Login attempt for unknown user", zap.String("username", username))
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Login attempt with wrong password", zap.String("username", username))
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token for %q: %w", username, err)
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return token, user, nil
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "", fmt.Errorf("invalid Authorization header format, expected 'Bearer <token>'")
	}

	tokenString := parts[1]
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, "", fmt.Errorf("invalid token: %w", err)
	}

	return claims, tokenString, nil
}

var _ AuthService = (*authService)(nil)
