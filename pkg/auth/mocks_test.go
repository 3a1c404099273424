package auth

import (
	"context"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
)

// mockUserRepo is a configurable in-memory UserRepository.
type mockUserRepo struct {
	users  map[string]*models.User
	getErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}
