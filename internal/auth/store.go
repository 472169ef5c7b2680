package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/krishanu7/debate-backend/internal/apperr"
)

// Store is the credential store.
type Store interface {
	// CreateUser fails with a conflict when the email is taken.
	CreateUser(ctx context.Context, u User) error
	// FindByEmail fails with not found when no user has the email.
	FindByEmail(ctx context.Context, email string) (User, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]User)}
}

func (m *MemoryStore) CreateUser(_ context.Context, u User) error {
	key := strings.ToLower(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[key]; exists {
		return apperr.Conflictf("email already exists")
	}
	m.byEmail[key] = u
	return nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, apperr.NotFoundf("user not found")
	}
	return u, nil
}
