// Package memory provides in-memory implementations of the domain
// repositories for single-instance mode and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Brinda301/sessiongate/internal/domain"
)

// UserRepo implements domain.UserRepository with map-backed storage.
type UserRepo struct {
	mu         sync.RWMutex
	clock      clockwork.Clock
	users      map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
}

func NewUserRepo(clock clockwork.Clock) *UserRepo {
	return &UserRepo{
		clock:      clock,
		users:      make(map[uuid.UUID]domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) Create(_ context.Context, username, displayName, secret string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[username]; exists {
		return nil, domain.ErrUsernameTaken
	}

	now := r.clock.Now()
	user := domain.User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		Secret:      secret,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.users[user.ID] = user
	r.byUsername[username] = user.ID

	copied := user
	return &copied, nil
}

func (r *UserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[userID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	copied := user
	return &copied, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	user := r.users[userID]
	copied := user
	return &copied, nil
}

// Delete removes a user. Used by tests to simulate accounts that vanish
// between token issuance and resolution.
func (r *UserRepo) Delete(_ context.Context, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		delete(r.byUsername, user.Username)
		delete(r.users, userID)
	}
}
