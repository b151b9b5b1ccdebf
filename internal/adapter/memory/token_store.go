package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Brinda301/sessiongate/internal/domain"
)

type tokenEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// TokenStore implements domain.TokenStore with map-backed storage.
// Expired tokens are dropped lazily on Resolve.
type TokenStore struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	tokens map[string]tokenEntry
}

func NewTokenStore(clock clockwork.Clock, ttl time.Duration) *TokenStore {
	return &TokenStore{
		clock:  clock,
		ttl:    ttl,
		tokens: make(map[string]tokenEntry),
	}
}

func (s *TokenStore) Issue(_ context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = tokenEntry{
		userID:    userID,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return token, nil
}

func (s *TokenStore) Resolve(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.tokens[token]
	if !exists {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return entry.userID, nil
}

func (s *TokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}
