package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Brinda301/sessiongate/internal/domain"
)

// TokenStore keeps bearer tokens in Redis, one key per token with the
// owning user ID as value. Expiry is delegated to Redis TTLs.
type TokenStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewTokenStore(rdb goredis.Cmdable, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, ttl: ttl}
}

func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()

	if err := s.rdb.Set(ctx, tokenKey(token), userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	result, err := s.rdb.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	userID, err := uuid.Parse(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt token mapping: %w", err)
	}
	return userID, nil
}

func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func tokenKey(token string) string {
	return "token:" + token
}
