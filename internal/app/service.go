package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Brinda301/sessiongate/internal/domain"
	"github.com/Brinda301/sessiongate/internal/platform/password"
)

// Service is the application layer — the only component that references multiple
// domain components. It orchestrates all use cases.
type Service struct {
	users     domain.UserRepository
	tokens    domain.TokenStore
	passwords *password.Argon2
}

// NewService creates the application layer service.
func NewService(users domain.UserRepository, tokens domain.TokenStore) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		passwords: password.NewArgon2(),
	}
}

// Register creates a new account. An empty display name falls back to the
// username. Returns domain.ErrUsernameTaken when the username is in use.
func (s *Service) Register(ctx context.Context, username, displayName, password string) (*domain.User, error) {
	if displayName == "" {
		displayName = username
	}

	secret, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, displayName, secret)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and issues a fresh bearer token. A missing
// user and a wrong password both map to domain.ErrInvalidCredentials so
// responses do not reveal which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.passwords.Verify(password, user.Secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

// ResolveToken maps a bearer token back to its user. Tokens that survive
// their account are revoked on sight and reported as invalid.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		if revokeErr := s.tokens.Revoke(ctx, token); revokeErr != nil {
			slog.ErrorContext(ctx, "Failed to revoke orphaned token", "user_id", userID, "error", revokeErr)
		}
		return nil, domain.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

// Logout revokes the given token. Revoking an already-dead token succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	slog.InfoContext(ctx, "User logged out")
	return nil
}
