package domain

import (
	"context"

	"github.com/google/uuid"
)

// TokenStore manages opaque bearer tokens. Tokens are random identifiers
// resolved server-side; they carry no claims of their own.
type TokenStore interface {
	// Issue mints a fresh token for the given user.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)

	// Resolve returns the user the token belongs to, or ErrTokenInvalid
	// if the token is unknown or expired.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)

	// Revoke deletes a token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}
