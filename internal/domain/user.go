package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	// Secret is kept in the User struct rather than a separate credentials
	// table. Rationale:
	// - User and secret have identical lifecycle (created/deleted together)
	// - Login is the only reader and it always needs both
	// - Separation would add JOIN queries and dual updates without clear benefit
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, username, displayName, secret string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
