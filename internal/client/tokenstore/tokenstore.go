// Package tokenstore persists the client's bearer token across restarts.
package tokenstore

import "context"

// Store holds the bearer token between runs. Load returns the empty string
// when no token has been saved.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
