// Package cli implements the interactive commands of the sessiongate client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Brinda301/sessiongate/internal/client/config"
	"github.com/Brinda301/sessiongate/internal/client/session"
	"github.com/Brinda301/sessiongate/internal/client/tokenstore"
)

type App struct {
	session *session.Store
	tokens  *tokenstore.SQLiteStore
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	tokens, err := tokenstore.OpenSQLite(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, err
	}

	return &App{
		session: session.New(tokens, session.Options{BackendURL: cfg.BackendURL}),
		tokens:  tokens,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Close() error {
	if a.tokens == nil {
		return nil
	}
	return a.tokens.Close()
}
