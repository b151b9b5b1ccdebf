package cli

import (
	"context"
	"fmt"
)

func (a *App) Register(ctx context.Context) error {
	username, err := promptLine(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	displayName, err := promptLine(a.reader, a.out, "Display name")
	if err != nil {
		return err
	}

	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, map[string]any{
		"username":    username,
		"displayName": displayName,
		"password":    password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. You can now log in.")
	return nil
}
