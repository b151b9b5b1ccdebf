package cli

import (
	"context"
	"fmt"
)

func (a *App) Login(ctx context.Context) error {
	username, err := promptLine(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s.\n", a.session.Identity().Username)
	return nil
}
