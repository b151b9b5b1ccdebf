package cli

import (
	"context"
	"errors"
	"fmt"
)

func (a *App) Whoami(ctx context.Context) error {
	a.session.Restore(ctx)

	user := a.session.Identity()
	if user == nil {
		return errors.New("not logged in")
	}

	fmt.Fprintf(a.out, "%s (%s), member since %s\n",
		user.Username, user.DisplayName, user.CreatedAt.Format("2006-01-02"))
	return nil
}
