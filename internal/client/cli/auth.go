package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/semanticapi/internal/client/client"
	"github.com/dmitrijs2005/semanticapi/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and obtains a session token.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.tokens.Login(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	a.userName = userName
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Logged in as", userName)
	return nil
}

// Logout revokes the token on the server.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.data.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}

	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Refresh asks the server for a new token if the current one is close to
// expiry.
func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	changed, err := a.tokens.Refresh(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Refresh failed:", err)
		return err
	}

	if changed {
		fmt.Fprintln(a.out, "Token refreshed")
	} else {
		fmt.Fprintln(a.out, "Token is not due for refresh")
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	name, err := a.tokens.WhoAmI(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "whoami failed:", err)
		return err
	}

	fmt.Fprintln(a.out, name)
	return nil
}
