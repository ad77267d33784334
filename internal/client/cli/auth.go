package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/api"
	"github.com/dmitrijs2005/bookapi/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates the account. The server
// logs the new user in, so the returned token is kept.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	mobile, err := getSimpleText(a.reader, "Enter mobile (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Register(ctx, &api.RegisterRequest{
		UserName: userName,
		Password: string(password),
		Email:    email,
		Mobile:   mobile,
	})
	if err != nil {
		return a.report(err)
	}

	a.userName = resp.UserName
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", resp.UserName)
	return nil
}

// Login prompts for credentials and stores the issued token.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		return a.report(err)
	}

	a.userName = resp.UserName
	fmt.Fprintf(a.out, "Logged in as %s\n", resp.UserName)
	return nil
}

// Logout drops the local token.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the identity carried by the current token.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	who, err := a.client.WhoAmI(ctx)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "User:    %s\nEmail:   %s\nID:      %s\nExpires: %s\n",
		who.UserName, who.Email, who.UserID, who.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}
