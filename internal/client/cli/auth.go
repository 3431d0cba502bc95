package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/akarpov87/authkeeper/internal/client/client"
	"github.com/akarpov87/authkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for an email and password and authenticates against
// the backend. The password byte slice is securely wiped before returning.
// An authentication failure is reported to the user, not returned as an
// error, so the REPL keeps running.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.client.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrInvalidCredentials):
			log.Println("Login unsuccessful: invalid credentials")
		case errors.Is(err, client.ErrUnavailable):
			log.Println("Server unavailable, please try again later")
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return nil
	}

	log.Printf("Logged in as %s", user.Name)
	return nil
}

// Logout revokes the refresh token and clears the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Println("Server unavailable, session cleared locally")
			return nil
		}
		return err
	}
	log.Println("Logged out")
	return nil
}

// Me fetches and prints the current user's profile.
func (a *App) Me(ctx context.Context) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			log.Println("Session expired, please log in again")
			return nil
		}
		if errors.Is(err, client.ErrUnavailable) {
			log.Println("Server unavailable, please try again later")
			return nil
		}
		return err
	}

	fmt.Printf("id:    %s\nemail: %s\nname:  %s\n", user.ID, user.Email, user.Name)
	return nil
}

// Refresh forces a token rotation.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.client.Refresh(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			log.Println("Session expired, please log in again")
			return nil
		}
		if errors.Is(err, client.ErrUnavailable) {
			log.Println("Server unavailable, please try again later")
			return nil
		}
		return err
	}
	log.Println("Tokens refreshed")
	return nil
}
