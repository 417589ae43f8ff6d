package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pricegate/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a username and password and opens the session.
//
// Every rejection prints the same "Invalid credentials" line. The password
// byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Already logged in as %s; logout first\n", a.sess.Username())
		return nil
	}

	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out, a.ttyFd)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.withGate(func() error {
		_, err := a.gate.Login(ctx, a.sess, userName, string(password))
		return err
	})
	if err != nil {
		return a.fail(ctx, err)
	}

	a.success("Welcome, %s!", a.sess.CurrentUser.DisplayName())
	if a.isAdmin() {
		fmt.Fprintln(a.out, hintStyle.Render("You can manage users: users, adduser, deluser"))
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.fail(ctx, common.ErrNotLoggedIn)
	}
	if err := a.withGate(func() error {
		a.gate.Logout(ctx, a.sess)
		return nil
	}); err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the greeting line for the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	u := a.sess.CurrentUser
	fmt.Fprintf(a.out, "%s (%s), role %s, since %s\n",
		u.DisplayName(), u.Username, u.Role, a.sess.StartedAt.Format("2006-01-02 15:04"))
	return nil
}
