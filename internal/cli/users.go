package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
)

var usersHeader = []string{"USERNAME", "NAME", "SURNAME", "EMAIL", "ROLE"}

// Users prints the directory. Password digests are never shown.
func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return a.fail(ctx, err)
	}

	var users []directory.UserRecord
	err := a.withGate(func() error {
		var err error
		users, err = a.gate.ListUsers(ctx, a.sess)
		return err
	})
	if err != nil {
		return a.fail(ctx, err)
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users yet")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.Name, u.Surname, u.Email, string(u.Role)})
	}
	fmt.Fprintln(a.out, renderTable(usersHeader, rows))
	return nil
}

// AddUser walks the admin through the create form.
func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return a.fail(ctx, err)
	}

	var nu directory.NewUser
	var err error

	if nu.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out, a.ttyFd)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	nu.Password = string(password)

	if nu.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if nu.Surname, err = getSimpleText(a.reader, "Surname", a.out); err != nil {
		return err
	}
	if nu.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if nu.Role, err = getSimpleText(a.reader, "Role (user/admin, empty for user)", a.out); err != nil {
		return err
	}

	if err := a.withGate(func() error { return a.gate.CreateUser(ctx, a.sess, nu) }); err != nil {
		return a.fail(ctx, err)
	}
	a.success("User %s created", common.Normalize(nu.Username))
	return nil
}

// DelUser deletes target, prompting for it when empty.
func (a *App) DelUser(ctx context.Context, target string) error {
	if err := a.requireAdmin(); err != nil {
		return a.fail(ctx, err)
	}

	if target == "" {
		var err error
		if target, err = getSimpleText(a.reader, "Username to delete", a.out); err != nil {
			return err
		}
	}

	var found bool
	err := a.withGate(func() error {
		var err error
		found, err = a.gate.DeleteUser(ctx, a.sess, target)
		return err
	})
	if err != nil {
		return a.fail(ctx, err)
	}
	target = common.Normalize(target)
	if !found {
		fmt.Fprintf(a.out, "User %s not found\n", target)
		return nil
	}
	a.success("User %s deleted", target)
	return nil
}
