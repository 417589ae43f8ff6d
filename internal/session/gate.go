package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/dmitrijs2005/pricegate/internal/logging"
)

// Emergency access identity. This is a plaintext master password compiled
// into the binary; it logs in as admin even when the table is empty,
// unreachable, or holds a different "admin" password. It can only be
// turned off through configuration.
const (
	bypassUsername = common.BootstrapUsername
	bypassPassword = "admin123"
)

// CredentialStore is what the gate needs from the directory.
type CredentialStore interface {
	LoadAll(ctx context.Context) map[string]directory.UserRecord
	Records(ctx context.Context) ([]directory.UserRecord, error)
	Create(ctx context.Context, nu directory.NewUser) error
	Delete(ctx context.Context, username string) (bool, error)
	Verify(rec directory.UserRecord, password string) bool
}

type Gate struct {
	store           CredentialStore
	logger          logging.Logger
	emergencyAccess bool
	now             func() time.Time
}

func NewGate(store CredentialStore, logger logging.Logger, emergencyAccess bool) *Gate {
	return &Gate{store: store, logger: logger, emergencyAccess: emergencyAccess, now: time.Now}
}

func bypassRecord() directory.UserRecord {
	return directory.UserRecord{Username: bypassUsername, Name: "Admin", Role: directory.RoleAdmin}
}

// Authenticate checks one username/password pair. The bypass identity is
// evaluated first and does not touch the store.
func (g *Gate) Authenticate(ctx context.Context, username, password string) Result {
	username = common.Normalize(username)
	password = common.Normalize(password)

	if g.emergencyAccess && username == bypassUsername && password == bypassPassword {
		u := bypassRecord()
		return Result{Outcome: BypassAdmin, User: &u}
	}

	users := g.store.LoadAll(ctx)
	rec, ok := users[username]
	if !ok {
		return Result{Outcome: UserNotFound}
	}
	if !g.store.Verify(rec, password) {
		return Result{Outcome: WrongPassword}
	}
	return Result{Outcome: Authenticated, User: &rec}
}

// Login authenticates and, on success, fills sess. On failure sess is left
// as it was and ErrInvalidCredentials is returned whatever the reason.
func (g *Gate) Login(ctx context.Context, sess *Session, username, password string) (Outcome, error) {
	if sess == nil {
		return UserNotFound, fmt.Errorf("%w: nil session", common.ErrValidation)
	}

	res := g.Authenticate(ctx, username, password)
	if !res.Outcome.OK() {
		g.logger.Info(ctx, "login rejected", "session_id", sess.ID, "outcome", res.Outcome.String())
		return res.Outcome, common.ErrInvalidCredentials
	}

	sess.set(*res.User, g.now())
	if res.Outcome == BypassAdmin {
		g.logger.Warn(ctx, "emergency admin login used", "session_id", sess.ID)
	} else {
		g.logger.Info(ctx, "login", "session_id", sess.ID, "username", res.User.Username, "role", res.User.Role)
	}
	return res.Outcome, nil
}

func (g *Gate) Logout(ctx context.Context, sess *Session) {
	if sess == nil {
		return
	}
	if sess.Authenticated {
		g.logger.Info(ctx, "logout", "session_id", sess.ID, "username", sess.Username())
	}
	sess.clear()
}

// CanManageDirectory reports whether the user-management screen is shown.
func (g *Gate) CanManageDirectory(sess *Session) bool {
	return sess.IsAdmin()
}

func (g *Gate) requireAdmin(sess *Session) error {
	if sess == nil || !sess.Authenticated {
		return common.ErrNotLoggedIn
	}
	if !sess.IsAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// ListUsers returns the directory for the admin view. Unlike login, a
// transport failure is returned so the screen can show it.
func (g *Gate) ListUsers(ctx context.Context, sess *Session) ([]directory.UserRecord, error) {
	if err := g.requireAdmin(sess); err != nil {
		return nil, err
	}
	return g.store.Records(ctx)
}

func (g *Gate) CreateUser(ctx context.Context, sess *Session, nu directory.NewUser) error {
	if err := g.requireAdmin(sess); err != nil {
		return err
	}
	return g.store.Create(ctx, nu)
}

// DeleteUser removes target. The bootstrap "admin" identity and the
// caller's own account are refused before the store is consulted.
func (g *Gate) DeleteUser(ctx context.Context, sess *Session, target string) (bool, error) {
	if err := g.requireAdmin(sess); err != nil {
		return false, err
	}

	target = common.Normalize(target)
	if target == "" {
		return false, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if target == common.BootstrapUsername {
		return false, fmt.Errorf("%w: %s is the bootstrap account", common.ErrProtectedUser, target)
	}
	if target == sess.Username() {
		return false, fmt.Errorf("%w: cannot delete the logged-in account", common.ErrProtectedUser)
	}

	return g.store.Delete(ctx, target)
}
