package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/dmitrijs2005/pricegate/internal/logging"
	"github.com/dmitrijs2005/pricegate/internal/session"
)

// Gate is the part of session.Gate the terminal drives.
type Gate interface {
	Login(ctx context.Context, sess *session.Session, username, password string) (session.Outcome, error)
	Logout(ctx context.Context, sess *session.Session)
	CanManageDirectory(sess *session.Session) bool
	ListUsers(ctx context.Context, sess *session.Session) ([]directory.UserRecord, error)
	CreateUser(ctx context.Context, sess *session.Session, nu directory.NewUser) error
	DeleteUser(ctx context.Context, sess *session.Session, target string) (bool, error)
}

// App is one interactive caller: it owns its session and its input.
type App struct {
	gate   Gate
	sess   *session.Session
	reader *bufio.Reader
	ttyFd  int
	out    io.Writer
	logger logging.Logger

	busy     sync.Mutex
	quiesced bool
}

func NewApp(gate Gate, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		gate:   gate,
		sess:   session.New(),
		reader: bufio.NewReader(in),
		ttyFd:  terminalFd(in),
		out:    out,
		logger: logger,
	}
}

// Run prints the banner and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	a.logger.Debug(ctx, "terminal started", "session_id", a.sess.ID)
	fmt.Fprintln(a.out, bannerStyle.Render("pricegate")+" "+hintStyle.Render("type 'help' for commands"))
	runREPL(ctx, a, a.getStatus, a.reader)
	_ = a.withGate(func() error {
		a.gate.Logout(ctx, a.sess)
		return nil
	})
}

var errShuttingDown = errors.New("terminal is shutting down")

// withGate runs fn, which calls into the gate, unless the terminal was
// quiesced. Prompts stay outside so a pending read never blocks Quiesce.
func (a *App) withGate(fn func() error) error {
	a.busy.Lock()
	defer a.busy.Unlock()
	if a.quiesced {
		return errShuttingDown
	}
	return fn()
}

// Quiesce waits for the gate call in progress, if any, and refuses new
// ones. After it returns the store behind the gate may be closed.
func (a *App) Quiesce() {
	a.busy.Lock()
	a.quiesced = true
	a.busy.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.sess.Authenticated
}

func (a *App) isAdmin() bool {
	return a.gate.CanManageDirectory(a.sess)
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s %s)", a.sess.Username(), a.sess.CurrentUser.Role)
}

// requireAdmin short-circuits the directory commands before any prompt is
// shown. The gate checks again on every call.
func (a *App) requireAdmin() error {
	if !a.isLoggedIn() {
		return common.ErrNotLoggedIn
	}
	if !a.isAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// fail prints the inline message for err and returns err unchanged.
func (a *App) fail(ctx context.Context, err error) error {
	a.logger.Debug(ctx, "command failed", "session_id", a.sess.ID, "error", err)
	msg := session.UserMessage(err)
	if errors.Is(err, errShuttingDown) {
		msg = "Shutting down"
	}
	fmt.Fprintln(a.out, errorStyle.Render(msg))
	return err
}

func (a *App) success(format string, args ...any) {
	fmt.Fprintln(a.out, okStyle.Render(fmt.Sprintf(format, args...)))
}
