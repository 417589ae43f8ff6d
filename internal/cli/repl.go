package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	DelUser(ctx context.Context, target string) error
}

// runREPL starts a read-eval-print loop for the pricegate terminal.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Anyone:
//	  - help             - show available commands
//	  - login            - authenticate
//	  - exit | quit      - leave the program
//
//	Logged in:
//	  - whoami           - show the current user
//	  - logout           - end the session
//
//	Administrators:
//	  - users            - list the user directory
//	  - adduser          - create a user (interactive)
//	  - deluser [name]   - delete a user
//
// Errors returned by command handlers are ignored here; handlers print
// their own inline message. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("pricegate %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if dispatch(ctx, a, cmd, args) {
			return
		}
	}
}

// dispatch runs one command and reports whether the loop should end.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch cmd {
	case "help":
		switch {
		case a.isAdmin():
			printlnFn("Available commands: whoami, users, adduser, deluser [name], logout, exit")
		case a.isLoggedIn():
			printlnFn("Available commands: whoami, logout, exit")
		default:
			printlnFn("Available commands: login, exit")
		}

	case "login":
		_ = a.Login(ctx)

	case "logout":
		_ = a.Logout(ctx)

	case "whoami":
		_ = a.WhoAmI(ctx)

	case "users", "l", "list":
		_ = a.Users(ctx)

	case "adduser":
		_ = a.AddUser(ctx)

	case "deluser":
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		_ = a.DelUser(ctx, target)

	case "exit", "quit":
		printlnFn("Bye!")
		return true

	default:
		printlnFn("Unknown command:", cmd)
	}
	return false
}
