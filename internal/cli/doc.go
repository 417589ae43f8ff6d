// Package cli provides the interactive pricegate terminal.
//
// A user logs in with a username and password; administrators additionally
// get the directory commands (users, adduser, deluser). Every problem is
// reported inline at the prompt and the loop keeps running with the
// previous session state.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits,
// input ends, or ctx is cancelled. See runREPL for the command table.
package cli
